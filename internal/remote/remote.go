// Package remote defines the contract of the authoritative document store
// consumed by the sync layer: collection-level query with ordering, document
// get/set/merge/delete, and a live subscription primitive that yields the
// full current result set of a collection on every change.
package remote

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable indicates the store could not be reached.
	ErrUnavailable = errors.New("remote store unavailable")
	// ErrUnauthorized indicates the mutation was rejected for lack of a
	// valid token.
	ErrUnauthorized = errors.New("unauthorized")
)

// RawDoc is an unvalidated remote document body.
type RawDoc = map[string]any

// Document pairs a document id with its raw body.
type Document struct {
	ID   string `json:"id"`
	Data RawDoc `json:"data"`
}

// ListOptions controls server-side ordering of a collection query.
type ListOptions struct {
	OrderBy    string
	Descending bool
}

// Snapshot is one delivery of a collection's full current result set.
type Snapshot struct {
	Collection string     `json:"collection"`
	Documents  []Document `json:"documents"`
}

// Client is the remote store contract. All six mirrored entity types use
// this same shape. Implementations: HTTPClient (production) and
// MemoryClient (tests, offline development).
type Client interface {
	// List returns every document in the collection, ordered per opts.
	List(ctx context.Context, collection string, opts ListOptions) ([]Document, error)

	// Get returns a single document, or common.ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Set creates or fully replaces a document.
	Set(ctx context.Context, collection, id string, data RawDoc) error

	// Merge upserts a document, shallow-merging data over existing fields.
	Merge(ctx context.Context, collection, id string, data RawDoc) error

	// Delete removes a document. Deleting an absent document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Subscribe opens a live feed for the collection. fn is invoked with the
	// full current result set on every change, in snapshot arrival order.
	// The returned function tears the subscription down; cancelling ctx has
	// the same effect. Reconnection semantics are whatever the transport
	// provides; none are added here.
	Subscribe(ctx context.Context, collection string, fn func(Snapshot)) (func(), error)

	// Close releases transport resources.
	Close() error
}
