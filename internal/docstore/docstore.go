// Package docstore implements the server-side document store: schemaless
// JSON documents grouped into named collections, with collection-level
// ordered listing and id-level get/set/merge/delete.
package docstore

import "context"

// Document pairs a document id with its JSON body.
type Document struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// ListOptions controls ordering of a collection listing. OrderBy names a
// top-level field of the document body; an empty OrderBy sorts by id.
type ListOptions struct {
	OrderBy    string
	Descending bool
}

// Backend is the storage contract behind the HTTP API. Implementations:
// PostgresBackend (production) and MemoryBackend (tests).
type Backend interface {
	// List returns every document in the collection, ordered per opts.
	List(ctx context.Context, collection string, opts ListOptions) ([]Document, error)

	// Get returns a single document, or common.ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Set creates or fully replaces a document.
	Set(ctx context.Context, collection, id string, data map[string]any) error

	// Merge upserts a document, shallow-merging data over existing fields.
	Merge(ctx context.Context, collection, id string, data map[string]any) error

	// Delete removes a document. Deleting an absent document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// Close releases storage resources.
	Close() error
}
