// Package feed implements the live snapshot feed: a hub of per-collection
// websocket subscribers that receive the collection's full current result
// set after every mutation.
package feed

import (
	"context"
	"sync"

	"github.com/goccy/go-json"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/docstore"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/logging"
)

// Snapshot is the wire form of one feed delivery. It matches what the
// client-side subscriber decodes.
type Snapshot struct {
	Collection string              `json:"collection"`
	Documents  []docstore.Document `json:"documents"`
}

// subscriber receives marshalled snapshots. The channel is buffered; a
// subscriber that cannot keep up gets dropped rather than blocking the hub.
type subscriber struct {
	ch chan []byte
}

// Hub tracks feed subscribers grouped by collection name.
type Hub struct {
	log logging.Logger

	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{
		log:  log,
		subs: make(map[string]map[*subscriber]struct{}),
	}
}

// Subscribe registers a new feed subscriber for collection and returns the
// delivery channel plus an unsubscribe function. The channel is closed on
// unsubscribe.
func (h *Hub) Subscribe(collection string) (<-chan []byte, func()) {
	sub := &subscriber{ch: make(chan []byte, 16)}

	h.mu.Lock()
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[*subscriber]struct{})
	}
	h.subs[collection][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[collection], sub)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Broadcast marshals the collection's current documents and delivers them to
// every subscriber of that collection. Slow subscribers are skipped.
func (h *Hub) Broadcast(ctx context.Context, collection string, docs []docstore.Document) {
	if docs == nil {
		docs = []docstore.Document{}
	}
	msg, err := json.Marshal(Snapshot{Collection: collection, Documents: docs})
	if err != nil {
		h.log.Error(ctx, "marshalling snapshot", "collection", collection, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[collection] {
		select {
		case sub.ch <- msg:
		default:
			h.log.Warn(ctx, "feed subscriber too slow, dropping snapshot", "collection", collection)
		}
	}
}

// SubscriberCount reports the current number of subscribers for collection.
func (h *Hub) SubscriberCount(collection string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[collection])
}
