// Package sync orchestrates reads and writes between the local cache store
// and the remote document store: staleness-gated full resyncs, live
// subscription mirroring, and write-through mutations.
package sync

import (
	"context"
	"time"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/localstore"
)

// Staleness tracks last-sync timestamps per cache key. Staleness is binary
// and per-collection, not per-record; clock changes are not guarded against.
type Staleness struct {
	store *localstore.Store
	now   func() time.Time
}

func NewStaleness(store *localstore.Store) *Staleness {
	return &Staleness{store: store, now: time.Now}
}

// IsStale reports whether the cache for key needs a full refetch: true when
// no metadata row exists, or when more than maxAge has elapsed since the
// last successful sync.
func (s *Staleness) IsStale(ctx context.Context, key string, maxAge time.Duration) (bool, error) {
	m, err := s.store.Metadata(ctx, key)
	if err != nil {
		return true, err
	}
	if m == nil {
		return true, nil
	}
	return s.now().Sub(m.LastSync) > maxAge, nil
}

// Touch overwrites the metadata row for key with the current time,
// unconditionally.
func (s *Staleness) Touch(ctx context.Context, key string) error {
	return s.store.TouchMetadata(ctx, key, s.now())
}
