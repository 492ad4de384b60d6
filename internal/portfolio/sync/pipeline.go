package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/common"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/logging"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/localstore"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/models"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/remote"
)

// Pipeline is the sync/subscribe/mutate machinery for one mirrored
// collection, parameterized by its normalizer. All eight entity pipelines
// are instances of this one type.
type Pipeline[T any] struct {
	collection string
	cacheKey   string
	maxAge     time.Duration
	normalize  func(id string, raw models.RawDoc) T
	entityID   func(T) string
	listOpts   remote.ListOptions
	sortFn     func([]T)
	// renormalizeOnHit re-applies the defaulting pass to cached rows on a
	// fresh-cache hit, tolerating schema drift in older cached payloads.
	renormalizeOnHit bool

	remote remote.Client
	store  *localstore.Store
	stale  *Staleness
	log    logging.Logger
}

// Sync returns the collection's entities, serving the local mirror when it
// is fresh and non-empty, and otherwise refetching the entire remote
// collection and replacing the mirror atomically.
//
// An empty local collection always forces a fetch even when the metadata is
// technically fresh: an empty table is treated as "never synced". On remote
// failure the error propagates and the local mirror is left untouched, so
// stale-but-present data keeps serving reads.
func (p *Pipeline[T]) Sync(ctx context.Context, force bool) ([]T, error) {
	if !force {
		stale, err := p.stale.IsStale(ctx, p.cacheKey, p.maxAge)
		if err != nil {
			return nil, err
		}
		if !stale {
			count, err := p.store.Count(ctx, p.collection)
			if err != nil {
				return nil, err
			}
			if count >= 1 {
				p.log.Debug(ctx, "cache hit", "collection", p.collection)
				return p.Cached(ctx)
			}
		}
	}

	docs, err := p.remote.List(ctx, p.collection, p.listOpts)
	if err != nil {
		return nil, fmt.Errorf("syncing %s: %w", p.collection, err)
	}

	items := p.normalizeAll(docs)
	if err := p.replaceMirror(ctx, items); err != nil {
		return nil, err
	}

	p.log.Info(ctx, "collection synced", "collection", p.collection, "count", len(items))
	return items, nil
}

// Cached returns the local mirror's contents without consulting the remote
// store or the staleness policy.
func (p *Pipeline[T]) Cached(ctx context.Context) ([]T, error) {
	recs, err := p.store.List(ctx, p.collection)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(recs))
	for _, rec := range recs {
		if p.renormalizeOnHit {
			var raw models.RawDoc
			if err := json.Unmarshal(rec.Payload, &raw); err != nil {
				p.log.Warn(ctx, "skipping unreadable cached record",
					"collection", p.collection, "id", rec.ID, "error", err)
				continue
			}
			items = append(items, p.normalize(rec.ID, raw))
			continue
		}
		var item T
		if err := json.Unmarshal(rec.Payload, &item); err != nil {
			p.log.Warn(ctx, "skipping unreadable cached record",
				"collection", p.collection, "id", rec.ID, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Subscribe opens a live feed on the remote collection. Every snapshot is
// re-normalized, mirrored into the local store wholesale, and handed to cb,
// in snapshot arrival order. The returned function tears down the feed.
func (p *Pipeline[T]) Subscribe(ctx context.Context, cb func([]T)) (func(), error) {
	return p.remote.Subscribe(ctx, p.collection, func(snap remote.Snapshot) {
		items := p.normalizeAll(snap.Documents)
		if err := p.replaceMirror(ctx, items); err != nil {
			p.log.Error(ctx, "failed to mirror snapshot",
				"collection", p.collection, "error", err)
			return
		}
		cb(items)
	})
}

// Add writes a new document through to the remote store and, only after
// remote success, patches the local mirror for read-your-write consistency.
func (p *Pipeline[T]) Add(ctx context.Context, id string, raw models.RawDoc) (T, error) {
	var zero T
	if err := p.remote.Set(ctx, p.collection, id, raw); err != nil {
		return zero, fmt.Errorf("adding to %s: %w", p.collection, err)
	}

	item := p.normalize(id, raw)
	if err := p.putLocal(ctx, id, item); err != nil {
		return zero, err
	}
	return item, nil
}

// Update merges patch into the remote document, then patches the local
// mirror without waiting for the live subscription to echo the change.
func (p *Pipeline[T]) Update(ctx context.Context, id string, patch models.RawDoc) (T, error) {
	var zero T
	if err := p.remote.Merge(ctx, p.collection, id, patch); err != nil {
		return zero, fmt.Errorf("updating %s/%s: %w", p.collection, id, err)
	}

	raw, err := p.localRaw(ctx, id)
	if err != nil {
		return zero, err
	}
	for k, v := range patch {
		raw[k] = v
	}
	item := p.normalize(id, raw)
	if err := p.putLocal(ctx, id, item); err != nil {
		return zero, err
	}
	return item, nil
}

// Delete removes the document remotely first, then from the local mirror.
func (p *Pipeline[T]) Delete(ctx context.Context, id string) error {
	if err := p.remote.Delete(ctx, p.collection, id); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", p.collection, id, err)
	}
	return p.store.Delete(ctx, p.collection, id)
}

func (p *Pipeline[T]) normalizeAll(docs []remote.Document) []T {
	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		items = append(items, p.normalize(doc.ID, doc.Data))
	}
	if p.sortFn != nil {
		p.sortFn(items)
	}
	return items
}

func (p *Pipeline[T]) replaceMirror(ctx context.Context, items []T) error {
	recs := make([]localstore.Record, 0, len(items))
	for _, item := range items {
		payload, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encoding %s record: %w", p.collection, err)
		}
		recs = append(recs, localstore.Record{ID: p.entityID(item), Payload: payload})
	}
	return p.store.ReplaceAll(ctx, p.collection, p.cacheKey, recs)
}

func (p *Pipeline[T]) putLocal(ctx context.Context, id string, item T) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", p.collection, err)
	}
	return p.store.Put(ctx, p.collection, id, payload)
}

// localRaw reads the cached record for id as a raw document, falling back to
// the remote store when the mirror has no row yet.
func (p *Pipeline[T]) localRaw(ctx context.Context, id string) (models.RawDoc, error) {
	rec, err := p.store.Get(ctx, p.collection, id)
	if err == nil {
		var raw models.RawDoc
		if jerr := json.Unmarshal(rec.Payload, &raw); jerr == nil {
			return raw, nil
		}
		return models.RawDoc{}, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	doc, err := p.remote.Get(ctx, p.collection, id)
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}
