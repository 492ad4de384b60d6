package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/logging"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/localstore"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/models"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/remote"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupService(t *testing.T, opts ...Option) (*Service, *remote.MemoryClient, *localstore.Store) {
	t.Helper()
	store, err := localstore.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	rc := remote.NewMemoryClient()
	svc := New(rc, store, discardLogger(), opts...)
	return svc, rc, store
}

func appDoc(id, slug string) remote.Document {
	return remote.Document{ID: id, Data: remote.RawDoc{
		"slug": slug, "appName": slug, "status": "production",
		"createdAt": "2024-05-01T00:00:00Z", "updatedAt": "2024-05-01T00:00:00Z",
	}}
}

func TestSync_SecondCallWithinWindowServesCache(t *testing.T) {
	svc, rc, _ := setupService(t)
	ctx := context.Background()
	rc.Seed(CollectionApps, appDoc("a1", "one"), appDoc("a2", "two"))

	first, err := svc.SyncApps(ctx, false)
	require.NoError(t, err)
	second, err := svc.SyncApps(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, rc.ListCalls(CollectionApps), "second call must not refetch")
}

func TestSync_ForceAlwaysFetches(t *testing.T) {
	svc, rc, _ := setupService(t)
	ctx := context.Background()
	rc.Seed(CollectionApps, appDoc("a1", "one"))

	_, err := svc.SyncApps(ctx, false)
	require.NoError(t, err)
	_, err = svc.SyncApps(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, 2, rc.ListCalls(CollectionApps))
}

func TestSync_FreshCacheHitMakesZeroRemoteCalls(t *testing.T) {
	svc, rc, store := setupService(t)
	ctx := context.Background()

	// Seed the local mirror directly: 3 rows plus fresh metadata.
	recs := []localstore.Record{
		{ID: "a1", Payload: []byte(`{"id":"a1","slug":"one","status":"production"}`)},
		{ID: "a2", Payload: []byte(`{"id":"a2","slug":"two","status":"production"}`)},
		{ID: "a3", Payload: []byte(`{"id":"a3","slug":"three","status":"testing"}`)},
	}
	require.NoError(t, store.ReplaceAll(ctx, CollectionApps, CollectionApps, recs))

	apps, err := svc.SyncApps(ctx, false)
	require.NoError(t, err)

	require.Len(t, apps, 3)
	assert.Equal(t, "one", apps[0].Slug)
	assert.Equal(t, 0, rc.ListCalls(CollectionApps), "fresh cache hit must not touch the remote store")
}

func TestSync_StaleCacheRefetchesAndReplaces(t *testing.T) {
	svc, rc, store := setupService(t)
	ctx := context.Background()

	// 1 stale local row, synced 40 minutes ago against a 30 minute window.
	require.NoError(t, store.Put(ctx, CollectionApps, "old", []byte(`{"id":"old","slug":"old"}`)))
	require.NoError(t, store.TouchMetadata(ctx, CollectionApps, time.Now().Add(-40*time.Minute)))

	rc.Seed(CollectionApps,
		appDoc("n1", "one"), appDoc("n2", "two"), appDoc("n3", "three"),
		appDoc("n4", "four"), appDoc("n5", "five"))

	apps, err := svc.SyncApps(ctx, false)
	require.NoError(t, err)
	require.Len(t, apps, 5)

	count, err := store.Count(ctx, CollectionApps)
	require.NoError(t, err)
	assert.Equal(t, 5, count, "replace must leave no stale rows behind")
	assert.Equal(t, 1, rc.ListCalls(CollectionApps))
}

func TestSync_EmptyLocalStoreForcesFetchEvenWhenFresh(t *testing.T) {
	svc, rc, store := setupService(t)
	ctx := context.Background()

	// Fresh metadata but zero rows: an empty table means "never synced".
	require.NoError(t, store.TouchMetadata(ctx, CollectionApps, time.Now()))
	rc.Seed(CollectionApps, appDoc("a1", "one"))

	apps, err := svc.SyncApps(ctx, false)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, 1, rc.ListCalls(CollectionApps))
}

func TestSync_MakesCacheFreshAndCountExact(t *testing.T) {
	svc, rc, store := setupService(t)
	ctx := context.Background()
	rc.Seed(CollectionApps, appDoc("a1", "one"), appDoc("a2", "two"))

	apps, err := svc.SyncApps(ctx, true)
	require.NoError(t, err)

	stale, err := NewStaleness(store).IsStale(ctx, CollectionApps, DefaultMaxAge)
	require.NoError(t, err)
	assert.False(t, stale)

	count, err := store.Count(ctx, CollectionApps)
	require.NoError(t, err)
	assert.Equal(t, len(apps), count)
}

func TestSync_RemoteFailureLeavesLocalUntouched(t *testing.T) {
	svc, rc, store := setupService(t)
	ctx := context.Background()
	rc.Seed(CollectionApps, appDoc("a1", "one"))

	_, err := svc.SyncApps(ctx, true)
	require.NoError(t, err)

	boom := errors.New("network down")
	rc.FailWith(boom)

	_, err = svc.SyncApps(ctx, true)
	require.ErrorIs(t, err, boom)

	count, err := store.Count(ctx, CollectionApps)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "old data continues to serve reads")
}

func TestSubscribe_SnapshotFullyOverwritesPrevious(t *testing.T) {
	svc, rc, store := setupService(t)
	ctx := context.Background()

	var deliveries [][]models.AppEntry
	stop, err := svc.SubscribeApps(ctx, func(apps []models.AppEntry) {
		deliveries = append(deliveries, apps)
	})
	require.NoError(t, err)
	defer stop()

	// Snapshot A: 2 items.
	require.NoError(t, rc.Set(ctx, CollectionApps, "a1", appDoc("a1", "one").Data))
	require.NoError(t, rc.Set(ctx, CollectionApps, "a2", appDoc("a2", "two").Data))
	// Snapshot B: 3 entirely different items.
	require.NoError(t, rc.Delete(ctx, CollectionApps, "a1"))
	require.NoError(t, rc.Delete(ctx, CollectionApps, "a2"))
	require.NoError(t, rc.Set(ctx, CollectionApps, "b1", appDoc("b1", "b-one").Data))
	require.NoError(t, rc.Set(ctx, CollectionApps, "b2", appDoc("b2", "b-two").Data))
	require.NoError(t, rc.Set(ctx, CollectionApps, "b3", appDoc("b3", "b-three").Data))

	recs, err := store.List(ctx, CollectionApps)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	ids := []string{recs[0].ID, recs[1].ID, recs[2].ID}
	assert.ElementsMatch(t, []string{"b1", "b2", "b3"}, ids, "no rows from snapshot A survive")

	require.NotEmpty(t, deliveries)
	last := deliveries[len(deliveries)-1]
	assert.Len(t, last, 3)
}

func TestSubscribe_StopTearsDownFeed(t *testing.T) {
	svc, rc, store := setupService(t)
	ctx := context.Background()

	calls := 0
	stop, err := svc.SubscribeApps(ctx, func([]models.AppEntry) { calls++ })
	require.NoError(t, err)

	require.NoError(t, rc.Set(ctx, CollectionApps, "a1", appDoc("a1", "one").Data))
	stop()
	require.NoError(t, rc.Set(ctx, CollectionApps, "a2", appDoc("a2", "two").Data))

	assert.Equal(t, 1, calls)

	// The mirror reflects only what arrived before teardown.
	recs, err := store.List(ctx, CollectionApps)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestUpdate_WriteThroughPatchesLocal(t *testing.T) {
	svc, rc, _ := setupService(t)
	ctx := context.Background()
	rc.Seed(CollectionBlogs, remote.Document{ID: "p1", Data: remote.RawDoc{
		"slug": "hello", "title": "Hello", "status": "draft", "date": "2024-05-01T00:00:00Z",
	}})
	_, err := svc.SyncBlogs(ctx, true)
	require.NoError(t, err)

	updated, err := svc.UpdateBlogPost(ctx, "p1", models.RawDoc{"status": "published"})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublished, updated.Status)

	// Local mirror reflects the patch without a resync.
	posts, err := svc.blogs.Cached(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.PostStatusPublished, posts[0].Status)

	// Remote holds the merged document.
	doc, err := rc.Get(ctx, CollectionBlogs, "p1")
	require.NoError(t, err)
	assert.Equal(t, "published", doc.Data["status"])
}

func TestAdd_RemoteFailureSkipsLocalPatch(t *testing.T) {
	svc, rc, store := setupService(t)
	ctx := context.Background()

	rc.FailWith(errors.New("permission denied"))
	_, err := svc.AddNote(ctx, models.Note{Title: "x"})
	require.Error(t, err)

	count, err := store.Count(ctx, CollectionNotes)
	require.NoError(t, err)
	assert.Zero(t, count)
}
