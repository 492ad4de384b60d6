package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/localstore"
)

func setupStaleness(t *testing.T) (*Staleness, *localstore.Store) {
	t.Helper()
	store, err := localstore.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewStaleness(store), store
}

func TestIsStale_NoMetadataRow(t *testing.T) {
	s, _ := setupStaleness(t)

	stale, err := s.IsStale(context.Background(), "apps", 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestIsStale_FreshWithinWindow(t *testing.T) {
	s, store := setupStaleness(t)
	ctx := context.Background()

	require.NoError(t, store.TouchMetadata(ctx, "apps", time.Now()))

	stale, err := s.IsStale(ctx, "apps", 30*time.Minute)
	require.NoError(t, err)
	assert.False(t, stale)
}

func TestIsStale_ExpiredBeyondWindow(t *testing.T) {
	s, store := setupStaleness(t)
	ctx := context.Background()

	require.NoError(t, store.TouchMetadata(ctx, "apps", time.Now().Add(-40*time.Minute)))

	stale, err := s.IsStale(ctx, "apps", 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestTouch_MakesFresh(t *testing.T) {
	s, _ := setupStaleness(t)
	ctx := context.Background()

	require.NoError(t, s.Touch(ctx, "blogs"))

	stale, err := s.IsStale(ctx, "blogs", time.Minute)
	require.NoError(t, err)
	assert.False(t, stale)
}
