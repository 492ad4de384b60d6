package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/common"
)

func TestMemoryBackendSetGetDelete(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	_, err := b.Get(ctx, "apps", "a1")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	require.NoError(t, b.Set(ctx, "apps", "a1", map[string]any{"name": "Tracker"}))

	doc, err := b.Get(ctx, "apps", "a1")
	require.NoError(t, err)
	assert.Equal(t, "Tracker", doc.Data["name"])

	require.NoError(t, b.Delete(ctx, "apps", "a1"))
	_, err = b.Get(ctx, "apps", "a1")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	// absent delete is not an error
	require.NoError(t, b.Delete(ctx, "apps", "missing"))
}

func TestMemoryBackendMergeKeepsExistingFields(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Set(ctx, "blogs", "b1", map[string]any{"title": "Hello", "status": "draft"}))
	require.NoError(t, b.Merge(ctx, "blogs", "b1", map[string]any{"status": "published"}))

	doc, err := b.Get(ctx, "blogs", "b1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Data["title"])
	assert.Equal(t, "published", doc.Data["status"])
}

func TestMemoryBackendMergeCreatesWhenAbsent(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Merge(ctx, "notes", "n1", map[string]any{"title": "First"}))

	doc, err := b.Get(ctx, "notes", "n1")
	require.NoError(t, err)
	assert.Equal(t, "First", doc.Data["title"])
}

func TestMemoryBackendListOrdering(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Set(ctx, "blogs", "b1", map[string]any{"createdAt": "2024-01-01T00:00:00Z"}))
	require.NoError(t, b.Set(ctx, "blogs", "b2", map[string]any{"createdAt": "2024-03-01T00:00:00Z"}))
	require.NoError(t, b.Set(ctx, "blogs", "b3", map[string]any{"createdAt": "2024-02-01T00:00:00Z"}))

	docs, err := b.List(ctx, "blogs", ListOptions{OrderBy: "createdAt", Descending: true})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "b2", docs[0].ID)
	assert.Equal(t, "b3", docs[1].ID)
	assert.Equal(t, "b1", docs[2].ID)

	// default ordering is by id
	docs, err = b.List(ctx, "blogs", ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "b1", docs[0].ID)
}

func TestMemoryBackendListIsolation(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Set(ctx, "apps", "a1", map[string]any{"name": "Tracker"}))

	docs, err := b.List(ctx, "apps", ListOptions{})
	require.NoError(t, err)
	docs[0].Data["name"] = "mutated"

	doc, err := b.Get(ctx, "apps", "a1")
	require.NoError(t, err)
	assert.Equal(t, "Tracker", doc.Data["name"])
}
