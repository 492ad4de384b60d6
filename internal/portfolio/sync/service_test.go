package sync

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/models"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/remote"
)

func TestDeleteApp_CascadesComments(t *testing.T) {
	svc, rc, store := setupService(t)
	ctx := context.Background()

	app, err := svc.AddApp(ctx, models.AppEntry{Slug: "tasbih", AppName: "Tasbih"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.AddComment(ctx, app.ID, "u1", "Visitor", "nice")
		require.NoError(t, err)
	}

	require.NoError(t, svc.DeleteApp(ctx, app.ID))

	docs, err := rc.List(ctx, CommentsCollection(app.ID), remote.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, docs)

	count, err := store.Count(ctx, CommentsCollection(app.ID))
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = rc.Get(ctx, CollectionApps, app.ID)
	assert.Error(t, err)
}

func TestDeleteBookmarkFolder_CascadeLeavesNoDescendants(t *testing.T) {
	svc, rc, _ := setupService(t)
	ctx := context.Background()

	// root -> (child1 -> grandchild, child2), links scattered across all levels.
	root, err := svc.AddBookmarkFolder(ctx, models.BookmarkFolder{Name: "root"})
	require.NoError(t, err)
	child1, err := svc.AddBookmarkFolder(ctx, models.BookmarkFolder{Name: "child1", ParentID: root.ID})
	require.NoError(t, err)
	child2, err := svc.AddBookmarkFolder(ctx, models.BookmarkFolder{Name: "child2", ParentID: root.ID})
	require.NoError(t, err)
	grandchild, err := svc.AddBookmarkFolder(ctx, models.BookmarkFolder{Name: "grandchild", ParentID: child1.ID})
	require.NoError(t, err)

	for _, folderID := range []string{root.ID, child1.ID, child2.ID, grandchild.ID} {
		_, err := svc.AddBookmarkLink(ctx, models.BookmarkLink{FolderID: folderID, Title: "l", URL: "https://example.com"})
		require.NoError(t, err)
	}
	// An unrelated folder and link must survive.
	other, err := svc.AddBookmarkFolder(ctx, models.BookmarkFolder{Name: "other"})
	require.NoError(t, err)
	_, err = svc.AddBookmarkLink(ctx, models.BookmarkLink{FolderID: other.ID, Title: "keep", URL: "https://keep.example"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBookmarkFolder(ctx, root.ID))

	deleted := map[string]bool{root.ID: true, child1.ID: true, child2.ID: true, grandchild.ID: true}

	folders, err := rc.List(ctx, CollectionBookmarkFolders, remote.ListOptions{})
	require.NoError(t, err)
	for _, doc := range folders {
		assert.False(t, deleted[doc.ID], "folder %s should be gone", doc.ID)
		parent, _ := doc.Data["parentId"].(string)
		assert.False(t, deleted[parent], "no surviving folder may reference a deleted parent")
	}
	require.Len(t, folders, 1)

	links, err := rc.List(ctx, CollectionBookmarkLinks, remote.ListOptions{})
	require.NoError(t, err)
	for _, doc := range links {
		folder, _ := doc.Data["folderId"].(string)
		assert.False(t, deleted[folder], "no surviving link may reference a deleted folder")
	}
	require.Len(t, links, 1)
}

func TestAddComment_ConfirmedReplacesPendingRow(t *testing.T) {
	svc, rc, store := setupService(t)
	ctx := context.Background()

	comment, err := svc.AddComment(ctx, "app1", "u1", "Visitor", "great app")
	require.NoError(t, err)
	assert.False(t, comment.Pending)
	assert.False(t, strings.HasPrefix(comment.ID, "pending-"))

	recs, err := store.List(ctx, CommentsCollection("app1"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, comment.ID, recs[0].ID)

	doc, err := rc.Get(ctx, CommentsCollection("app1"), comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "great app", doc.Data["content"])
}

func TestAddComment_RemoteFailureRemovesPendingRow(t *testing.T) {
	svc, rc, store := setupService(t)
	ctx := context.Background()

	rc.FailWith(errors.New("permission denied"))
	_, err := svc.AddComment(ctx, "app1", "u1", "Visitor", "great app")
	require.Error(t, err)

	count, err := store.Count(ctx, CommentsCollection("app1"))
	require.NoError(t, err)
	assert.Zero(t, count, "no orphaned pending rows after a failed post")
}

func TestAppBySlug_FirstMatchWins(t *testing.T) {
	svc, rc, _ := setupService(t)
	ctx := context.Background()

	rc.Seed(CollectionApps,
		remote.Document{ID: "a1", Data: remote.RawDoc{"slug": "dup", "appName": "first", "createdAt": "2024-06-01T00:00:00Z"}},
		remote.Document{ID: "a2", Data: remote.RawDoc{"slug": "dup", "appName": "second", "createdAt": "2024-05-01T00:00:00Z"}},
	)

	app, err := svc.AppBySlug(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "first", app.AppName)

	_, err = svc.AppBySlug(ctx, "absent")
	require.Error(t, err)
}

func TestSyncAll_ReturnsPerCollectionCounts(t *testing.T) {
	svc, rc, _ := setupService(t)
	ctx := context.Background()

	rc.Seed(CollectionApps, appDoc("a1", "one"))
	rc.Seed(CollectionBlogs, remote.Document{ID: "p1", Data: remote.RawDoc{"title": "t", "date": "2024-05-01T00:00:00Z"}})
	rc.Seed(CollectionNotes, remote.Document{ID: "n1", Data: remote.RawDoc{"title": "n"}})

	counts, err := svc.SyncAll(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, 1, counts[CollectionApps])
	assert.Equal(t, 1, counts[CollectionBlogs])
	assert.Equal(t, 1, counts[CollectionNotes])
	assert.Equal(t, 0, counts[CollectionTesters])
}

func TestDeleteApp_CascadeListFailureAbortsBeforeParentDelete(t *testing.T) {
	svc, rc, _ := setupService(t)
	ctx := context.Background()

	app, err := svc.AddApp(ctx, models.AppEntry{Slug: "keep", AppName: "Keep"})
	require.NoError(t, err)

	rc.FailWith(errors.New("network down"))
	require.Error(t, svc.DeleteApp(ctx, app.ID))
	rc.FailWith(nil)

	_, err = rc.Get(ctx, CollectionApps, app.ID)
	assert.NoError(t, err, "parent survives when the cascade cannot be enumerated")
}
