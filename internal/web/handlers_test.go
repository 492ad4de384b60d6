package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/logging"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/localstore"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/models"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/sync"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/remote"
)

const testToken = "admin-token"

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupSite(t *testing.T) (*httptest.Server, *sync.Service, *remote.MemoryClient) {
	t.Helper()

	store, err := localstore.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	rc := remote.NewMemoryClient()
	svc := sync.New(rc, store, testLogger())

	site, err := NewServer(SiteProfile{Name: "Jakir Hossen", Tagline: "Android developer"},
		svc, nil, testToken, testLogger())
	require.NoError(t, err)

	srv := httptest.NewServer(site.Router())
	t.Cleanup(srv.Close)
	return srv, svc, rc
}

func seedApp(t *testing.T, svc *sync.Service, slug, name string) models.AppEntry {
	t.Helper()
	app, err := svc.AddApp(context.Background(), models.AppEntry{Slug: slug, AppName: name, Description: "demo"})
	require.NoError(t, err)
	return app
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestHomePageRenders(t *testing.T) {
	srv, svc, _ := setupSite(t)
	seedApp(t, svc, "tasbih", "Tasbih Counter")

	status, body := getBody(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Jakir Hossen")
	assert.Contains(t, body, "Tasbih Counter")
}

func TestAppDetailPage(t *testing.T) {
	srv, svc, _ := setupSite(t)
	app := seedApp(t, svc, "tasbih", "Tasbih Counter")

	_, err := svc.AddComment(context.Background(), app.ID, "u1", "Visitor", "great app")
	require.NoError(t, err)

	status, body := getBody(t, srv.URL+"/apps/tasbih")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Tasbih Counter")
	assert.Contains(t, body, "great app")

	status, _ = getBody(t, srv.URL+"/apps/unknown")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDraftPostsAreHidden(t *testing.T) {
	srv, svc, _ := setupSite(t)
	ctx := context.Background()

	_, err := svc.AddBlogPost(ctx, models.BlogPost{Slug: "live", Title: "Live Post", Status: models.PostStatusPublished})
	require.NoError(t, err)
	_, err = svc.AddBlogPost(ctx, models.BlogPost{Slug: "wip", Title: "Draft Post", Status: models.PostStatusDraft})
	require.NoError(t, err)

	status, body := getBody(t, srv.URL+"/blog")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Live Post")
	assert.NotContains(t, body, "Draft Post")

	status, _ = getBody(t, srv.URL+"/blog/live")
	assert.Equal(t, http.StatusOK, status)

	status, _ = getBody(t, srv.URL+"/blog/wip")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCommentFormPostsThrough(t *testing.T) {
	srv, svc, rc := setupSite(t)
	app := seedApp(t, svc, "tasbih", "Tasbih Counter")

	client := &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.PostForm(srv.URL+"/apps/tasbih/comments",
		url.Values{"name": {"Visitor"}, "content": {"works great"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	docs, err := rc.List(context.Background(), sync.CommentsCollection(app.ID), remote.ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "works great", docs[0].Data["content"])
}

func TestSubscribeForm(t *testing.T) {
	srv, _, rc := setupSite(t)

	client := &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.PostForm(srv.URL+"/subscribe", url.Values{"email": {"me@example.com"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	docs, err := rc.List(context.Background(), sync.CollectionSubscribers, remote.ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "me@example.com", docs[0].Data["email"])
}

func adminDo(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(b))
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestAdminRequiresToken(t *testing.T) {
	srv, _, _ := setupSite(t)

	resp := adminDo(t, http.MethodPost, srv.URL+"/admin/api/resync", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = adminDo(t, http.MethodPost, srv.URL+"/admin/api/resync", "wrong", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = adminDo(t, http.MethodPost, srv.URL+"/admin/api/resync", testToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminCRUDAndExport(t *testing.T) {
	srv, svc, _ := setupSite(t)
	ctx := context.Background()

	resp := adminDo(t, http.MethodPost, srv.URL+"/admin/api/notes", testToken,
		models.Note{Title: "Ideas", Content: "ship it", Tags: []string{"todo"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var note models.Note
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&note))
	resp.Body.Close()
	require.NotEmpty(t, note.ID)

	resp = adminDo(t, http.MethodPatch, srv.URL+"/admin/api/notes/"+note.ID, testToken,
		map[string]any{"title": "Better ideas"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	notes, err := svc.SyncNotes(ctx, false)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Better ideas", notes[0].Title)

	resp = adminDo(t, http.MethodDelete, srv.URL+"/admin/api/notes/"+note.ID, testToken, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// csv export carries the header row
	_, err = svc.AddTester(ctx, models.Tester{Email: "t@example.com", DisplayName: "T"})
	require.NoError(t, err)

	resp = adminDo(t, http.MethodGet, srv.URL+"/admin/api/export/testers.csv", testToken, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "t@example.com")
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"name: Jakir\ntagline: builds apps\nsocial:\n  - label: GitHub\n    url: https://github.com/jakir-hossen-4928\n"), 0o600))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "Jakir", p.Name)
	assert.Equal(t, "builds apps", p.Tagline)
	require.Len(t, p.Social, 1)
	assert.Equal(t, "GitHub", p.Social[0].Label)

	// missing file falls back to defaults
	p, err = LoadProfile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile().Name, p.Name)
}
