package sync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/common"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/logging"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/localstore"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/models"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/remote"
)

// Collection names, shared with the docstore server. Cache keys equal the
// collection names except for comments, which are keyed per parent app.
const (
	CollectionApps            = "apps"
	CollectionTesters         = "testers"
	CollectionSubscribers     = "subscribers"
	CollectionBlogs           = "blogs"
	CollectionNotes           = "notes"
	CollectionBookmarkFolders = "bookmark_folders"
	CollectionBookmarkLinks   = "bookmark_links"
)

// CommentsCollection names the per-app comments sub-collection.
func CommentsCollection(appID string) string {
	return "comments_" + appID
}

// DefaultMaxAge is the staleness threshold applied to every collection
// unless overridden with WithMaxAge.
const DefaultMaxAge = 30 * time.Minute

// Service bundles one pipeline per mirrored collection over a shared local
// store, remote client and staleness policy. The store handle is injected at
// construction so tests can run isolated instances.
type Service struct {
	remote remote.Client
	store  *localstore.Store
	stale  *Staleness
	log    logging.Logger
	maxAge time.Duration

	apps        *Pipeline[models.AppEntry]
	testers     *Pipeline[models.Tester]
	subscribers *Pipeline[models.Subscriber]
	blogs       *Pipeline[models.BlogPost]
	notes       *Pipeline[models.Note]
	folders     *Pipeline[models.BookmarkFolder]
	links       *Pipeline[models.BookmarkLink]
}

// Option customizes a Service.
type Option func(*Service)

// WithMaxAge overrides the staleness threshold for all collections.
func WithMaxAge(d time.Duration) Option {
	return func(s *Service) { s.maxAge = d }
}

// WithClock overrides the staleness clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.stale.now = now }
}

func New(rc remote.Client, store *localstore.Store, log logging.Logger, opts ...Option) *Service {
	s := &Service{
		remote: rc,
		store:  store,
		stale:  NewStaleness(store),
		log:    log.With("component", "sync"),
		maxAge: DefaultMaxAge,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.apps = &Pipeline[models.AppEntry]{
		collection: CollectionApps,
		cacheKey:   CollectionApps,
		normalize:  models.MapApp,
		entityID:   func(a models.AppEntry) string { return a.ID },
		listOpts:   remote.ListOptions{OrderBy: "createdAt", Descending: true},
		// Apps tolerate schema drift in older cached rows.
		renormalizeOnHit: true,
	}
	s.testers = &Pipeline[models.Tester]{
		collection: CollectionTesters,
		cacheKey:   CollectionTesters,
		normalize:  models.MapTester,
		entityID:   func(t models.Tester) string { return t.UID },
		listOpts:   remote.ListOptions{OrderBy: "joinedAt", Descending: true},
	}
	s.subscribers = &Pipeline[models.Subscriber]{
		collection: CollectionSubscribers,
		cacheKey:   CollectionSubscribers,
		normalize:  models.MapSubscriber,
		entityID:   func(sub models.Subscriber) string { return sub.UID },
		listOpts:   remote.ListOptions{OrderBy: "joinedAt", Descending: true},
	}
	s.blogs = &Pipeline[models.BlogPost]{
		collection: CollectionBlogs,
		cacheKey:   CollectionBlogs,
		normalize:  models.MapBlogPost,
		entityID:   func(p models.BlogPost) string { return p.ID },
		// The store's native ordering is insufficient for mixed-format
		// dates, so posts are re-sorted client-side after normalization.
		sortFn: func(posts []models.BlogPost) {
			sort.SliceStable(posts, func(i, j int) bool { return posts[i].Date > posts[j].Date })
		},
		renormalizeOnHit: true,
	}
	s.notes = &Pipeline[models.Note]{
		collection: CollectionNotes,
		cacheKey:   CollectionNotes,
		normalize:  models.MapNote,
		entityID:   func(n models.Note) string { return n.ID },
		sortFn: func(notes []models.Note) {
			sort.SliceStable(notes, func(i, j int) bool {
				if notes[i].IsPinned != notes[j].IsPinned {
					return notes[i].IsPinned
				}
				return notes[i].UpdatedAt > notes[j].UpdatedAt
			})
		},
	}
	s.folders = &Pipeline[models.BookmarkFolder]{
		collection: CollectionBookmarkFolders,
		cacheKey:   CollectionBookmarkFolders,
		normalize:  models.MapBookmarkFolder,
		entityID:   func(f models.BookmarkFolder) string { return f.ID },
		listOpts:   remote.ListOptions{OrderBy: "name"},
	}
	s.links = &Pipeline[models.BookmarkLink]{
		collection: CollectionBookmarkLinks,
		cacheKey:   CollectionBookmarkLinks,
		normalize:  models.MapBookmarkLink,
		entityID:   func(l models.BookmarkLink) string { return l.ID },
		listOpts:   remote.ListOptions{OrderBy: "title"},
	}

	s.bindPipelines()
	return s
}

func (s *Service) bindPipelines() {
	bindPipeline(s, s.apps)
	bindPipeline(s, s.testers)
	bindPipeline(s, s.subscribers)
	bindPipeline(s, s.blogs)
	bindPipeline(s, s.notes)
	bindPipeline(s, s.folders)
	bindPipeline(s, s.links)
}

func bindPipeline[T any](s *Service, p *Pipeline[T]) {
	p.remote = s.remote
	p.store = s.store
	p.stale = s.stale
	p.log = s.log
	p.maxAge = s.maxAge
}

// comments builds the pipeline for one app's comments sub-collection.
func (s *Service) comments(appID string) *Pipeline[models.Comment] {
	p := &Pipeline[models.Comment]{
		collection: CommentsCollection(appID),
		cacheKey:   CommentsCollection(appID),
		normalize:  models.MapComment,
		entityID:   func(c models.Comment) string { return c.ID },
		listOpts:   remote.ListOptions{OrderBy: "timestamp", Descending: true},
	}
	bindPipeline(s, p)
	return p
}

// Per-entity sync, subscribe and cached-read entry points. These are thin
// delegations; the behavior contract lives on Pipeline.

func (s *Service) SyncApps(ctx context.Context, force bool) ([]models.AppEntry, error) {
	return s.apps.Sync(ctx, force)
}

func (s *Service) SyncTesters(ctx context.Context, force bool) ([]models.Tester, error) {
	return s.testers.Sync(ctx, force)
}

func (s *Service) SyncSubscribers(ctx context.Context, force bool) ([]models.Subscriber, error) {
	return s.subscribers.Sync(ctx, force)
}

func (s *Service) SyncBlogs(ctx context.Context, force bool) ([]models.BlogPost, error) {
	return s.blogs.Sync(ctx, force)
}

func (s *Service) SyncNotes(ctx context.Context, force bool) ([]models.Note, error) {
	return s.notes.Sync(ctx, force)
}

func (s *Service) SyncBookmarkFolders(ctx context.Context, force bool) ([]models.BookmarkFolder, error) {
	return s.folders.Sync(ctx, force)
}

func (s *Service) SyncBookmarkLinks(ctx context.Context, force bool) ([]models.BookmarkLink, error) {
	return s.links.Sync(ctx, force)
}

func (s *Service) SyncComments(ctx context.Context, appID string, force bool) ([]models.Comment, error) {
	return s.comments(appID).Sync(ctx, force)
}

func (s *Service) SubscribeApps(ctx context.Context, cb func([]models.AppEntry)) (func(), error) {
	return s.apps.Subscribe(ctx, cb)
}

func (s *Service) SubscribeBlogs(ctx context.Context, cb func([]models.BlogPost)) (func(), error) {
	return s.blogs.Subscribe(ctx, cb)
}

func (s *Service) SubscribeComments(ctx context.Context, appID string, cb func([]models.Comment)) (func(), error) {
	return s.comments(appID).Subscribe(ctx, cb)
}

// SyncAll force-refreshes every root collection and returns per-collection
// counts. Used by the resync command and the admin resync endpoint.
func (s *Service) SyncAll(ctx context.Context, force bool) (map[string]int, error) {
	counts := make(map[string]int)

	apps, err := s.apps.Sync(ctx, force)
	if err != nil {
		return counts, err
	}
	counts[CollectionApps] = len(apps)

	testers, err := s.testers.Sync(ctx, force)
	if err != nil {
		return counts, err
	}
	counts[CollectionTesters] = len(testers)

	subscribers, err := s.subscribers.Sync(ctx, force)
	if err != nil {
		return counts, err
	}
	counts[CollectionSubscribers] = len(subscribers)

	blogs, err := s.blogs.Sync(ctx, force)
	if err != nil {
		return counts, err
	}
	counts[CollectionBlogs] = len(blogs)

	notes, err := s.notes.Sync(ctx, force)
	if err != nil {
		return counts, err
	}
	counts[CollectionNotes] = len(notes)

	folders, err := s.folders.Sync(ctx, force)
	if err != nil {
		return counts, err
	}
	counts[CollectionBookmarkFolders] = len(folders)

	links, err := s.links.Sync(ctx, force)
	if err != nil {
		return counts, err
	}
	counts[CollectionBookmarkLinks] = len(links)

	return counts, nil
}

// AppBySlug returns the first app whose slug matches. Slugs are not
// guaranteed unique; first match wins.
func (s *Service) AppBySlug(ctx context.Context, slug string) (models.AppEntry, error) {
	apps, err := s.apps.Sync(ctx, false)
	if err != nil {
		return models.AppEntry{}, err
	}
	for _, app := range apps {
		if app.Slug == slug {
			return app, nil
		}
	}
	return models.AppEntry{}, fmt.Errorf("app %q: %w", slug, common.ErrNotFound)
}

// PostBySlug returns the first blog post whose slug matches.
func (s *Service) PostBySlug(ctx context.Context, slug string) (models.BlogPost, error) {
	posts, err := s.blogs.Sync(ctx, false)
	if err != nil {
		return models.BlogPost{}, err
	}
	for _, post := range posts {
		if post.Slug == slug {
			return post, nil
		}
	}
	return models.BlogPost{}, fmt.Errorf("post %q: %w", slug, common.ErrNotFound)
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// toRaw flattens an entity into the raw document shape written to the
// remote store.
func toRaw(v any) (models.RawDoc, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var raw models.RawDoc
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	delete(raw, "id")
	delete(raw, "uid")
	return raw, nil
}

// AddApp assigns an id if absent, stamps creation timestamps and writes
// through. The returned entry is the normalized view of what was written.
func (s *Service) AddApp(ctx context.Context, app models.AppEntry) (models.AppEntry, error) {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := nowStamp()
	app.CreatedAt, app.UpdatedAt = now, now

	raw, err := toRaw(app)
	if err != nil {
		return models.AppEntry{}, err
	}
	return s.apps.Add(ctx, app.ID, raw)
}

func (s *Service) UpdateApp(ctx context.Context, id string, patch models.RawDoc) (models.AppEntry, error) {
	patch["updatedAt"] = nowStamp()
	return s.apps.Update(ctx, id, patch)
}

// DeleteApp removes an app and its comments sub-collection. The comments are
// enumerated from the remote store and deleted one by one before the parent;
// there is no cross-document transaction, so a failure mid-cascade can leave
// orphaned comments while the parent survives.
func (s *Service) DeleteApp(ctx context.Context, id string) error {
	coll := CommentsCollection(id)
	docs, err := s.remote.List(ctx, coll, remote.ListOptions{})
	if err != nil {
		return fmt.Errorf("listing comments for cascade: %w", err)
	}
	for _, doc := range docs {
		if err := s.remote.Delete(ctx, coll, doc.ID); err != nil {
			return fmt.Errorf("cascading comment delete: %w", err)
		}
	}
	if err := s.store.ReplaceAll(ctx, coll, coll, nil); err != nil {
		return err
	}
	if err := s.store.DeleteMetadata(ctx, coll); err != nil {
		return err
	}
	return s.apps.Delete(ctx, id)
}

func (s *Service) AddBlogPost(ctx context.Context, post models.BlogPost) (models.BlogPost, error) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := nowStamp()
	post.CreatedAt, post.UpdatedAt = now, now
	if post.Date == "" {
		post.Date = now
	}

	raw, err := toRaw(post)
	if err != nil {
		return models.BlogPost{}, err
	}
	return s.blogs.Add(ctx, post.ID, raw)
}

func (s *Service) UpdateBlogPost(ctx context.Context, id string, patch models.RawDoc) (models.BlogPost, error) {
	patch["updatedAt"] = nowStamp()
	return s.blogs.Update(ctx, id, patch)
}

func (s *Service) DeleteBlogPost(ctx context.Context, id string) error {
	return s.blogs.Delete(ctx, id)
}

func (s *Service) AddNote(ctx context.Context, note models.Note) (models.Note, error) {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	now := nowStamp()
	note.CreatedAt, note.UpdatedAt = now, now

	raw, err := toRaw(note)
	if err != nil {
		return models.Note{}, err
	}
	return s.notes.Add(ctx, note.ID, raw)
}

func (s *Service) UpdateNote(ctx context.Context, id string, patch models.RawDoc) (models.Note, error) {
	patch["updatedAt"] = nowStamp()
	return s.notes.Update(ctx, id, patch)
}

func (s *Service) DeleteNote(ctx context.Context, id string) error {
	return s.notes.Delete(ctx, id)
}

func (s *Service) AddTester(ctx context.Context, t models.Tester) (models.Tester, error) {
	if t.UID == "" {
		t.UID = uuid.NewString()
	}
	if t.JoinedAt == "" {
		t.JoinedAt = nowStamp()
	}

	raw, err := toRaw(t)
	if err != nil {
		return models.Tester{}, err
	}
	return s.testers.Add(ctx, t.UID, raw)
}

func (s *Service) DeleteTester(ctx context.Context, uid string) error {
	return s.testers.Delete(ctx, uid)
}

func (s *Service) AddSubscriber(ctx context.Context, sub models.Subscriber) (models.Subscriber, error) {
	if sub.UID == "" {
		sub.UID = uuid.NewString()
	}
	if sub.JoinedAt == "" {
		sub.JoinedAt = nowStamp()
	}

	raw, err := toRaw(sub)
	if err != nil {
		return models.Subscriber{}, err
	}
	return s.subscribers.Add(ctx, sub.UID, raw)
}

func (s *Service) DeleteSubscriber(ctx context.Context, uid string) error {
	return s.subscribers.Delete(ctx, uid)
}

func (s *Service) AddBookmarkFolder(ctx context.Context, f models.BookmarkFolder) (models.BookmarkFolder, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt == "" {
		f.CreatedAt = nowStamp()
	}

	raw, err := toRaw(f)
	if err != nil {
		return models.BookmarkFolder{}, err
	}
	return s.folders.Add(ctx, f.ID, raw)
}

func (s *Service) AddBookmarkLink(ctx context.Context, l models.BookmarkLink) (models.BookmarkLink, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt == "" {
		l.CreatedAt = nowStamp()
	}

	raw, err := toRaw(l)
	if err != nil {
		return models.BookmarkLink{}, err
	}
	return s.links.Add(ctx, l.ID, raw)
}

func (s *Service) DeleteBookmarkLink(ctx context.Context, id string) error {
	return s.links.Delete(ctx, id)
}

// DeleteBookmarkFolder deletes the folder, all descendant folders and every
// link filed under any of them. The fan-out is explicit and recursive:
// children first, then the folder itself. A partial failure mid-cascade can
// leave orphans; nothing rolls back.
func (s *Service) DeleteBookmarkFolder(ctx context.Context, id string) error {
	folderDocs, err := s.remote.List(ctx, CollectionBookmarkFolders, remote.ListOptions{})
	if err != nil {
		return fmt.Errorf("listing folders for cascade: %w", err)
	}
	linkDocs, err := s.remote.List(ctx, CollectionBookmarkLinks, remote.ListOptions{})
	if err != nil {
		return fmt.Errorf("listing links for cascade: %w", err)
	}

	childrenOf := make(map[string][]string)
	for _, doc := range folderDocs {
		parent, _ := doc.Data["parentId"].(string)
		childrenOf[parent] = append(childrenOf[parent], doc.ID)
	}
	linksIn := make(map[string][]string)
	for _, doc := range linkDocs {
		folder, _ := doc.Data["folderId"].(string)
		linksIn[folder] = append(linksIn[folder], doc.ID)
	}

	var deleteTree func(folderID string) error
	deleteTree = func(folderID string) error {
		for _, child := range childrenOf[folderID] {
			if err := deleteTree(child); err != nil {
				return err
			}
		}
		for _, linkID := range linksIn[folderID] {
			if err := s.links.Delete(ctx, linkID); err != nil {
				return err
			}
		}
		return s.folders.Delete(ctx, folderID)
	}

	return deleteTree(id)
}

// AddComment posts a visitor comment optimistically: a temporary pending row
// is written to the local mirror before the remote write resolves, so the UI
// can show the comment immediately. On remote success the pending row is
// reconciled with the confirmed id; on failure it is removed and the error
// propagates.
func (s *Service) AddComment(ctx context.Context, appID, userID, displayName, content string) (models.Comment, error) {
	coll := CommentsCollection(appID)
	now := nowStamp()

	pending := models.Comment{
		ID:          "pending-" + uuid.NewString(),
		AppID:       appID,
		UserID:      userID,
		DisplayName: displayName,
		Content:     content,
		Timestamp:   now,
		Pending:     true,
	}
	payload, err := json.Marshal(pending)
	if err != nil {
		return models.Comment{}, err
	}
	if err := s.store.Put(ctx, coll, pending.ID, payload); err != nil {
		return models.Comment{}, err
	}

	id := uuid.NewString()
	raw := models.RawDoc{
		"appId":       appID,
		"userId":      userID,
		"displayName": displayName,
		"content":     content,
		"timestamp":   now,
	}
	if err := s.remote.Set(ctx, coll, id, raw); err != nil {
		// Remove the optimistic row; the caller surfaces the failure.
		_ = s.store.Delete(ctx, coll, pending.ID)
		return models.Comment{}, fmt.Errorf("posting comment: %w", err)
	}

	if err := s.store.Delete(ctx, coll, pending.ID); err != nil {
		return models.Comment{}, err
	}
	confirmed := models.MapComment(id, raw)
	confirmedPayload, err := json.Marshal(confirmed)
	if err != nil {
		return models.Comment{}, err
	}
	if err := s.store.Put(ctx, coll, id, confirmedPayload); err != nil {
		return models.Comment{}, err
	}
	return confirmed, nil
}

func (s *Service) DeleteComment(ctx context.Context, appID, commentID string) error {
	return s.comments(appID).Delete(ctx, commentID)
}
