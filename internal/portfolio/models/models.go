// Package models defines the portfolio entities mirrored between the remote
// document store and the local cache, plus the normalizers that map raw
// remote documents into them.
package models

// AppStatus classifies an app's release track.
type AppStatus string

const (
	AppStatusProduction AppStatus = "production"
	AppStatusTesting    AppStatus = "testing"
)

// PostStatus classifies a blog post's visibility.
type PostStatus string

const (
	PostStatusPublished PostStatus = "published"
	PostStatusDraft     PostStatus = "draft"
)

// AppEntry is a published Android app shown in the app gallery.
// ID is globally unique and stable; Slug is used for public lookup but is
// not guaranteed unique (first match wins).
type AppEntry struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	AppName      string    `json:"appName"`
	Status       AppStatus `json:"status"`
	PlayStoreURL string    `json:"playStoreUrl"`
	APKURL       string    `json:"apkUrl"`
	Icon         string    `json:"icon"`
	Description  string    `json:"description"`
	CreatedAt    string    `json:"createdAt"`
	UpdatedAt    string    `json:"updatedAt"`
}

// Comment is a visitor comment scoped under an AppEntry. It is cascade
// deleted with its parent. Pending marks an optimistic local row that has
// not been confirmed by the remote store yet.
type Comment struct {
	ID          string `json:"id"`
	AppID       string `json:"appId"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Content     string `json:"content"`
	Timestamp   string `json:"timestamp"`
	Pending     bool   `json:"pending,omitempty"`
}

// Tester is a beta-testing signup for an app.
type Tester struct {
	UID            string `json:"uid"`
	Email          string `json:"email"`
	DisplayName    string `json:"displayName"`
	JoinedAt       string `json:"joinedAt"`
	PlayStoreEmail string `json:"playStoreEmail"`
	AppID          string `json:"appId"`
}

// Subscriber is a newsletter signup.
type Subscriber struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	JoinedAt string `json:"joinedAt"`
}

// BlogPost is an article in the blog gallery. Description holds rendered HTML.
type BlogPost struct {
	ID             string     `json:"id"`
	Slug           string     `json:"slug"`
	Title          string     `json:"title"`
	Date           string     `json:"date"`
	Categories     []string   `json:"categories"`
	Description    string     `json:"description"`
	Excerpt        string     `json:"excerpt"`
	Status         PostStatus `json:"status"`
	Author         string     `json:"author"`
	ThumbnailColor string     `json:"thumbnailColor"`
	CreatedAt      string     `json:"createdAt"`
	UpdatedAt      string     `json:"updatedAt"`
}

// Note is a private admin note.
type Note struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	IsPinned  bool     `json:"isPinned"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

// BookmarkFolder is a node in the bookmark tree. ParentID is empty for
// root folders. Deleting a folder cascades to all descendant folders and
// links; the cascade is enforced by the sync service, not the store.
type BookmarkFolder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ParentID  string `json:"parentId"`
	CreatedAt string `json:"createdAt"`
}

// BookmarkLink is a saved URL, optionally filed under a folder.
type BookmarkLink struct {
	ID          string `json:"id"`
	FolderID    string `json:"folderId"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
}
