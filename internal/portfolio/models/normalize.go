package models

// RawDoc is the unvalidated shape of a remote document.
type RawDoc = map[string]any

// Normalizers map raw remote documents into typed entities, substituting a
// type-safe default for every absent or malformed field. They never fail:
// the rest of the system relies on them as the single defensive boundary
// against unpredictable-shape remote data. All of them are idempotent over
// their own output.

func rawString(raw RawDoc, key, def string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return def
}

func rawBool(raw RawDoc, key string) bool {
	v, _ := raw[key].(bool)
	return v
}

func rawStrings(raw RawDoc, key string) []string {
	switch v := raw[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

// MapApp normalizes a raw app document. Missing status defaults to
// production; missing slug falls back to the document id.
func MapApp(id string, raw RawDoc) AppEntry {
	status := AppStatus(rawString(raw, "status", string(AppStatusProduction)))
	if status != AppStatusProduction && status != AppStatusTesting {
		status = AppStatusProduction
	}
	return AppEntry{
		ID:           id,
		Slug:         rawString(raw, "slug", id),
		AppName:      rawString(raw, "appName", ""),
		Status:       status,
		PlayStoreURL: rawString(raw, "playStoreUrl", ""),
		APKURL:       rawString(raw, "apkUrl", ""),
		Icon:         rawString(raw, "icon", ""),
		Description:  rawString(raw, "description", ""),
		CreatedAt:    coerceTimestamp(raw["createdAt"], ""),
		UpdatedAt:    coerceTimestamp(raw["updatedAt"], ""),
	}
}

// MapComment normalizes a raw comment document.
func MapComment(id string, raw RawDoc) Comment {
	return Comment{
		ID:          id,
		AppID:       rawString(raw, "appId", ""),
		UserID:      rawString(raw, "userId", ""),
		DisplayName: rawString(raw, "displayName", "Anonymous"),
		Content:     rawString(raw, "content", ""),
		Timestamp:   coerceTimestamp(raw["timestamp"], ""),
		Pending:     rawBool(raw, "pending"),
	}
}

// MapTester normalizes a raw tester document.
func MapTester(id string, raw RawDoc) Tester {
	return Tester{
		UID:            id,
		Email:          rawString(raw, "email", ""),
		DisplayName:    rawString(raw, "displayName", ""),
		JoinedAt:       coerceTimestamp(raw["joinedAt"], ""),
		PlayStoreEmail: rawString(raw, "playStoreEmail", ""),
		AppID:          rawString(raw, "appId", ""),
	}
}

// MapSubscriber normalizes a raw subscriber document.
func MapSubscriber(id string, raw RawDoc) Subscriber {
	return Subscriber{
		UID:      id,
		Email:    rawString(raw, "email", ""),
		JoinedAt: coerceTimestamp(raw["joinedAt"], ""),
	}
}

// MapBlogPost normalizes a raw blog post document. Missing categories become
// an empty slice, never nil; missing status defaults to published.
func MapBlogPost(id string, raw RawDoc) BlogPost {
	status := PostStatus(rawString(raw, "status", string(PostStatusPublished)))
	if status != PostStatusPublished && status != PostStatusDraft {
		status = PostStatusPublished
	}
	return BlogPost{
		ID:             id,
		Slug:           rawString(raw, "slug", id),
		Title:          rawString(raw, "title", "Untitled"),
		Date:           coerceTimestamp(raw["date"], ""),
		Categories:     rawStrings(raw, "categories"),
		Description:    rawString(raw, "description", ""),
		Excerpt:        rawString(raw, "excerpt", ""),
		Status:         status,
		Author:         rawString(raw, "author", ""),
		ThumbnailColor: rawString(raw, "thumbnailColor", ""),
		CreatedAt:      coerceTimestamp(raw["createdAt"], ""),
		UpdatedAt:      coerceTimestamp(raw["updatedAt"], ""),
	}
}

// MapNote normalizes a raw note document.
func MapNote(id string, raw RawDoc) Note {
	return Note{
		ID:        id,
		Title:     rawString(raw, "title", "Untitled"),
		Content:   rawString(raw, "content", ""),
		Tags:      rawStrings(raw, "tags"),
		IsPinned:  rawBool(raw, "isPinned"),
		CreatedAt: coerceTimestamp(raw["createdAt"], ""),
		UpdatedAt: coerceTimestamp(raw["updatedAt"], ""),
	}
}

// MapBookmarkFolder normalizes a raw bookmark folder document.
func MapBookmarkFolder(id string, raw RawDoc) BookmarkFolder {
	return BookmarkFolder{
		ID:        id,
		Name:      rawString(raw, "name", ""),
		ParentID:  rawString(raw, "parentId", ""),
		CreatedAt: coerceTimestamp(raw["createdAt"], ""),
	}
}

// MapBookmarkLink normalizes a raw bookmark link document.
func MapBookmarkLink(id string, raw RawDoc) BookmarkLink {
	return BookmarkLink{
		ID:          id,
		FolderID:    rawString(raw, "folderId", ""),
		Title:       rawString(raw, "title", ""),
		URL:         rawString(raw, "url", ""),
		Description: rawString(raw, "description", ""),
		CreatedAt:   coerceTimestamp(raw["createdAt"], ""),
	}
}
