// Package search layers fuzzy search and single-pass sort/filter transforms
// over the entity lists served by the sync layer.
package search

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/models"
)

// Fuzzy returns the items whose key fuzzily matches query, best matches
// first. An empty query returns the items unchanged.
func Fuzzy[T any](query string, items []T, key func(T) string) []T {
	if strings.TrimSpace(query) == "" {
		return items
	}

	source := make([]string, len(items))
	for i, item := range items {
		source[i] = key(item)
	}

	matches := fuzzy.Find(query, source)
	out := make([]T, 0, len(matches))
	for _, m := range matches {
		out = append(out, items[m.Index])
	}
	return out
}

// Posts searches blog posts by title.
func Posts(query string, posts []models.BlogPost) []models.BlogPost {
	return Fuzzy(query, posts, func(p models.BlogPost) string { return p.Title })
}

// Notes searches notes by title.
func Notes(query string, notes []models.Note) []models.Note {
	return Fuzzy(query, notes, func(n models.Note) string { return n.Title })
}

// Links searches bookmark links by title.
func Links(query string, links []models.BookmarkLink) []models.BookmarkLink {
	return Fuzzy(query, links, func(l models.BookmarkLink) string { return l.Title })
}

// Apps searches apps by name.
func Apps(query string, apps []models.AppEntry) []models.AppEntry {
	return Fuzzy(query, apps, func(a models.AppEntry) string { return a.AppName })
}

// PublishedPosts filters to published posts only.
func PublishedPosts(posts []models.BlogPost) []models.BlogPost {
	out := make([]models.BlogPost, 0, len(posts))
	for _, p := range posts {
		if p.Status == models.PostStatusPublished {
			out = append(out, p)
		}
	}
	return out
}

// PostsByCategory filters posts carrying the given category.
func PostsByCategory(posts []models.BlogPost, category string) []models.BlogPost {
	if category == "" {
		return posts
	}
	out := make([]models.BlogPost, 0, len(posts))
	for _, p := range posts {
		for _, c := range p.Categories {
			if strings.EqualFold(c, category) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// NotesByTag filters notes carrying the given tag.
func NotesByTag(notes []models.Note, tag string) []models.Note {
	if tag == "" {
		return notes
	}
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		for _, t := range n.Tags {
			if strings.EqualFold(t, tag) {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// ProductionApps filters to production-track apps only.
func ProductionApps(apps []models.AppEntry) []models.AppEntry {
	out := make([]models.AppEntry, 0, len(apps))
	for _, a := range apps {
		if a.Status == models.AppStatusProduction {
			out = append(out, a)
		}
	}
	return out
}

// SortPostsByDate orders posts newest first. Dates are RFC3339 strings, so
// lexicographic comparison matches chronological order.
func SortPostsByDate(posts []models.BlogPost) {
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Date > posts[j].Date })
}

// Categories returns the distinct categories across posts, sorted, keeping
// each category's first-seen capitalization.
func Categories(posts []models.BlogPost) []string {
	seen := make(map[string]string)
	for _, p := range posts {
		for _, c := range p.Categories {
			lower := strings.ToLower(c)
			if _, ok := seen[lower]; !ok {
				seen[lower] = c
			}
		}
	}
	out := make([]string, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
