package web

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/common"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/export"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/models"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/search"
)

// requireToken gates the admin surface behind the configured API token.
// An empty configured token disables the surface entirely.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, _ := strings.CutPrefix(header, "Bearer ")
		if s.apiToken == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(s.apiToken)) != 1 {
			writeAdminJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAdminJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) adminError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, common.ErrNotFound) {
		status = http.StatusNotFound
	}
	s.log.Error(r.Context(), "admin operation failed", "path", r.URL.Path, "error", err)
	writeAdminJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeAdminJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return v, false
	}
	return v, true
}

func (s *Server) adminRoutes(r chi.Router) {
	r.Post("/resync", s.adminResync)
	r.Post("/uploads", s.adminUpload)

	r.Get("/export/testers.csv", s.adminExportTesters)
	r.Get("/export/subscribers.csv", s.adminExportSubscribers)

	r.Post("/apps", s.adminAddApp)
	r.Patch("/apps/{id}", s.adminUpdateApp)
	r.Delete("/apps/{id}", s.adminDeleteApp)
	r.Delete("/apps/{id}/comments/{commentID}", s.adminDeleteComment)

	r.Post("/blogs", s.adminAddBlog)
	r.Patch("/blogs/{id}", s.adminUpdateBlog)
	r.Delete("/blogs/{id}", s.adminDeleteBlog)

	r.Get("/notes", s.adminListNotes)
	r.Post("/notes", s.adminAddNote)
	r.Patch("/notes/{id}", s.adminUpdateNote)
	r.Delete("/notes/{id}", s.adminDeleteNote)

	r.Get("/testers", s.adminListTesters)
	r.Delete("/testers/{uid}", s.adminDeleteTester)
	r.Get("/subscribers", s.adminListSubscribers)
	r.Delete("/subscribers/{uid}", s.adminDeleteSubscriber)

	r.Get("/bookmarks", s.adminListBookmarks)
	r.Post("/bookmarks/folders", s.adminAddFolder)
	r.Delete("/bookmarks/folders/{id}", s.adminDeleteFolder)
	r.Post("/bookmarks/links", s.adminAddLink)
	r.Delete("/bookmarks/links/{id}", s.adminDeleteLink)
}

// adminResync forces a full refresh of every mirrored collection.
func (s *Server) adminResync(w http.ResponseWriter, r *http.Request) {
	counts, err := s.svc.SyncAll(r.Context(), true)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	writeAdminJSON(w, http.StatusOK, counts)
}

// adminUpload hands out a presigned PUT URL from the docstore server.
func (s *Server) adminUpload(w http.ResponseWriter, r *http.Request) {
	if s.uploader == nil {
		writeAdminJSON(w, http.StatusNotImplemented, map[string]string{"error": "uploads not configured"})
		return
	}

	var req struct {
		ContentType string `json:"contentType"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	key, url, err := s.uploader.PresignUpload(r.Context(), req.ContentType)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	writeAdminJSON(w, http.StatusOK, map[string]string{"key": key, "url": url})
}

func (s *Server) adminExportTesters(w http.ResponseWriter, r *http.Request) {
	testers, err := s.svc.SyncTesters(r.Context(), false)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="testers.csv"`)
	if err := export.Testers(w, testers); err != nil {
		s.log.Error(r.Context(), "writing testers csv", "error", err)
	}
}

func (s *Server) adminExportSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := s.svc.SyncSubscribers(r.Context(), false)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="subscribers.csv"`)
	if err := export.Subscribers(w, subs); err != nil {
		s.log.Error(r.Context(), "writing subscribers csv", "error", err)
	}
}

func (s *Server) adminAddApp(w http.ResponseWriter, r *http.Request) {
	app, ok := decodeBody[models.AppEntry](w, r)
	if !ok {
		return
	}
	created, err := s.svc.AddApp(r.Context(), app)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	writeAdminJSON(w, http.StatusCreated, created)
}

func (s *Server) adminUpdateApp(w http.ResponseWriter, r *http.Request) {
	patch, ok := decodeBody[models.RawDoc](w, r)
	if !ok {
		return
	}
	updated, err := s.svc.UpdateApp(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	writeAdminJSON(w, http.StatusOK, updated)
}

func (s *Server) adminDeleteApp(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteApp(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.adminError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminDeleteComment(w http.ResponseWriter, r *http.Request) {
	err := s.svc.DeleteComment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "commentID"))
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminAddBlog(w http.ResponseWriter, r *http.Request) {
	post, ok := decodeBody[models.BlogPost](w, r)
	if !ok {
		return
	}
	created, err := s.svc.AddBlogPost(r.Context(), post)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	writeAdminJSON(w, http.StatusCreated, created)
}

func (s *Server) adminUpdateBlog(w http.ResponseWriter, r *http.Request) {
	patch, ok := decodeBody[models.RawDoc](w, r)
	if !ok {
		return
	}
	updated, err := s.svc.UpdateBlogPost(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	writeAdminJSON(w, http.StatusOK, updated)
}

func (s *Server) adminDeleteBlog(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteBlogPost(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.adminError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.svc.SyncNotes(r.Context(), false)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	if q := r.URL.Query().Get("q"); q != "" {
		notes = search.Notes(q, notes)
	}
	if tag := r.URL.Query().Get("tag"); tag != "" {
		notes = search.NotesByTag(notes, tag)
	}
	writeAdminJSON(w, http.StatusOK, notes)
}

func (s *Server) adminAddNote(w http.ResponseWriter, r *http.Request) {
	note, ok := decodeBody[models.Note](w, r)
	if !ok {
		return
	}
	created, err := s.svc.AddNote(r.Context(), note)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	writeAdminJSON(w, http.StatusCreated, created)
}

func (s *Server) adminUpdateNote(w http.ResponseWriter, r *http.Request) {
	patch, ok := decodeBody[models.RawDoc](w, r)
	if !ok {
		return
	}
	updated, err := s.svc.UpdateNote(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	writeAdminJSON(w, http.StatusOK, updated)
}

func (s *Server) adminDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.adminError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminListTesters(w http.ResponseWriter, r *http.Request) {
	testers, err := s.svc.SyncTesters(r.Context(), false)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	writeAdminJSON(w, http.StatusOK, testers)
}

func (s *Server) adminDeleteTester(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTester(r.Context(), chi.URLParam(r, "uid")); err != nil {
		s.adminError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := s.svc.SyncSubscribers(r.Context(), false)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	writeAdminJSON(w, http.StatusOK, subs)
}

func (s *Server) adminDeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteSubscriber(r.Context(), chi.URLParam(r, "uid")); err != nil {
		s.adminError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bookmarkTree struct {
	Folders []models.BookmarkFolder `json:"folders"`
	Links   []models.BookmarkLink   `json:"links"`
}

func (s *Server) adminListBookmarks(w http.ResponseWriter, r *http.Request) {
	folders, err := s.svc.SyncBookmarkFolders(r.Context(), false)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	links, err := s.svc.SyncBookmarkLinks(r.Context(), false)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	if q := r.URL.Query().Get("q"); q != "" {
		links = search.Links(q, links)
	}
	writeAdminJSON(w, http.StatusOK, bookmarkTree{Folders: folders, Links: links})
}

func (s *Server) adminAddFolder(w http.ResponseWriter, r *http.Request) {
	folder, ok := decodeBody[models.BookmarkFolder](w, r)
	if !ok {
		return
	}
	created, err := s.svc.AddBookmarkFolder(r.Context(), folder)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	writeAdminJSON(w, http.StatusCreated, created)
}

func (s *Server) adminDeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteBookmarkFolder(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.adminError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminAddLink(w http.ResponseWriter, r *http.Request) {
	link, ok := decodeBody[models.BookmarkLink](w, r)
	if !ok {
		return
	}
	created, err := s.svc.AddBookmarkLink(r.Context(), link)
	if err != nil {
		s.adminError(w, r, err)
		return
	}
	writeAdminJSON(w, http.StatusCreated, created)
}

func (s *Server) adminDeleteLink(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteBookmarkLink(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.adminError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
