package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/common"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/docstore"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/logging"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/server/auth"
	sc "github.com/jakir-hossen-4928/jakir-hossen-dev/internal/server/config"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/server/feed"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/server/uploads"
)

// adminsCollection holds the admin account documents; it gets extra
// validation so the authenticated admin cannot remove their own record.
const adminsCollection = "admins"

type contextKey string

const usernameKey contextKey = "username"

// Handlers carries the shared dependencies of all route handlers.
type Handlers struct {
	config    *sc.Config
	backend   docstore.Backend
	hub       *feed.Hub
	presigner *uploads.Presigner
	log       logging.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps sentinel errors onto HTTP status codes.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrSelfChange):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		h.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login verifies the admin credential and returns a signed JWT.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Username != h.config.AdminUser ||
		h.config.AdminPasswordHash == "" ||
		!auth.CheckPassword(h.config.AdminPasswordHash, req.Password) {
		h.writeError(w, r, common.ErrUnauthorized)
		return
	}

	token, err := auth.GenerateToken(req.Username, []byte(h.config.SecretKey), h.config.TokenValidityDuration)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// RequireAuth extracts and validates the bearer token, storing the
// authenticated username in the request context.
func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			h.writeError(w, r, common.ErrUnauthorized)
			return
		}

		username, err := auth.GetUsernameFromToken(token, []byte(h.config.SecretKey))
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handlers) ListCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	opts := docstore.ListOptions{
		OrderBy:    r.URL.Query().Get("orderBy"),
		Descending: r.URL.Query().Get("dir") == "desc",
	}

	docs, err := h.backend.List(r.Context(), name, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []docstore.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")

	doc, err := h.backend.Get(r.Context(), name, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handlers) SetDocument(w http.ResponseWriter, r *http.Request) {
	h.mutateDocument(w, r, h.backend.Set)
}

func (h *Handlers) MergeDocument(w http.ResponseWriter, r *http.Request) {
	h.mutateDocument(w, r, h.backend.Merge)
}

func (h *Handlers) mutateDocument(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, collection, id string, data map[string]any) error) {

	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")

	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := op(r.Context(), name, id, data); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.broadcastSnapshot(r.Context(), name)
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handlers) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")

	// the admin must not remove their own account record
	if name == adminsCollection {
		if username, _ := r.Context().Value(usernameKey).(string); username == id {
			h.writeError(w, r, common.ErrSelfChange)
			return
		}
	}

	if err := h.backend.Delete(r.Context(), name, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.broadcastSnapshot(r.Context(), name)
	w.WriteHeader(http.StatusNoContent)
}

// broadcastSnapshot re-lists the collection and pushes the full result set
// to every feed subscriber.
func (h *Handlers) broadcastSnapshot(ctx context.Context, collection string) {
	docs, err := h.backend.List(ctx, collection, docstore.ListOptions{})
	if err != nil {
		h.log.Error(ctx, "listing collection for broadcast", "collection", collection, "error", err)
		return
	}
	h.hub.Broadcast(ctx, collection, docs)
}

type presignRequest struct {
	ContentType string `json:"contentType"`
}

type presignResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Presign returns a presigned S3 PUT URL for a fresh storage key.
func (h *Handlers) Presign(w http.ResponseWriter, r *http.Request) {
	var req presignRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	key, url, err := h.presigner.PresignedPutURL(r.Context(), req.ContentType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, presignResponse{Key: key, URL: url})
}
