// Package api exposes the document store over HTTP/JSON: public collection
// reads and the websocket feed, JWT-gated mutations, admin login, and
// presigned upload URLs.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/docstore"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/logging"
	sc "github.com/jakir-hossen-4928/jakir-hossen-dev/internal/server/config"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/server/feed"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/server/uploads"
)

// NewRouter wires all docstore routes onto a chi mux.
func NewRouter(cfg *sc.Config, backend docstore.Backend, hub *feed.Hub, log logging.Logger) *chi.Mux {
	h := &Handlers{
		config:    cfg,
		backend:   backend,
		hub:       hub,
		presigner: uploads.NewPresigner(cfg),
		log:       log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		r.Get("/collections/{name}", h.ListCollection)
		r.Get("/collections/{name}/{id}", h.GetDocument)
		r.Get("/feed/{name}", feed.Handler(hub, backend, log))

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Put("/collections/{name}/{id}", h.SetDocument)
			r.Patch("/collections/{name}/{id}", h.MergeDocument)
			r.Delete("/collections/{name}/{id}", h.DeleteDocument)
			r.Post("/uploads/presign", h.Presign)
		})
	})

	return r
}

// requestLogger logs method, path, status and latency for every request.
func requestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).String(),
			)
		})
	}
}
