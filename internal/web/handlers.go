package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/common"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/logging"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/models"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/search"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/sync"
)

const visitorCookie = "visitor_id"

// Uploader issues presigned upload URLs from the docstore server.
// *remote.HTTPClient satisfies it.
type Uploader interface {
	PresignUpload(ctx context.Context, contentType string) (key, url string, err error)
}

// Server renders the public site pages and the admin JSON surface. All
// content reads go through the sync service, so a fresh cache serves pages
// without touching the remote store.
type Server struct {
	profile  SiteProfile
	tmpl     *Templates
	svc      *sync.Service
	uploader Uploader
	apiToken string
	log      logging.Logger
}

func NewServer(profile SiteProfile, svc *sync.Service, uploader Uploader, apiToken string, log logging.Logger) (*Server, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{
		profile:  profile,
		tmpl:     tmpl,
		svc:      svc,
		uploader: uploader,
		apiToken: apiToken,
		log:      log,
	}, nil
}

// Router wires the public pages, visitor forms, and admin endpoints.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHome)
	r.Get("/apps", s.handleApps)
	r.Get("/apps/{slug}", s.handleApp)
	r.Post("/apps/{slug}/comments", s.handlePostComment)
	r.Post("/apps/{slug}/testers", s.handleTesterSignup)
	r.Post("/subscribe", s.handleSubscribe)
	r.Get("/blog", s.handleBlogs)
	r.Get("/blog/{slug}", s.handleBlogPost)
	r.Get("/privacy", s.handlePrivacy)

	r.Route("/admin/api", func(r chi.Router) {
		r.Use(s.requireToken)
		s.adminRoutes(r)
	})

	return r
}

// pageData is the payload every template receives.
type pageData struct {
	Profile  SiteProfile
	Apps     []models.AppEntry
	App      models.AppEntry
	Comments []models.Comment
	Posts    []models.BlogPost
	Post     models.BlogPost
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error(r.Context(), "page render failed", "path", r.URL.Path, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	apps, err := s.svc.SyncApps(ctx, false)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	posts, err := s.svc.SyncBlogs(ctx, false)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	published := search.PublishedPosts(posts)
	search.SortPostsByDate(published)
	if len(published) > 5 {
		published = published[:5]
	}

	data := pageData{
		Profile: s.profile,
		Apps:    search.ProductionApps(apps),
		Posts:   published,
	}
	if err := s.tmpl.Home.Execute(w, data); err != nil {
		s.log.Error(ctx, "rendering home", "error", err)
	}
}

func (s *Server) handleApps(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	apps, err := s.svc.SyncApps(ctx, false)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if q := r.URL.Query().Get("q"); q != "" {
		apps = search.Apps(q, apps)
	}

	data := pageData{Profile: s.profile, Apps: apps}
	if err := s.tmpl.Apps.Execute(w, data); err != nil {
		s.log.Error(ctx, "rendering apps", "error", err)
	}
}

func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	app, err := s.svc.AppBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}

	comments, err := s.svc.SyncComments(ctx, app.ID, false)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	data := pageData{Profile: s.profile, App: app, Comments: comments}
	if err := s.tmpl.App.Execute(w, data); err != nil {
		s.log.Error(ctx, "rendering app", "slug", slug, "error", err)
	}
}

// visitorID returns the visitor's stable id from the cookie, minting one on
// first contact.
func (s *Server) visitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   365 * 24 * 3600,
		HttpOnly: true,
	})
	return id
}

func (s *Server) handlePostComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	app, err := s.svc.AppBySlug(ctx, slug)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	content := r.FormValue("content")
	if content == "" {
		http.Error(w, "empty comment", http.StatusBadRequest)
		return
	}

	userID := s.visitorID(w, r)
	if _, err := s.svc.AddComment(ctx, app.ID, userID, r.FormValue("name"), content); err != nil {
		s.log.Error(ctx, "posting comment", "app", app.ID, "error", err)
		http.Error(w, "comment not saved", http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, "/apps/"+slug, http.StatusSeeOther)
}

func (s *Server) handleTesterSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	app, err := s.svc.AppBySlug(ctx, slug)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	email := r.FormValue("email")
	if email == "" {
		http.Error(w, "email required", http.StatusBadRequest)
		return
	}

	_, err = s.svc.AddTester(ctx, models.Tester{
		Email:          email,
		DisplayName:    r.FormValue("name"),
		PlayStoreEmail: r.FormValue("playStoreEmail"),
		AppID:          app.ID,
	})
	if err != nil {
		s.log.Error(ctx, "tester signup", "app", app.ID, "error", err)
		http.Error(w, "signup failed", http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, "/apps/"+slug, http.StatusSeeOther)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := r.FormValue("email")
	if email == "" {
		http.Error(w, "email required", http.StatusBadRequest)
		return
	}

	if _, err := s.svc.AddSubscriber(ctx, models.Subscriber{Email: email}); err != nil {
		s.log.Error(ctx, "newsletter subscribe", "error", err)
		http.Error(w, "subscribe failed", http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleBlogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := s.svc.SyncBlogs(ctx, false)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	published := search.PublishedPosts(posts)
	if q := r.URL.Query().Get("q"); q != "" {
		published = search.Posts(q, published)
	} else {
		search.SortPostsByDate(published)
	}
	if category := r.URL.Query().Get("category"); category != "" {
		published = search.PostsByCategory(published, category)
	}

	data := pageData{Profile: s.profile, Posts: published}
	if err := s.tmpl.Blogs.Execute(w, data); err != nil {
		s.log.Error(ctx, "rendering blog gallery", "error", err)
	}
}

func (s *Server) handleBlogPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	post, err := s.svc.PostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}
	// drafts are admin-only
	if post.Status != models.PostStatusPublished {
		http.NotFound(w, r)
		return
	}

	data := pageData{Profile: s.profile, Post: post}
	if err := s.tmpl.Blog.Execute(w, data); err != nil {
		s.log.Error(ctx, "rendering blog post", "slug", slug, "error", err)
	}
}

func (s *Server) handlePrivacy(w http.ResponseWriter, r *http.Request) {
	data := pageData{Profile: s.profile}
	if err := s.tmpl.Privacy.Execute(w, data); err != nil {
		s.log.Error(r.Context(), "rendering privacy", "error", err)
	}
}
