package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/logging"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/netx"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/config"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/export"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/localstore"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/sync"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/remote"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/web"
)

const shutdownTimeout = 10 * time.Second

// bootstrap builds the shared client stack: config, logger, remote client,
// local store, and the sync service on top.
func bootstrap(ctx context.Context) (*config.Config, logging.Logger, *remote.HTTPClient, *sync.Service, func(), error) {
	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	rc := remote.NewHTTPClient(cfg.ServerURL, logger)
	if cfg.APIToken != "" {
		rc.SetToken(cfg.APIToken)
	}

	store, err := localstore.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("opening local cache: %w", err)
	}

	svc := sync.New(rc, store, logger, sync.WithMaxAge(cfg.CacheMaxAge))
	cleanup := func() {
		_ = store.Close()
		_ = rc.Close()
	}
	return cfg, logger, rc, svc, cleanup, nil
}

func runServe(ctx context.Context) error {
	cfg, logger, rc, svc, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	profile, err := web.LoadProfile(cfg.SiteProfile)
	if err != nil {
		return err
	}

	site, err := web.NewServer(profile, svc, rc, cfg.APIToken, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	// warm the cache before taking traffic; the site still starts if the
	// remote store is down and serves whatever the mirror holds
	if counts, err := svc.SyncAll(ctx, false); err != nil {
		logger.Warn(ctx, "initial sync incomplete", "error", err)
	} else {
		logger.Info(ctx, "cache warmed", "collections", len(counts))
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: site.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "serving site", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runSync(ctx context.Context, force bool) error {
	_, _, _, svc, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	counts, err := svc.SyncAll(ctx, force)
	if err != nil {
		return err
	}
	for name, n := range counts {
		fmt.Printf("%-20s %d\n", name, n)
	}
	return nil
}

func runExport(ctx context.Context, what, out string) error {
	_, _, _, svc, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch what {
	case "testers":
		testers, err := svc.SyncTesters(ctx, false)
		if err != nil {
			return err
		}
		return export.Testers(w, testers)
	case "subscribers":
		subs, err := svc.SyncSubscribers(ctx, false)
		if err != nil {
			return err
		}
		return export.Subscribers(w, subs)
	default:
		return fmt.Errorf("unknown export target %q", what)
	}
}

func runLogin(ctx context.Context, username string) error {
	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	fmt.Fprintf(os.Stderr, "Password for %s: ", username)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	rc := remote.NewHTTPClient(cfg.ServerURL, logger)
	defer rc.Close()

	token, err := rc.Login(ctx, username, string(password))
	if err != nil {
		return err
	}

	// print to stdout so it can be captured into API_TOKEN
	fmt.Println(token)
	return nil
}

func runUpload(ctx context.Context, path, contentType string) error {
	cfg, logger, rc, _, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.APIToken == "" {
		return errors.New("no API token configured, run `portfolio login` first")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(path))
	}

	key, url, err := rc.PresignUpload(ctx, contentType)
	if err != nil {
		return err
	}
	if err := netx.UploadToPresignedURL(ctx, url, contentType, data); err != nil {
		return err
	}

	logger.Info(ctx, "uploaded", "key", key, "bytes", len(data))
	fmt.Println(key)
	return nil
}
