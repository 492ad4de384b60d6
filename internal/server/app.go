// Package server initializes and runs the document-store server: storage
// backend selection, route wiring, and graceful shutdown on OS signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/docstore"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/logging"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/server/api"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/server/config"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/server/feed"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	backend docstore.Backend
	hub     *feed.Hub
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	var (
		backend docstore.Backend
		err     error
	)
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database DSN configured, using in-memory storage")
		backend = docstore.NewMemoryBackend()
	} else {
		backend, err = docstore.NewPostgresBackend(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
	}

	return &App{
		config:  c,
		logger:  logger,
		backend: backend,
		hub:     feed.NewHub(logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting docstore server", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: api.NewRouter(app.config, app.backend, app.hub, app.logger),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	if err := app.backend.Close(); err != nil {
		return fmt.Errorf("backend close error: %w", err)
	}
	return nil
}
