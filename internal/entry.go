// Package internal provides the `memo serve` initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/memo/internal/api"
	"github.com/starford/memo/internal/noteservice"
	"github.com/starford/memo/internal/sse"
	"github.com/starford/memo/internal/storage"
	"github.com/starford/memo/internal/watch"
)

const keepAliveInterval = 30 * time.Second

// NewHandler builds the full HTTP handler: health endpoints plus the API
// under /api.
func NewHandler(svc *noteservice.Service, auth AuthConfig, broker *sse.Broker) http.Handler {
	var sseHandler http.Handler
	if broker != nil {
		sseHandler = broker
	}
	apiRouter := api.NewRouter(svc, auth.AuthEnabled(), auth.Token, sseHandler)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ok, err := svc.Store().Exists(); err != nil || !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"memo file missing"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	return r
}

// Run starts the HTTP server with the given options and blocks until ctx is
// cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
		slog.SetDefault(logger)
	}

	store := app.store
	if store == nil {
		file, err := storage.NewFile(cfg.Memo.Path)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		if cfg.Memo.LockTimeout > 0 {
			file.SetLockTimeout(cfg.Memo.LockTimeout)
		}
		store = file
	}
	if err := store.Init(); err != nil {
		return fmt.Errorf("init memo file: %w", err)
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("memo_path", store.Path()),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc := noteservice.NewService(store, noteservice.WithLogger(logger))

	broker := sse.NewBroker(keepAliveInterval)
	defer broker.Close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           NewHandler(svc, cfg.Auth, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", httpServer.Addr, err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Watch.Enabled {
		g.Go(func() error {
			return watch.Watch(gCtx, store, cfg.Watch.Debounce, logger, func(kind watch.Kind, sum string) {
				change := sse.Change{Removed: kind == watch.KindRemoved, Checksum: sum}
				if !change.Removed {
					if notes, loadErr := store.Load(); loadErr == nil {
						change.Total = len(notes)
					}
				}
				broker.PublishChange(change)
			})
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Streaming SSE clients hold connections open; close them first.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops together with the
// server.
var errShutdown = errors.New("shutdown")
