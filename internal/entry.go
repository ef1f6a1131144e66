// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/mathlinks/internal/api"
	"github.com/starford/mathlinks/internal/events"
	"github.com/starford/mathlinks/internal/index"
	"github.com/starford/mathlinks/internal/labelservice"
	"github.com/starford/mathlinks/internal/mcpserver"
	"github.com/starford/mathlinks/internal/settings"
	"github.com/starford/mathlinks/internal/sse"
	"github.com/starford/mathlinks/internal/storage"
)

// stack is the state shared by the HTTP server and the MCP server.
type stack struct {
	logger *slog.Logger
	store  *storage.FS
	db     *index.DB
	bus    *events.Bus
	svc    *labelservice.Service
}

func (rt *stack) close() {
	rt.svc.Close()
	if err := rt.db.Close(); err != nil {
		rt.logger.Error("close index", slog.String("error", err.Error()))
	}
}

// setup builds the vault storage, the metadata cache and the label service,
// then runs the initial sync.
func setup(app *application, w *os.File) (*stack, error) {
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	bus := events.NewBus()
	st, err := settings.NewStore(cfg.MathLinks, bus)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init settings: %w", err)
	}

	svc := labelservice.New(store, db, st, bus, logger)
	for _, reg := range app.providers {
		svc.Registry().Register(reg.p, reg.order)
	}

	if err := index.Sync(db, store, logger, svc.OnIndexChange); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &stack{logger: logger, store: store, db: db, bus: bus, svc: svc}, nil
}

// Run starts the HTTP server and the vault watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}

	rt, err := setup(app, os.Stdout)
	if err != nil {
		return err
	}
	defer rt.close()

	cfg := app.config
	logger := rt.logger

	// SSE broker mirrors the notification bus.
	broker := sse.NewBroker(cfg.Events.RefreshThrottle)
	defer broker.Close()
	unsubscribe := rt.bus.Subscribe(broker.Forward)
	defer unsubscribe()

	apiRouter := api.NewRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
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
		if rt.svc.Registry().Len() == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"starting"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher; every cache change becomes metadata.changed.
	g.Go(func() error {
		if err := index.Watch(gCtx, rt.db, rt.store, cfg.Vault.Path, logger, rt.svc.OnIndexChange); err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr so they do
// not corrupt the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}

	rt, err := setup(app, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.close()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := index.Watch(gCtx, rt.db, rt.store, app.config.Vault.Path, rt.logger, rt.svc.OnIndexChange); err != nil {
			rt.logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})
	g.Go(func() error {
		srv := mcpserver.New(rt.svc, app.version)
		rt.logger.Info("Serving MCP on stdio")
		if err := srv.ServeStdio(); err != nil {
			return err
		}
		// Stdio closed: stop the watcher too.
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
