// Package app provides the main application struct for centralized dependency
// management and lifecycle control of the catalog gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"playdex/config"
	"playdex/internal/cache"
	"playdex/internal/catalog"
	"playdex/internal/httpclient"
	"playdex/internal/ratings"
	"playdex/internal/server"
)

// App represents the main application with all its dependencies.
// It provides centralized lifecycle management for all components.
type App struct {
	config  *config.Config
	cache   cache.Store
	ratings ratings.Store
	server  *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &App{config: cfg}

	fallbacks, err := catalog.LoadFallbacks(cfg.Catalog.FallbacksFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load fallback table: %w", err)
	}

	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.Catalog.RequestTimeout

	catalogClient, err := catalog.NewClient(catalog.Config{
		APIKey:            cfg.Catalog.APIKey,
		BaseURL:           cfg.Catalog.BaseURL,
		HTTPClient:        httpclient.NewHTTPClient(&clientCfg),
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		Burst:             cfg.Catalog.Burst,
		Fallbacks:         fallbacks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog client: %w", err)
	}

	// Response cache: Redis for multi-instance deployments, in-memory otherwise.
	if cfg.Cache.RedisURL != "" {
		app.cache, err = cache.NewRedisStore(cache.RedisConfig{
			URL:    cfg.Cache.RedisURL,
			Expiry: 2 * cfg.Cache.TTL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect response cache: %w", err)
		}
	} else {
		slog.Info("no REDIS_URL configured, using in-memory response cache")
		app.cache = cache.NewMemoryStore()
	}

	// Rating store: optional. Without it the gateway still serves, with every
	// rating null.
	if cfg.Ratings.DatabaseURL != "" {
		app.ratings, err = ratings.NewPostgres(ctx, ratings.PostgresConfig{
			URL:      cfg.Ratings.DatabaseURL,
			MaxConns: cfg.Ratings.MaxConns,
		})
		if err != nil {
			closeErr := app.cache.Close()
			if closeErr != nil {
				return nil, fmt.Errorf("failed to connect rating store: %w (also: cache close error: %v)", err, closeErr)
			}
			return nil, fmt.Errorf("failed to connect rating store: %w", err)
		}
		slog.Info("rating store connected")
	} else {
		slog.Warn("no DATABASE_URL configured, serving null ratings")
		app.ratings = ratings.NoopStore{}
	}

	handler := server.NewHandler(catalogClient, app.cache, app.ratings, cfg.Cache.TTL)
	app.server = server.New(handler, &server.Config{
		MetricsEnabled: cfg.Metrics.Enabled,
	})

	slog.Info("gateway initialized",
		"cache_ttl", cfg.Cache.TTL,
		"fallback_tags", len(fallbacks),
		"metrics", cfg.Metrics.Enabled,
	)

	return app, nil
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	slog.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully tears down app components in dependency order:
// HTTP server first (stop accepting requests), then the cache and rating
// stores. Idempotent and safe for repeated calls.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	slog.Info("shutting down application...")

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			slog.Error("cache close error", "error", err)
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}

	if a.ratings != nil {
		if err := a.ratings.Close(); err != nil {
			slog.Error("rating store close error", "error", err)
			errs = append(errs, fmt.Errorf("ratings close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	slog.Info("application shutdown complete")
	return nil
}
