// Package bootstrap connects the backing services the API and its tools run on.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TheAXPerience/ScrapPages/internal/cache"
	"github.com/TheAXPerience/ScrapPages/internal/config"
	"github.com/TheAXPerience/ScrapPages/internal/database"
	"github.com/TheAXPerience/ScrapPages/internal/middleware"
	"github.com/TheAXPerience/ScrapPages/internal/storage"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const sentryFlushTimeout = 2 * time.Second

// Options control runtime initialization behavior.
type Options struct {
	// SkipRedis leaves the runtime uncached, for one-shot tools.
	SkipRedis bool
}

// Runtime is the set of connected dependencies.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	Store storage.Store
}

// InitRuntime connects the database (applying the schema), Redis and the
// file store. An unreachable Redis is not an error; Redis stays nil.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	var rdb *redis.Client
	if !opts.SkipRedis {
		cache.InitRedis(cfg.RedisURL)
		rdb = cache.GetClient()
	}

	return &Runtime{DB: db, Redis: rdb, Store: store}, nil
}

// InitSentry configures error reporting when SENTRY_DSN is set. The returned
// flush func is always safe to call.
func InitSentry(cfg *config.Config) func() {
	if cfg.SentryDSN == "" {
		return func() {}
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Env,
		EnableTracing:    cfg.TracingEnabled,
		TracesSampleRate: cfg.TracingSampleRatio,
	}); err != nil {
		middleware.Logger.Error("sentry init failed", slog.String("error", err.Error()))
		return func() {}
	}
	return func() { sentry.Flush(sentryFlushTimeout) }
}
