package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/TheAXPerience/ScrapPages/internal/middleware"
	"github.com/TheAXPerience/ScrapPages/internal/observability"

	"github.com/redis/go-redis/v9"
)

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(s, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside returns the cached value for key, or calls fetch and caches its result.
// Cache failures are logged and never fail the read.
func Aside[T any](ctx context.Context, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	var cached T
	found, err := GetJSON(ctx, key, &cached)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		observability.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	observability.CacheLookups.WithLabelValues("miss").Inc()

	value, err := fetch()
	if err != nil {
		return value, err
	}
	if err := SetJSON(ctx, key, value, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return value, nil
}
