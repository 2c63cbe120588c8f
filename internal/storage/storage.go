// Package storage persists uploaded files behind a driver-agnostic Store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/TheAXPerience/ScrapPages/internal/config"
	"github.com/TheAXPerience/ScrapPages/internal/middleware"
	"github.com/TheAXPerience/ScrapPages/internal/observability"

	"github.com/google/uuid"
)

// ErrInvalidKey is returned for keys that are empty or escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// Store saves and removes objects addressed by slash-separated keys.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
	Driver() string
}

// New builds the store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL), nil
	case "minio":
		return NewMinioStore(ctx, MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// ScrapKey is where a scrap's file lives.
func ScrapKey(username, filename string) string {
	return "uploads/user__" + username + "/" + uniqueName(filename)
}

// PreviewKey places a WebP preview next to the original file.
func PreviewKey(original string) string {
	dir, file := path.Split(original)
	stem := strings.TrimSuffix(file, path.Ext(file))
	return dir + "previews/" + stem + ".webp"
}

// PictureKey is where a profile picture lives.
func PictureKey(username, filename string) string {
	return "prof_pics/" + username + "__" + uniqueName(filename)
}

// uniqueName appends a short random suffix so repeated uploads of the same
// filename never overwrite each other.
func uniqueName(filename string) string {
	ext := path.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	return stem + "_" + uuid.NewString()[:8] + ext
}

func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" || key == "." {
		return "", ErrInvalidKey
	}
	return key, nil
}

// RemoveBestEffort deletes every non-empty key, logging and counting failures
// instead of returning them.
func RemoveBestEffort(ctx context.Context, store Store, keys ...string) {
	if store == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		spanCtx, span := observability.GetTraceLayer().TraceStorageOperation(ctx, store.Driver(), "delete", key)
		err := store.Delete(spanCtx, key)
		observability.EndSpan(span, err)
		if err != nil {
			observability.StorageCleanupFailures.WithLabelValues(store.Driver()).Inc()
			middleware.Logger.WarnContext(ctx, "failed to remove stored file",
				slog.String("key", key),
				slog.String("driver", store.Driver()),
				slog.String("error", err.Error()),
			)
		}
	}
}
