// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/TheAXPerience/ScrapPages/internal/models"
	"github.com/TheAXPerience/ScrapPages/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// notFoundOr maps gorm.ErrRecordNotFound to a NOT_FOUND AppError and wraps anything else.
func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// isUniqueViolation reports whether err came from a unique index on either driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// paginate applies limit/offset; a non-positive limit leaves the query unpaged.
func paginate(limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		if offset < 0 {
			offset = 0
		}
		return db.Limit(limit).Offset(offset)
	}
}

func startSpan(ctx context.Context, db *gorm.DB, method, table string) (context.Context, trace.Span) {
	return observability.GetTraceLayer().TraceRepositoryMethod(ctx, db.Dialector.Name(), method, table)
}
