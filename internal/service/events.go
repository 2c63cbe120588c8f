package service

import (
	"context"
	"log/slog"

	"github.com/TheAXPerience/ScrapPages/internal/middleware"
)

// Realtime event types.
const (
	EventScrapCreated   = "scrap_created"
	EventScrapUpdated   = "scrap_updated"
	EventScrapDeleted   = "scrap_deleted"
	EventCommentCreated = "comment_created"
	EventCommentDeleted = "comment_deleted"
	EventScrapLiked     = "scrap_liked"
	EventTagAdded       = "tag_added"
)

// EventPublisher fans domain events out to realtime subscribers.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, payload interface{}) error
}

// publish never fails the caller; delivery problems are only logged.
func publish(ctx context.Context, events EventPublisher, eventType string, payload interface{}) {
	if events == nil {
		return
	}
	if err := events.PublishEvent(ctx, eventType, payload); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish realtime event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
	}
}
