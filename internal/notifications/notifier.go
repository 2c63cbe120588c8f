// Package notifications provides real-time event delivery over Redis pub/sub and websockets.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/TheAXPerience/ScrapPages/internal/middleware"
	"github.com/TheAXPerience/ScrapPages/internal/observability"

	"github.com/redis/go-redis/v9"
)

// EventsChannel carries every realtime event.
const EventsChannel = "scrappages:events"

// Event is the wire shape of a realtime message.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Notifier publishes events into Redis. A Notifier without a client drops
// everything silently.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishEvent wraps payload in an Event and publishes it on EventsChannel.
func (n *Notifier) PublishEvent(ctx context.Context, eventType string, payload interface{}) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	msg, err := json.Marshal(Event{Type: eventType, Payload: body})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "publish")
	defer span.End()
	if err := n.rdb.Publish(ctx, EventsChannel, msg).Err(); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// StartEventSubscriber subscribes to EventsChannel and calls onMessage for each
// payload until ctx is cancelled. It returns once the subscription is live.
func (n *Notifier) StartEventSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, EventsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", EventsChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in event subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
