package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/TheAXPerience/ScrapPages/internal/middleware"
	"github.com/TheAXPerience/ScrapPages/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

var (
	ErrServerFull  = errors.New("server connection limit reached")
	ErrUserFull    = errors.New("user connection limit reached")
	ErrHubShutdown = errors.New("hub is shutting down")
)

// Hub fans realtime events out to every connected websocket client.
// Anonymous viewers register with user id 0.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	perUser  map[uint]int
	closed   bool
	shutdown chan struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		perUser:  make(map[uint]int),
		shutdown: make(chan struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "event hub" }

// Register adds a connection. Returns an error when a limit is hit or the hub is closing.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubShutdown
	}
	if len(h.clients) >= maxTotalConns {
		return nil, ErrServerFull
	}
	if userID != 0 && h.perUser[userID] >= maxConnsPerUser {
		return nil, ErrUserFull
	}

	client := NewClient(h, conn, userID)
	h.clients[client] = struct{}{}
	h.perUser[userID]++
	observability.WebSocketConnectionsTotal.Inc()
	return client, nil
}

// UnregisterClient removes the client and closes its send buffer. Safe to call twice.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	h.perUser[client.UserID]--
	if h.perUser[client.UserID] <= 0 {
		delete(h.perUser, client.UserID)
	}
	close(client.Send)
	observability.WebSocketConnectionsTotal.Dec()
}

// Count reports the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.TrySend(message)
	}
}

// StartWiring subscribes to the Redis events channel and forwards each event
// to all clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartEventSubscriber(ctx, func(payload string) {
		var evt Event
		if err := json.Unmarshal([]byte(payload), &evt); err != nil || evt.Type == "" {
			middleware.Logger.Warn("dropping malformed realtime event", slog.String("payload", payload))
			return
		}
		_, span := observability.GetTraceLayer().TraceWebSocket(ctx, h.Name(), evt.Type)
		defer span.End()
		observability.WebSocketEventsTotal.WithLabelValues(evt.Type).Inc()
		h.BroadcastAll([]byte(payload))
	})
}

// Shutdown closes every websocket connection and refuses new ones.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	close(h.shutdown)

	for client := range h.clients {
		if client.Conn != nil {
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				middleware.Logger.Warn("failed to write close message", slog.Uint64("user_id", uint64(client.UserID)), slog.String("error", err.Error()))
			}
			_ = client.Conn.Close()
		}
		close(client.Send)
		observability.WebSocketConnectionsTotal.Dec()
	}
	h.clients = make(map[*Client]struct{})
	h.perUser = make(map[uint]int)
	return nil
}

// Done is closed once Shutdown starts.
func (h *Hub) Done() <-chan struct{} {
	return h.shutdown
}
