package server

import (
	"log/slog"

	"github.com/TheAXPerience/ScrapPages/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade rejects plain HTTP requests to the websocket endpoint and
// records the optional caller identity for the connection.
func (s *Server) WebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if s.hub == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON("Realtime events are unavailable")
	}
	if uid, ok := s.optionalUserID(c); ok {
		c.Locals("userID", uid)
	}
	return c.Next()
}

// WebsocketHandler handles GET /api/ws. Every connection receives all
// realtime events as {"type": ..., "payload": ...} text frames.
// @Summary Realtime events
// @Description Websocket stream of scrap, comment, like and tag events
// @Tags realtime
// @Param token query string false "Bearer token"
// @Success 101
// @Router /ws [get]
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration refused",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":{"reason":"`+err.Error()+`"}}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
