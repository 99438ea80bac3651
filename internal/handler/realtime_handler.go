package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/alfaruq-id/barakah-api/internal/middleware"
	"github.com/alfaruq-id/barakah-api/internal/realtime"
)

// RealtimeHandler wires the websocket upgrade for the realtime hub.
type RealtimeHandler struct {
	hub    *realtime.Hub
	logger zerolog.Logger
}

// NewRealtimeHandler creates a realtime handler instance.
func NewRealtimeHandler(hub *realtime.Hub, logger zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:    hub,
		logger: logger.With().Str("component", "realtime_handler").Logger(),
	}
}

// Register binds the websocket route under the provided router group.
func (h *RealtimeHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *RealtimeHandler) handleConnection(conn *websocket.Conn) {
	userID := websocketUserID(conn)
	if userID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "user id missing"))
		_ = conn.Close()
		return
	}

	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	h.logger.Info().Uint("user_id", userID).Msg("realtime websocket connected")
	h.hub.ServeConnection(conn, userID, baseCtx)
	h.logger.Info().Uint("user_id", userID).Msg("realtime websocket disconnected")
}

func websocketUserID(conn *websocket.Conn) uint {
	if value := conn.Locals("user_id"); value != nil {
		switch v := value.(type) {
		case uint:
			return v
		case int:
			if v > 0 {
				return uint(v)
			}
		case float64:
			if v > 0 {
				return uint(v)
			}
		}
	}
	return 0
}
