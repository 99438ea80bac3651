package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/service"
	"github.com/alfaruq-id/barakah-api/internal/utils"
)

// NotificationHandler wires the notification inbox endpoints.
type NotificationHandler struct {
	notifications service.NotificationService
	logger        zerolog.Logger
}

// NewNotificationHandler creates a notification handler instance.
func NewNotificationHandler(notifications service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register binds notification routes under the provided router group.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/unread-count", h.unreadCount)
	router.Patch("/read-all", h.markAllRead)
	router.Patch("/:id/read", h.markRead)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	page, limit := parsePagination(c)
	notifications, err := h.notifications.List(requestContext(c), userIDFromContext(c), page, limit)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "notifications", notifications)
}

func (h *NotificationHandler) unreadCount(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	count, err := h.notifications.UnreadCount(requestContext(c), userIDFromContext(c))
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "unread count", dto.UnreadCountResponse{Count: count})
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	if err := h.notifications.MarkAllRead(requestContext(c), userIDFromContext(c)); err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "notifications read", nil)
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	notification, err := h.notifications.MarkRead(requestContext(c), id, userIDFromContext(c))
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "notification read", notification)
}
