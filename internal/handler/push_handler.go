package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/service"
	"github.com/alfaruq-id/barakah-api/internal/utils"
)

// PushHandler wires push subscription endpoints.
type PushHandler struct {
	push      service.PushService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewPushHandler creates a push handler instance.
func NewPushHandler(push service.PushService, validator *validator.Validate, logger zerolog.Logger) *PushHandler {
	return &PushHandler{
		push:      push,
		validator: validator,
		logger:    logger.With().Str("component", "push_handler").Logger(),
	}
}

// RegisterPublic binds the routes that need no authentication. Clients fetch
// the application key before they have a session.
func (h *PushHandler) RegisterPublic(router fiber.Router) {
	router.Get("/vapid-key", h.vapidKey)
}

// Register binds the authenticated subscription routes.
func (h *PushHandler) Register(router fiber.Router) {
	router.Post("/subscribe", h.subscribe)
	router.Post("/unsubscribe", h.unsubscribe)
}

func (h *PushHandler) vapidKey(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "vapid key", dto.VAPIDKeyResponse{PublicKey: h.push.PublicKey()})
}

func (h *PushHandler) subscribe(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	var req dto.PushSubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.push.Subscribe(requestContext(c), userIDFromContext(c), req, c.Get("User-Agent")); err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "subscription registered", nil)
}

func (h *PushHandler) unsubscribe(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	var req dto.PushUnsubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.push.Unsubscribe(requestContext(c), userIDFromContext(c), req.Endpoint); err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "subscription removed", nil)
}
