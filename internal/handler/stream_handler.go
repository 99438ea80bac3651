package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/service"
	"github.com/alfaruq-id/barakah-api/internal/utils"
)

// StreamHandler wires broadcast lifecycle endpoints.
type StreamHandler struct {
	streams   service.StreamService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStreamHandler creates a stream handler instance.
func NewStreamHandler(streams service.StreamService, validator *validator.Validate, logger zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		streams:   streams,
		validator: validator,
		logger:    logger.With().Str("component", "stream_handler").Logger(),
	}
}

// Register binds stream routes under the provided router group.
func (h *StreamHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Get("/live", h.listLive)
	router.Get("/scheduled", h.listScheduled)
	router.Get("/recordings", h.listRecordings)
	router.Get("/:id", h.get)
	router.Patch("/:id/start", h.start)
	router.Patch("/:id/end", h.end)
}

func (h *StreamHandler) create(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	var req dto.StreamCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stream, err := h.streams.Create(requestContext(c), userIDFromContext(c), req)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "stream scheduled", stream)
}

func (h *StreamHandler) get(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid stream id")
	}

	stream, err := h.streams.Get(requestContext(c), id)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "stream", stream)
}

func (h *StreamHandler) start(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid stream id")
	}

	stream, err := h.streams.Start(requestContext(c), userIDFromContext(c), id)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "stream live", stream)
}

func (h *StreamHandler) end(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid stream id")
	}

	var req dto.StreamEndRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stream, err := h.streams.End(requestContext(c), userIDFromContext(c), userRoleFromContext(c), id, req)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "stream ended", stream)
}

func (h *StreamHandler) listLive(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	page, limit := parsePagination(c)
	streams, err := h.streams.ListLive(requestContext(c), c.Query("category"), page, limit)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "live streams", streams)
}

func (h *StreamHandler) listScheduled(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	page, limit := parsePagination(c)
	streams, err := h.streams.ListScheduled(requestContext(c), page, limit)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "scheduled streams", streams)
}

func (h *StreamHandler) listRecordings(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	page, limit := parsePagination(c)
	streams, err := h.streams.ListRecordings(requestContext(c), page, limit)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "recordings", streams)
}
