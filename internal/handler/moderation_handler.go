package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/middleware"
	"github.com/alfaruq-id/barakah-api/internal/repository"
	"github.com/alfaruq-id/barakah-api/internal/service"
	"github.com/alfaruq-id/barakah-api/internal/utils"
)

// ModerationHandler wires report filing plus the moderator surface.
type ModerationHandler struct {
	moderation service.ModerationService
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewModerationHandler creates a moderation handler instance.
func NewModerationHandler(moderation service.ModerationService, validator *validator.Validate, logger zerolog.Logger) *ModerationHandler {
	return &ModerationHandler{
		moderation: moderation,
		validator:  validator,
		logger:     logger.With().Str("component", "moderation_handler").Logger(),
	}
}

// RegisterPublic binds the member-facing report route.
func (h *ModerationHandler) RegisterPublic(router fiber.Router) {
	router.Post("/", h.createReport)
}

// RegisterAdmin binds the moderator routes. Banning stays admin-only.
func (h *ModerationHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/reports", h.listReports)
	router.Patch("/reports/:id/resolve", h.resolveReport)
	router.Patch("/reports/:id/dismiss", h.dismissReport)
	router.Patch("/users/:id/ban", middleware.WithAuth(h.banUser, middleware.AuthOptions{Role: middleware.AuthRoleAdmin}))
	router.Patch("/users/:id/unban", middleware.WithAuth(h.unbanUser, middleware.AuthOptions{Role: middleware.AuthRoleAdmin}))
	router.Get("/audit-logs", h.auditLog)
}

func (h *ModerationHandler) createReport(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	var req dto.ReportCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.moderation.CreateReport(requestContext(c), userIDFromContext(c), req)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "report filed", report)
}

func (h *ModerationHandler) listReports(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	page, limit := parsePagination(c)
	reports, err := h.moderation.ListReports(requestContext(c), c.Query("status"), page, limit)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "reports", reports)
}

func (h *ModerationHandler) resolveReport(c *fiber.Ctx) error {
	return h.closeReport(c, h.moderation.ResolveReport)
}

func (h *ModerationHandler) dismissReport(c *fiber.Ctx) error {
	return h.closeReport(c, h.moderation.DismissReport)
}

func (h *ModerationHandler) closeReport(c *fiber.Ctx, close func(ctx context.Context, moderatorID, reportID uint, req dto.ReportCloseRequest) (dto.ReportResponse, error)) error {
	logger := requestLogger(h.logger, c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid report id")
	}

	var req dto.ReportCloseRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := close(requestContext(c), userIDFromContext(c), id, req)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "report closed", report)
}

func (h *ModerationHandler) banUser(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var req dto.BanRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.moderation.BanUser(requestContext(c), userIDFromContext(c), id, req.Reason); err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "user banned", nil)
}

func (h *ModerationHandler) unbanUser(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.moderation.UnbanUser(requestContext(c), userIDFromContext(c), id); err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "user unbanned", nil)
}

func (h *ModerationHandler) auditLog(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	page, limit := parsePagination(c)
	filter := repository.AuditLogFilter{
		Page:       page,
		PageSize:   limit,
		Action:     c.Query("action"),
		TargetType: c.Query("target_type"),
	}
	if actorID := c.QueryInt("actor_id", 0); actorID > 0 {
		id := uint(actorID)
		filter.ActorID = &id
	}

	entries, err := h.moderation.ListAuditLog(requestContext(c), filter)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "audit log", entries)
}
