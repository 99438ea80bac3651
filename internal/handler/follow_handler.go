package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/alfaruq-id/barakah-api/internal/service"
	"github.com/alfaruq-id/barakah-api/internal/utils"
)

// FollowHandler wires follow-graph endpoints.
type FollowHandler struct {
	follows service.FollowService
	logger  zerolog.Logger
}

// NewFollowHandler creates a follow handler instance.
func NewFollowHandler(follows service.FollowService, logger zerolog.Logger) *FollowHandler {
	return &FollowHandler{
		follows: follows,
		logger:  logger.With().Str("component", "follow_handler").Logger(),
	}
}

// Register binds follow routes under the provided router group.
func (h *FollowHandler) Register(router fiber.Router) {
	router.Post("/:id/follow", h.follow)
	router.Delete("/:id/follow", h.unfollow)
}

func (h *FollowHandler) follow(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	followeeID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.follows.Follow(requestContext(c), userIDFromContext(c), followeeID); err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "following", nil)
}

func (h *FollowHandler) unfollow(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	followeeID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.follows.Unfollow(requestContext(c), userIDFromContext(c), followeeID); err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "unfollowed", nil)
}
