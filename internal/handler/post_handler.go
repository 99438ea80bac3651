package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/service"
	"github.com/alfaruq-id/barakah-api/internal/utils"
)

// PostHandler wires post publishing and engagement endpoints.
type PostHandler struct {
	posts      service.PostService
	engagement service.EngagementService
	feed       service.FeedService
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewPostHandler creates a post handler instance.
func NewPostHandler(posts service.PostService, engagement service.EngagementService, feed service.FeedService, validator *validator.Validate, logger zerolog.Logger) *PostHandler {
	return &PostHandler{
		posts:      posts,
		engagement: engagement,
		feed:       feed,
		validator:  validator,
		logger:     logger.With().Str("component", "post_handler").Logger(),
	}
}

// Register binds post routes under the provided router group.
func (h *PostHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Get("/trending/hashtags", h.trendingHashtags)
	router.Get("/hashtag/:tag", h.byHashtag)
	router.Get("/:id", h.get)
	router.Delete("/:id", h.delete)
	router.Post("/:id/like", h.toggleLike)
	router.Post("/:id/repost", h.toggleRepost)
}

func (h *PostHandler) create(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	var req dto.PostCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	post, err := h.posts.Create(requestContext(c), userIDFromContext(c), req)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "post created", post)
}

func (h *PostHandler) get(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	post, err := h.posts.Get(requestContext(c), id, userIDFromContext(c))
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "post", post)
}

func (h *PostHandler) delete(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	if err := h.posts.Delete(requestContext(c), id, userIDFromContext(c)); err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "post deleted", nil)
}

func (h *PostHandler) toggleLike(c *fiber.Ctx) error {
	return h.toggle(c, h.engagement.ToggleLike)
}

func (h *PostHandler) toggleRepost(c *fiber.Ctx) error {
	return h.toggle(c, h.engagement.ToggleRepost)
}

func (h *PostHandler) toggle(c *fiber.Ctx, flip func(ctx context.Context, postID, userID uint) (dto.ToggleResponse, error)) error {
	logger := requestLogger(h.logger, c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	result, err := flip(requestContext(c), id, userIDFromContext(c))
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "engagement updated", result)
}

func (h *PostHandler) byHashtag(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	page, limit := parsePagination(c)
	posts, err := h.feed.PostsByHashtag(requestContext(c), c.Params("tag"), userIDFromContext(c), page, limit)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "posts", posts)
}

func (h *PostHandler) trendingHashtags(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	limit := c.QueryInt("limit", 10)
	tags, err := h.feed.TrendingHashtags(requestContext(c), limit)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "trending hashtags", tags)
}
