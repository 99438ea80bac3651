package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/alfaruq-id/barakah-api/internal/service"
	"github.com/alfaruq-id/barakah-api/internal/utils"
)

// FeedHandler serves assembled timelines.
type FeedHandler struct {
	feed   service.FeedService
	logger zerolog.Logger
}

// NewFeedHandler creates a feed handler instance.
func NewFeedHandler(feed service.FeedService, logger zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		feed:   feed,
		logger: logger.With().Str("component", "feed_handler").Logger(),
	}
}

// Register binds the feed route. It shares the posts group, so it must be
// registered ahead of the post handler's "/:id" routes.
func (h *FeedHandler) Register(router fiber.Router) {
	router.Get("/feed", h.feedPage)
}

func (h *FeedHandler) feedPage(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	page, limit := parsePagination(c)
	feed, err := h.feed.GetFeed(requestContext(c), userIDFromContext(c), page, limit, c.Query("tab"))
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "feed", feed)
}
