package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/service"
	"github.com/alfaruq-id/barakah-api/internal/utils"
)

// ChatHandler wires direct-message endpoints.
type ChatHandler struct {
	chat      service.ChatService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewChatHandler creates a chat handler instance.
func NewChatHandler(chat service.ChatService, validator *validator.Validate, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		chat:      chat,
		validator: validator,
		logger:    logger.With().Str("component", "chat_handler").Logger(),
	}
}

// Register binds chat routes under the provided router group.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Post("/conversations", h.getOrCreate)
	router.Get("/conversations", h.list)
	router.Get("/conversations/:id/messages", h.messages)
	router.Post("/conversations/:id/messages", h.send)
	router.Post("/conversations/:id/read", h.markRead)
	router.Get("/unread-count", h.unreadCount)
}

func (h *ChatHandler) getOrCreate(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	var req dto.ConversationCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	conversation, err := h.chat.GetOrCreateConversation(requestContext(c), userIDFromContext(c), req.PeerID)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "conversation", conversation)
}

func (h *ChatHandler) list(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	page, limit := parsePagination(c)
	conversations, err := h.chat.ListConversations(requestContext(c), userIDFromContext(c), page, limit)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "conversations", conversations)
}

func (h *ChatHandler) messages(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid conversation id")
	}

	page, limit := parsePagination(c)
	messages, err := h.chat.GetMessages(requestContext(c), userIDFromContext(c), id, page, limit)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "messages", messages)
}

func (h *ChatHandler) send(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid conversation id")
	}

	var req dto.MessageSendRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	message, err := h.chat.SendMessage(requestContext(c), userIDFromContext(c), id, req)
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message sent", message)
}

func (h *ChatHandler) markRead(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid conversation id")
	}

	if err := h.chat.MarkConversationRead(requestContext(c), userIDFromContext(c), id); err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "conversation read", nil)
}

func (h *ChatHandler) unreadCount(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	total, err := h.chat.TotalUnread(requestContext(c), userIDFromContext(c))
	if err != nil {
		return respondServiceError(c, logger, err)
	}

	return utils.SendSuccess(c, "unread count", dto.UnreadCountResponse{Count: total})
}
