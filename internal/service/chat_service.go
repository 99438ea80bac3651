package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/models"
	"github.com/alfaruq-id/barakah-api/internal/realtime"
	"github.com/alfaruq-id/barakah-api/internal/repository"
)

const messagePreviewLength = 120

// ChatService owns direct conversations: pair resolution, message append,
// unread accounting and the realtime fan-out on send.
type ChatService interface {
	GetOrCreateConversation(ctx context.Context, userID, peerID uint) (dto.ConversationResponse, error)
	ListConversations(ctx context.Context, userID uint, page, limit int) ([]dto.ConversationResponse, error)
	SendMessage(ctx context.Context, userID, conversationID uint, req dto.MessageSendRequest) (dto.MessageResponse, error)
	GetMessages(ctx context.Context, userID, conversationID uint, page, limit int) ([]dto.MessageResponse, error)
	MarkConversationRead(ctx context.Context, userID, conversationID uint) error
	TotalUnread(ctx context.Context, userID uint) (int64, error)
}

type chatService struct {
	conversations repository.ConversationRepository
	users         repository.UserRepository
	notifications NotificationService
	broadcaster   realtime.Broadcaster
	sanitizer     *bluemonday.Policy
	tracer        trace.Tracer
	logger        zerolog.Logger
}

func NewChatService(conversations repository.ConversationRepository, users repository.UserRepository, notifications NotificationService, broadcaster realtime.Broadcaster, logger zerolog.Logger) ChatService {
	if broadcaster == nil {
		broadcaster = realtime.Noop{}
	}

	return &chatService{
		conversations: conversations,
		users:         users,
		notifications: notifications,
		broadcaster:   broadcaster,
		sanitizer:     bluemonday.StrictPolicy(),
		tracer:        otel.Tracer("github.com/alfaruq-id/barakah-api/internal/service/chat"),
		logger:        logger.With().Str("component", "chat_service").Logger(),
	}
}

func (s *chatService) GetOrCreateConversation(ctx context.Context, userID, peerID uint) (dto.ConversationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "chat.get_or_create")
	defer span.End()

	if peerID == 0 || peerID == userID {
		return dto.ConversationResponse{}, ErrValidation
	}

	peer, err := s.users.FindByID(ctx, peerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ConversationResponse{}, ErrNotFound
		}
		return dto.ConversationResponse{}, fmt.Errorf("find peer: %w", err)
	}
	if peer.Banned {
		return dto.ConversationResponse{}, ErrNotFound
	}

	conversation, err := s.conversations.GetOrCreate(ctx, userID, peerID)
	if err != nil {
		return dto.ConversationResponse{}, fmt.Errorf("get or create conversation: %w", err)
	}

	return dto.NewConversationResponse(conversation, userID), nil
}

func (s *chatService) ListConversations(ctx context.Context, userID uint, page, limit int) ([]dto.ConversationResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	conversations, err := s.conversations.ListForUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	out := make([]dto.ConversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		out = append(out, dto.NewConversationResponse(conversation, userID))
	}
	return out, nil
}

func (s *chatService) SendMessage(ctx context.Context, userID, conversationID uint, req dto.MessageSendRequest) (dto.MessageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "chat.send_message")
	defer span.End()

	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		return dto.MessageResponse{}, ErrValidation
	}

	conversation, err := s.authorizedConversation(ctx, userID, conversationID)
	if err != nil {
		return dto.MessageResponse{}, err
	}

	recipientID := conversation.OtherParticipant(userID)
	if banned, err := s.users.IsBanned(ctx, recipientID); err != nil {
		return dto.MessageResponse{}, fmt.Errorf("check recipient: %w", err)
	} else if banned {
		return dto.MessageResponse{}, ErrNotFound
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       userID,
		Content:        content,
	}
	if err := s.conversations.AppendMessage(ctx, &message, recipientID, preview(content)); err != nil {
		return dto.MessageResponse{}, fmt.Errorf("append message: %w", err)
	}

	// The badge event must carry the snapshot and unread counter written by
	// AppendMessage, not the state loaded before it.
	if updated, err := s.conversations.FindByID(ctx, conversation.ID); err != nil {
		s.logger.Warn().Err(err).Uint("conversation_id", conversation.ID).Msg("failed to reload conversation for badge event")
	} else {
		conversation = updated
	}

	resp := dto.NewMessageResponse(message)
	s.broadcaster.Publish(realtime.ConversationRoom(conversation.ID), "chat:message", resp)
	s.broadcaster.Publish(realtime.UserRoom(recipientID), "chat:new-message", dto.NewConversationResponse(conversation, recipientID))

	if err := s.notifications.Dispatch(ctx, recipientID, userID, models.NotificationKindMessage, "conversation", conversation.ID); err != nil {
		s.logger.Warn().Err(err).Uint("conversation_id", conversation.ID).Msg("failed to dispatch message notification")
	}

	return resp, nil
}

func (s *chatService) GetMessages(ctx context.Context, userID, conversationID uint, page, limit int) ([]dto.MessageResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	if _, err := s.authorizedConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	messages, err := s.conversations.ListMessages(ctx, conversationID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return dto.NewMessageResponseSlice(messages), nil
}

func (s *chatService) MarkConversationRead(ctx context.Context, userID, conversationID uint) error {
	if _, err := s.authorizedConversation(ctx, userID, conversationID); err != nil {
		return err
	}
	if err := s.conversations.MarkRead(ctx, conversationID, userID); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (s *chatService) TotalUnread(ctx context.Context, userID uint) (int64, error) {
	total, err := s.conversations.TotalUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("total unread: %w", err)
	}
	return total, nil
}

// authorizedConversation loads the conversation and enforces membership.
// Non-members get the same answer as a missing conversation.
func (s *chatService) authorizedConversation(ctx context.Context, userID, conversationID uint) (models.Conversation, error) {
	conversation, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Conversation{}, ErrNotFound
		}
		return models.Conversation{}, fmt.Errorf("find conversation: %w", err)
	}
	if !conversation.HasParticipant(userID) {
		return models.Conversation{}, ErrForbidden
	}
	return conversation, nil
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= messagePreviewLength {
		return content
	}
	return string(runes[:messagePreviewLength])
}
