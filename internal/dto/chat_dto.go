package dto

import (
	"time"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

// ConversationCreateRequest asks for the thread with another user,
// creating it on first contact.
type ConversationCreateRequest struct {
	PeerID uint `json:"peer_id" validate:"required,min=1"`
}

// ConversationResponse is one entry of a user's conversation list. Unread is
// the caller's own counter.
type ConversationResponse struct {
	ID            uint       `json:"id"`
	PeerID        uint       `json:"peer_id"`
	LastSenderID  uint       `json:"last_sender_id,omitempty"`
	LastPreview   string     `json:"last_preview,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	Unread        int        `json:"unread"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewConversationResponse converts a conversation model into the view for
// the given member.
func NewConversationResponse(conversation models.Conversation, viewerID uint) ConversationResponse {
	return ConversationResponse{
		ID:            conversation.ID,
		PeerID:        conversation.OtherParticipant(viewerID),
		LastSenderID:  conversation.LastSenderID,
		LastPreview:   conversation.LastPreview,
		LastMessageAt: conversation.LastMessageAt,
		Unread:        conversation.UnreadFor(viewerID),
		CreatedAt:     conversation.CreatedAt,
	}
}

// MessageSendRequest is the payload to append a message to a conversation.
type MessageSendRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// MessageResponse is the serialized representation of a chat message.
type MessageResponse struct {
	ID             uint      `json:"id"`
	ConversationID uint      `json:"conversation_id"`
	SenderID       uint      `json:"sender_id"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewMessageResponse converts a message model into a DTO.
func NewMessageResponse(message models.Message) MessageResponse {
	return MessageResponse{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		Content:        message.Content,
		Read:           message.Read,
		CreatedAt:      message.CreatedAt,
	}
}

// NewMessageResponseSlice converts a slice of models into DTOs.
func NewMessageResponseSlice(messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewMessageResponse(message))
	}
	return out
}

// UnreadCountResponse carries an unread badge total.
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
