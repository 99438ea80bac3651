package dto

import (
	"time"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

// NotificationResponse represents notification data returned to clients and
// pushed over the realtime channel.
type NotificationResponse struct {
	ID          uint      `json:"id"`
	RecipientID uint      `json:"recipient_id"`
	ActorID     uint      `json:"actor_id"`
	Kind        string    `json:"kind"`
	SubjectType string    `json:"subject_type"`
	SubjectID   uint      `json:"subject_id"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewNotificationResponse converts a notification model to DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          model.ID,
		RecipientID: model.RecipientID,
		ActorID:     model.ActorID,
		Kind:        model.Kind,
		SubjectType: model.SubjectType,
		SubjectID:   model.SubjectID,
		Read:        model.Read,
		CreatedAt:   model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}

// PushPayload is the reduced payload handed to the push fallback for
// disconnected recipients.
type PushPayload struct {
	Kind        string `json:"kind"`
	ActorID     uint   `json:"actor_id"`
	SubjectType string `json:"subject_type"`
	SubjectID   uint   `json:"subject_id"`
	Title       string `json:"title,omitempty"`
	Body        string `json:"body,omitempty"`
}
