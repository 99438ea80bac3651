package dto

import (
	"time"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

// StreamCreateRequest is the payload to announce a broadcast.
type StreamCreateRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=255"`
	Category    string     `json:"category" validate:"omitempty,max=64"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// StreamEndRequest optionally attaches a recording to the ended broadcast.
type StreamEndRequest struct {
	RecordingURL string `json:"recording_url" validate:"omitempty,url,max=500"`
}

// StreamResponse is the serialized representation of a broadcast session.
// ViewerCount is derived from realtime room membership at read time.
type StreamResponse struct {
	ID           uint        `json:"id"`
	Host         UserSummary `json:"host"`
	Title        string      `json:"title"`
	Category     string      `json:"category,omitempty"`
	Status       string      `json:"status"`
	ViewerCount  int         `json:"viewer_count"`
	ScheduledAt  *time.Time  `json:"scheduled_at,omitempty"`
	StartedAt    *time.Time  `json:"started_at,omitempty"`
	EndedAt      *time.Time  `json:"ended_at,omitempty"`
	RecordingURL string      `json:"recording_url,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewStreamResponse converts a stream model into a DTO.
func NewStreamResponse(stream models.Stream, viewerCount int) StreamResponse {
	return StreamResponse{
		ID:           stream.ID,
		Host:         NewUserSummary(stream.Host),
		Title:        stream.Title,
		Category:     stream.Category,
		Status:       stream.Status,
		ViewerCount:  viewerCount,
		ScheduledAt:  formatTimePtr(stream.ScheduledAt),
		StartedAt:    formatTimePtr(stream.StartedAt),
		EndedAt:      formatTimePtr(stream.EndedAt),
		RecordingURL: stream.RecordingURL,
		CreatedAt:    stream.CreatedAt,
	}
}
