package models

import "time"

// Stream statuses. Transitions are one-directional:
// scheduled -> live -> ended.
const (
	StreamStatusScheduled = "scheduled"
	StreamStatusLive      = "live"
	StreamStatusEnded     = "ended"
)

// Stream is a live broadcast session. StartedAt is set only on the
// scheduled->live transition, EndedAt only on live->ended. The viewer count
// is derived from realtime room membership and never persisted here.
type Stream struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	HostID       uint       `gorm:"not null;index" json:"host_id"`
	Host         User       `gorm:"foreignKey:HostID" json:"host,omitempty"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Category     string     `gorm:"size:64;index" json:"category"`
	Status       string     `gorm:"size:16;not null;default:scheduled;index" json:"status"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	RecordingURL string     `gorm:"size:500" json:"recording_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
