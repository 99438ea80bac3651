package models

import (
	"time"

	"gorm.io/datatypes"
)

// Report statuses. pending is the only non-terminal state.
const (
	ReportStatusPending   = "pending"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
)

// Report target types.
const (
	ReportTargetPost    = "post"
	ReportTargetUser    = "user"
	ReportTargetMessage = "message"
	ReportTargetStream  = "stream"
)

// Report is a user complaint about a piece of content. A reporter may flag a
// given target only once; the unique index makes the duplicate attempt fail.
type Report struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ReporterID   uint       `gorm:"not null;uniqueIndex:idx_report_reporter_target" json:"reporter_id"`
	TargetType   string     `gorm:"size:32;not null;uniqueIndex:idx_report_reporter_target" json:"target_type"`
	TargetID     uint       `gorm:"not null;uniqueIndex:idx_report_reporter_target" json:"target_id"`
	Reason       string     `gorm:"size:64;not null" json:"reason"`
	Description  string     `gorm:"type:text" json:"description,omitempty"`
	Status       string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	Resolution   string     `gorm:"size:255" json:"resolution,omitempty"`
	ResolvedByID *uint      `json:"resolved_by_id,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AuditLog is an append-only record of every moderation action.
type AuditLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null;index" json:"actor_id"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	TargetType string            `gorm:"size:32;not null" json:"target_type"`
	TargetID   uint              `gorm:"not null" json:"target_id"`
	Reason     string            `gorm:"size:255" json:"reason,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
