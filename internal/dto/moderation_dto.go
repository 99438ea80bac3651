package dto

import (
	"time"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

// ReportCreateRequest is the payload to flag a piece of content.
type ReportCreateRequest struct {
	TargetType  string `json:"target_type" validate:"required,oneof=post user message stream"`
	TargetID    uint   `json:"target_id" validate:"required,min=1"`
	Reason      string `json:"reason" validate:"required,min=2,max=64"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// ReportCloseRequest carries the moderator's resolution note.
type ReportCloseRequest struct {
	Resolution string `json:"resolution" validate:"omitempty,max=255"`
	HideTarget bool   `json:"hide_target"`
}

// ReportResponse is the serialized representation of a report.
type ReportResponse struct {
	ID           uint       `json:"id"`
	ReporterID   uint       `json:"reporter_id"`
	TargetType   string     `json:"target_type"`
	TargetID     uint       `json:"target_id"`
	Reason       string     `json:"reason"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`
	Resolution   string     `json:"resolution,omitempty"`
	ResolvedByID *uint      `json:"resolved_by_id,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewReportResponse converts a report model into a DTO.
func NewReportResponse(report models.Report) ReportResponse {
	return ReportResponse{
		ID:           report.ID,
		ReporterID:   report.ReporterID,
		TargetType:   report.TargetType,
		TargetID:     report.TargetID,
		Reason:       report.Reason,
		Description:  report.Description,
		Status:       report.Status,
		Resolution:   report.Resolution,
		ResolvedByID: report.ResolvedByID,
		ResolvedAt:   report.ResolvedAt,
		CreatedAt:    report.CreatedAt,
	}
}

// NewReportResponseSlice converts a slice of models into DTOs.
func NewReportResponseSlice(reports []models.Report) []ReportResponse {
	out := make([]ReportResponse, 0, len(reports))
	for _, report := range reports {
		out = append(out, NewReportResponse(report))
	}
	return out
}

// ReportListResponse is one page of the admin report queue.
type ReportListResponse struct {
	Items      []ReportResponse `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

// BanRequest carries the moderator's reason for a ban.
type BanRequest struct {
	Reason string `json:"reason" validate:"required,min=2,max=255"`
}

// AuditLogResponse is the serialized representation of an audit entry.
type AuditLogResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	Action     string                 `json:"action"`
	TargetType string                 `json:"target_type"`
	TargetID   uint                   `json:"target_id"`
	Reason     string                 `json:"reason,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewAuditLogResponse converts an audit entry into a DTO.
func NewAuditLogResponse(entry models.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Reason:     entry.Reason,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}
}

// AuditLogListResponse is one page of the audit trail.
type AuditLogListResponse struct {
	Items      []AuditLogResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}
