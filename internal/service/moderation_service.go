package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/models"
	"github.com/alfaruq-id/barakah-api/internal/repository"
)

// Audit actions recorded by the moderation gate.
const (
	auditActionReportResolved  = "report_resolved"
	auditActionReportDismissed = "report_dismissed"
	auditActionContentHidden   = "content_hidden"
	auditActionUserBanned      = "user_banned"
	auditActionUserUnbanned    = "user_unbanned"
)

// ModerationService owns the report queue, bans and the audit trail. Every
// state change it makes lands exactly one audit entry per action.
type ModerationService interface {
	CreateReport(ctx context.Context, reporterID uint, req dto.ReportCreateRequest) (dto.ReportResponse, error)
	ListReports(ctx context.Context, status string, page, limit int) (dto.ReportListResponse, error)
	ResolveReport(ctx context.Context, moderatorID, reportID uint, req dto.ReportCloseRequest) (dto.ReportResponse, error)
	DismissReport(ctx context.Context, moderatorID, reportID uint, req dto.ReportCloseRequest) (dto.ReportResponse, error)
	BanUser(ctx context.Context, moderatorID, userID uint, reason string) error
	UnbanUser(ctx context.Context, moderatorID, userID uint) error
	ListAuditLog(ctx context.Context, filter repository.AuditLogFilter) (dto.AuditLogListResponse, error)
}

type moderationService struct {
	reports       repository.ReportRepository
	users         repository.UserRepository
	posts         repository.PostRepository
	audit         repository.AuditLogRepository
	notifications NotificationService
	tracer        trace.Tracer
	logger        zerolog.Logger
}

func NewModerationService(reports repository.ReportRepository, users repository.UserRepository, posts repository.PostRepository, audit repository.AuditLogRepository, notifications NotificationService, logger zerolog.Logger) ModerationService {
	return &moderationService{
		reports:       reports,
		users:         users,
		posts:         posts,
		audit:         audit,
		notifications: notifications,
		tracer:        otel.Tracer("github.com/alfaruq-id/barakah-api/internal/service/moderation"),
		logger:        logger.With().Str("component", "moderation_service").Logger(),
	}
}

func (s *moderationService) CreateReport(ctx context.Context, reporterID uint, req dto.ReportCreateRequest) (dto.ReportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "moderation.create_report")
	defer span.End()

	report := models.Report{
		ReporterID:  reporterID,
		TargetType:  req.TargetType,
		TargetID:    req.TargetID,
		Reason:      req.Reason,
		Description: req.Description,
		Status:      models.ReportStatusPending,
	}
	if err := s.reports.Create(ctx, &report); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ReportResponse{}, ErrConflict
		}
		return dto.ReportResponse{}, fmt.Errorf("create report: %w", err)
	}

	s.logger.Info().
		Uint("report_id", report.ID).
		Str("target_type", report.TargetType).
		Uint("target_id", report.TargetID).
		Msg("report filed")

	return dto.NewReportResponse(report), nil
}

func (s *moderationService) ListReports(ctx context.Context, status string, page, limit int) (dto.ReportListResponse, error) {
	if status == "" {
		status = models.ReportStatusPending
	}
	switch status {
	case models.ReportStatusPending, models.ReportStatusResolved, models.ReportStatusDismissed:
	default:
		return dto.ReportListResponse{}, ErrValidation
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	reports, total, err := s.reports.ListByStatus(ctx, status, limit, (page-1)*limit)
	if err != nil {
		return dto.ReportListResponse{}, fmt.Errorf("list reports: %w", err)
	}

	return dto.ReportListResponse{
		Items:      dto.NewReportResponseSlice(reports),
		Pagination: dto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *moderationService) ResolveReport(ctx context.Context, moderatorID, reportID uint, req dto.ReportCloseRequest) (dto.ReportResponse, error) {
	return s.closeReport(ctx, moderatorID, reportID, models.ReportStatusResolved, req)
}

func (s *moderationService) DismissReport(ctx context.Context, moderatorID, reportID uint, req dto.ReportCloseRequest) (dto.ReportResponse, error) {
	return s.closeReport(ctx, moderatorID, reportID, models.ReportStatusDismissed, req)
}

// closeReport moves a pending report into a terminal state. Closing an
// already-closed report is a conflict, not a silent success.
func (s *moderationService) closeReport(ctx context.Context, moderatorID, reportID uint, status string, req dto.ReportCloseRequest) (dto.ReportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "moderation.close_report")
	defer span.End()

	report, err := s.reports.Close(ctx, reportID, status, req.Resolution, moderatorID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReportResponse{}, fmt.Errorf("close report: %w", err)
		}
		// Distinguish a missing report from one already closed.
		if _, findErr := s.reports.FindByID(ctx, reportID); findErr != nil {
			return dto.ReportResponse{}, ErrNotFound
		}
		return dto.ReportResponse{}, ErrConflict
	}

	action := auditActionReportDismissed
	if status == models.ReportStatusResolved {
		action = auditActionReportResolved
	}
	s.appendAudit(ctx, models.AuditLog{
		ActorID:    moderatorID,
		Action:     action,
		TargetType: "report",
		TargetID:   report.ID,
		Reason:     req.Resolution,
		Metadata: datatypes.JSONMap{
			"report_target_type": report.TargetType,
			"report_target_id":   report.TargetID,
		},
	})

	if status == models.ReportStatusResolved && req.HideTarget && report.TargetType == models.ReportTargetPost {
		if err := s.posts.SetHidden(ctx, report.TargetID, true); err != nil {
			s.logger.Error().Err(err).Uint("post_id", report.TargetID).Msg("failed to hide reported post")
		} else {
			s.appendAudit(ctx, models.AuditLog{
				ActorID:    moderatorID,
				Action:     auditActionContentHidden,
				TargetType: models.ReportTargetPost,
				TargetID:   report.TargetID,
				Reason:     req.Resolution,
			})
		}
	}

	if status == models.ReportStatusResolved {
		if err := s.notifications.Dispatch(ctx, report.ReporterID, moderatorID, models.NotificationKindReportResolved, "report", report.ID); err != nil {
			s.logger.Warn().Err(err).Uint("report_id", report.ID).Msg("failed to notify reporter")
		}
	}

	return dto.NewReportResponse(report), nil
}

func (s *moderationService) BanUser(ctx context.Context, moderatorID, userID uint, reason string) error {
	ctx, span := s.tracer.Start(ctx, "moderation.ban_user")
	defer span.End()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if user.Banned {
		return ErrConflict
	}

	if err := s.users.SetBanned(ctx, userID, true, reason, moderatorID); err != nil {
		return fmt.Errorf("ban user: %w", err)
	}

	s.appendAudit(ctx, models.AuditLog{
		ActorID:    moderatorID,
		Action:     auditActionUserBanned,
		TargetType: models.ReportTargetUser,
		TargetID:   userID,
		Reason:     reason,
	})
	s.logger.Info().Uint("user_id", userID).Uint("moderator_id", moderatorID).Msg("user banned")
	return nil
}

func (s *moderationService) UnbanUser(ctx context.Context, moderatorID, userID uint) error {
	ctx, span := s.tracer.Start(ctx, "moderation.unban_user")
	defer span.End()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if !user.Banned {
		return ErrConflict
	}

	if err := s.users.SetBanned(ctx, userID, false, "", moderatorID); err != nil {
		return fmt.Errorf("unban user: %w", err)
	}

	s.appendAudit(ctx, models.AuditLog{
		ActorID:    moderatorID,
		Action:     auditActionUserUnbanned,
		TargetType: models.ReportTargetUser,
		TargetID:   userID,
	})
	s.logger.Info().Uint("user_id", userID).Uint("moderator_id", moderatorID).Msg("user unbanned")
	return nil
}

func (s *moderationService) ListAuditLog(ctx context.Context, filter repository.AuditLogFilter) (dto.AuditLogListResponse, error) {
	entries, total, err := s.audit.List(ctx, filter)
	if err != nil {
		return dto.AuditLogListResponse{}, fmt.Errorf("list audit log: %w", err)
	}

	items := make([]dto.AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAuditLogResponse(entry))
	}
	return dto.AuditLogListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(filter.Page, filter.PageSize, total),
	}, nil
}

// appendAudit is best effort. A failed audit write is logged, never bubbled
// up: the moderation action itself already committed.
func (s *moderationService) appendAudit(ctx context.Context, entry models.AuditLog) {
	if err := s.audit.Append(ctx, &entry); err != nil {
		s.logger.Error().Err(err).Str("action", entry.Action).Msg("failed to append audit entry")
	}
}
