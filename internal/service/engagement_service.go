package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/models"
	"github.com/alfaruq-id/barakah-api/internal/observability"
	"github.com/alfaruq-id/barakah-api/internal/repository"
)

// EngagementService owns the idempotent like/repost toggles. The flip and
// the denormalized counter move in one repository transaction; the
// notification is a post-commit side effect.
type EngagementService interface {
	ToggleLike(ctx context.Context, postID, userID uint) (dto.ToggleResponse, error)
	ToggleRepost(ctx context.Context, postID, userID uint) (dto.ToggleResponse, error)
}

type engagementService struct {
	posts         repository.PostRepository
	notifications NotificationService
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewEngagementService constructs the engagement ledger.
func NewEngagementService(posts repository.PostRepository, notifications NotificationService, logger zerolog.Logger) EngagementService {
	return &engagementService{
		posts:         posts,
		notifications: notifications,
		logger:        logger.With().Str("component", "engagement_service").Logger(),
		tracer:        otel.Tracer("github.com/alfaruq-id/barakah-api/internal/service/engagement"),
	}
}

func (s *engagementService) ToggleLike(ctx context.Context, postID, userID uint) (dto.ToggleResponse, error) {
	return s.toggle(ctx, postID, userID, "like", models.NotificationKindLike, s.posts.ToggleLike)
}

func (s *engagementService) ToggleRepost(ctx context.Context, postID, userID uint) (dto.ToggleResponse, error) {
	return s.toggle(ctx, postID, userID, "repost", models.NotificationKindRepost, s.posts.ToggleRepost)
}

func (s *engagementService) toggle(ctx context.Context, postID, userID uint, relation, kind string, flip func(context.Context, uint, uint) (repository.ToggleResult, error)) (dto.ToggleResponse, error) {
	attrs := []attribute.KeyValue{
		attribute.Int("post.id", int(postID)),
		attribute.String("engagement.relation", relation),
	}
	spanCtx, span := s.tracer.Start(ctx, "engagement.toggle", trace.WithAttributes(attrs...))
	defer span.End()

	post, err := s.posts.FindVisibleByID(spanCtx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ToggleResponse{}, ErrNotFound
		}
		span.RecordError(err)
		return dto.ToggleResponse{}, err
	}

	result, err := flip(spanCtx, postID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ToggleResponse{}, ErrNotFound
		}
		span.RecordError(err)
		return dto.ToggleResponse{}, err
	}

	direction := "off"
	if result.Active {
		direction = "on"
	}
	observability.EngagementToggles().WithLabelValues(relation, direction).Inc()

	// Only the "on" direction is notification-worthy, and never for the
	// author engaging with their own post.
	if result.Active && post.AuthorID != userID {
		if err := s.notifications.Dispatch(spanCtx, post.AuthorID, userID, kind, "post", postID); err != nil {
			s.logger.Warn().Err(err).Uint("post_id", postID).Msg("failed to dispatch engagement notification")
		}
	}

	return dto.ToggleResponse{
		Active:      result.Active,
		LikeCount:   result.LikeCount,
		RepostCount: result.RepostCount,
		ReplyCount:  result.ReplyCount,
	}, nil
}
