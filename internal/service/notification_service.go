package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/models"
	"github.com/alfaruq-id/barakah-api/internal/observability"
	"github.com/alfaruq-id/barakah-api/internal/realtime"
	"github.com/alfaruq-id/barakah-api/internal/repository"
)

// pushEligibleKinds is the whitelist forwarded to the push fallback when the
// recipient has no live connection. Low-priority kinds (like, follow) stay
// out to avoid push fatigue.
var pushEligibleKinds = map[string]struct{}{
	models.NotificationKindMessage:    {},
	models.NotificationKindMention:    {},
	models.NotificationKindStreamLive: {},
}

// PushDeliverer is the slice of the push fallback the dispatcher needs.
type PushDeliverer interface {
	Deliver(ctx context.Context, userID uint, payload dto.PushPayload)
}

// NotificationService creates notification records and fans them out to the
// recipient's personal room, falling back to push for eligible kinds when
// the recipient is offline.
type NotificationService interface {
	Dispatch(ctx context.Context, recipientID, actorID uint, kind, subjectType string, subjectID uint) error
	List(ctx context.Context, userID uint, page, limit int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error)
	MarkAllRead(ctx context.Context, userID uint) error
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

type notificationService struct {
	repo        repository.NotificationRepository
	broadcaster realtime.Broadcaster
	push        PushDeliverer
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewNotificationService constructs the dispatcher. Broadcaster and push may
// be nil; delivery then degrades to persistence only.
func NewNotificationService(repo repository.NotificationRepository, broadcaster realtime.Broadcaster, push PushDeliverer, logger zerolog.Logger) NotificationService {
	return &notificationService{
		repo:        repo,
		broadcaster: broadcaster,
		push:        push,
		logger:      logger.With().Str("component", "notification_service").Logger(),
		tracer:      otel.Tracer("github.com/alfaruq-id/barakah-api/internal/service/notification"),
	}
}

// Dispatch upserts the notification and delivers it best-effort. Delivery
// failure never bubbles up: the stored record is the source of truth and
// clients re-fetch on reconnect.
func (s *notificationService) Dispatch(ctx context.Context, recipientID, actorID uint, kind, subjectType string, subjectID uint) error {
	if recipientID == actorID {
		return nil
	}

	attrs := []attribute.KeyValue{
		attribute.Int("notification.recipient_id", int(recipientID)),
		attribute.String("notification.kind", kind),
	}
	spanCtx, span := s.tracer.Start(ctx, "notifications.dispatch", trace.WithAttributes(attrs...))
	defer span.End()

	notification := models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Kind:        kind,
		SubjectType: subjectType,
		SubjectID:   subjectID,
	}

	if err := s.repo.Upsert(spanCtx, &notification); err != nil {
		span.RecordError(err)
		return fmt.Errorf("upsert notification: %w", err)
	}

	observability.NotificationsPublishedTotal().WithLabelValues(kind).Inc()

	response := dto.NewNotificationResponse(notification)
	online := false
	if s.broadcaster != nil {
		online = s.broadcaster.IsOnline(recipientID)
		s.broadcaster.Publish(realtime.UserRoom(recipientID), "notification", response)
	}

	if !online && s.push != nil {
		if _, eligible := pushEligibleKinds[kind]; eligible {
			payload := dto.PushPayload{
				Kind:        kind,
				ActorID:     actorID,
				SubjectType: subjectType,
				SubjectID:   subjectID,
			}
			// Detached context: push delivery outlives the request and
			// must not fail it.
			go s.push.Deliver(context.Background(), recipientID, payload)
		}
	}

	return nil
}

func (s *notificationService) List(ctx context.Context, userID uint, page, limit int) ([]dto.NotificationResponse, error) {
	offset := pageOffset(page, limit)
	notifications, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NotificationResponse{}, ErrNotFound
		}
		return dto.NotificationResponse{}, err
	}

	if notification.RecipientID != userID {
		return dto.NotificationResponse{}, ErrForbidden
	}

	if err := s.repo.MarkRead(ctx, id); err != nil {
		return dto.NotificationResponse{}, err
	}

	notification.Read = true
	return dto.NewNotificationResponse(notification), nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func pageOffset(page, limit int) int {
	if page <= 1 {
		return 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return (page - 1) * limit
}
