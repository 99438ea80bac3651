package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

// NotificationRepository handles persistence for notification entities.
type NotificationRepository interface {
	Upsert(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id uint) (models.Notification, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository constructs a repository backed by GORM.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Upsert inserts the notification or, when the (recipient, actor, kind,
// subject) tuple already exists, refreshes its timestamp and re-surfaces it
// as unread. Repeated like toggles therefore update one row instead of
// spamming new ones.
func (r *notificationRepository) Upsert(ctx context.Context, notification *models.Notification) error {
	now := time.Now().UTC()
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "recipient_id"},
				{Name: "actor_id"},
				{Name: "kind"},
				{Name: "subject_type"},
				{Name: "subject_id"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"read":       false,
				"created_at": now,
				"updated_at": now,
			}),
		}).
		Create(notification).Error; err != nil {
		return err
	}

	// Reload so the caller sees the persisted row regardless of which
	// branch the upsert took.
	return r.db.WithContext(ctx).
		Where("recipient_id = ? AND actor_id = ? AND kind = ? AND subject_type = ? AND subject_id = ?",
			notification.RecipientID, notification.ActorID, notification.Kind,
			notification.SubjectType, notification.SubjectID).
		First(notification).Error
}

func (r *notificationRepository) FindByID(ctx context.Context, id uint) (models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).First(&notification, id).Error
	return notification, err
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		UpdateColumn("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", userID, false).
		UpdateColumn("read", true).Error
}

// CountUnread runs against the (recipient, read) index; it never scans the
// table.
func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}
