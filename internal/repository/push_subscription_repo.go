package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

// PushSubscriptionRepository handles persistence for device push endpoints.
type PushSubscriptionRepository interface {
	Upsert(ctx context.Context, subscription *models.PushSubscription) error
	ListByUser(ctx context.Context, userID uint) ([]models.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, userID uint, endpoint string) (bool, error)
	DeleteByID(ctx context.Context, id uint) error
}

type pushSubscriptionRepository struct {
	db *gorm.DB
}

// NewPushSubscriptionRepository constructs a repository backed by GORM.
func NewPushSubscriptionRepository(db *gorm.DB) PushSubscriptionRepository {
	return &pushSubscriptionRepository{db: db}
}

// Upsert stores the descriptor; re-subscribing an endpoint the user already
// registered refreshes the keys in place instead of duplicating.
func (r *pushSubscriptionRepository) Upsert(ctx context.Context, subscription *models.PushSubscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "endpoint"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"p256dh":     subscription.P256dh,
				"auth":       subscription.Auth,
				"user_agent": subscription.UserAgent,
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(subscription).Error
}

func (r *pushSubscriptionRepository) ListByUser(ctx context.Context, userID uint) ([]models.PushSubscription, error) {
	var subscriptions []models.PushSubscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (r *pushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, userID uint, endpoint string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&models.PushSubscription{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *pushSubscriptionRepository) DeleteByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.PushSubscription{}, id).Error
}
