package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/models"
	"github.com/alfaruq-id/barakah-api/internal/repository"
)

func newFollowService(t *testing.T, db *gorm.DB) FollowService {
	t.Helper()
	notifications := NewNotificationService(repository.NewNotificationRepository(db), nil, nil, testLogger())
	return NewFollowService(repository.NewFollowRepository(db), repository.NewUserRepository(db), notifications, testLogger())
}

func TestFollowNotifiesOnlyOnFirstEdge(t *testing.T) {
	db := setupServiceDB(t)
	follower := createTestUser(t, db, "aisyah")
	followee := createTestUser(t, db, "umar")

	svc := newFollowService(t, db)
	require.NoError(t, svc.Follow(context.Background(), follower.ID, followee.ID))
	require.NoError(t, svc.Follow(context.Background(), follower.ID, followee.ID))

	following, err := svc.IsFollowing(context.Background(), follower.ID, followee.ID)
	require.NoError(t, err)
	require.True(t, following)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("kind = ?", models.NotificationKindFollow).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestFollowValidatesTarget(t *testing.T) {
	db := setupServiceDB(t)
	follower := createTestUser(t, db, "aisyah")
	banned := createTestUser(t, db, "troll")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", banned.ID).Update("banned", true).Error)

	svc := newFollowService(t, db)
	require.ErrorIs(t, svc.Follow(context.Background(), follower.ID, follower.ID), ErrValidation)
	require.ErrorIs(t, svc.Follow(context.Background(), follower.ID, 9999), ErrNotFound)
	require.ErrorIs(t, svc.Follow(context.Background(), follower.ID, banned.ID), ErrNotFound)
}

func TestUnfollowIsIdempotent(t *testing.T) {
	db := setupServiceDB(t)
	follower := createTestUser(t, db, "aisyah")
	followee := createTestUser(t, db, "umar")

	svc := newFollowService(t, db)
	require.NoError(t, svc.Follow(context.Background(), follower.ID, followee.ID))
	require.NoError(t, svc.Unfollow(context.Background(), follower.ID, followee.ID))
	require.NoError(t, svc.Unfollow(context.Background(), follower.ID, followee.ID))

	following, err := svc.IsFollowing(context.Background(), follower.ID, followee.ID)
	require.NoError(t, err)
	require.False(t, following)
}
