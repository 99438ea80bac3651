package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/models"
	"github.com/alfaruq-id/barakah-api/internal/repository"
)

func newEngagementService(t *testing.T, db *gorm.DB) EngagementService {
	t.Helper()
	notifications := NewNotificationService(repository.NewNotificationRepository(db), nil, nil, testLogger())
	return NewEngagementService(repository.NewPostRepository(db), notifications, testLogger())
}

func TestToggleLikeFlipsAndReNotifiesOnce(t *testing.T) {
	db := setupServiceDB(t)
	author := createTestUser(t, db, "umar")
	liker := createTestUser(t, db, "aisyah")
	post := seedPost(t, db, author.ID, "a reminder", time.Hour, 0, 0)

	svc := newEngagementService(t, db)

	resp, err := svc.ToggleLike(context.Background(), post.ID, liker.ID)
	require.NoError(t, err)
	require.True(t, resp.Active)
	require.Equal(t, 1, resp.LikeCount)

	resp, err = svc.ToggleLike(context.Background(), post.ID, liker.ID)
	require.NoError(t, err)
	require.False(t, resp.Active)
	require.Equal(t, 0, resp.LikeCount)

	// Like, unlike, like again: the dedup keeps it at one stored row.
	_, err = svc.ToggleLike(context.Background(), post.ID, liker.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("kind = ? AND recipient_id = ?", models.NotificationKindLike, author.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestToggleOwnPostDoesNotNotify(t *testing.T) {
	db := setupServiceDB(t)
	author := createTestUser(t, db, "umar")
	post := seedPost(t, db, author.ID, "self reflection", time.Hour, 0, 0)

	svc := newEngagementService(t, db)
	resp, err := svc.ToggleLike(context.Background(), post.ID, author.ID)
	require.NoError(t, err)
	require.True(t, resp.Active)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestToggleRepostIndependentFromLike(t *testing.T) {
	db := setupServiceDB(t)
	author := createTestUser(t, db, "umar")
	user := createTestUser(t, db, "aisyah")
	post := seedPost(t, db, author.ID, "worth sharing", time.Hour, 0, 0)

	svc := newEngagementService(t, db)

	_, err := svc.ToggleLike(context.Background(), post.ID, user.ID)
	require.NoError(t, err)

	resp, err := svc.ToggleRepost(context.Background(), post.ID, user.ID)
	require.NoError(t, err)
	require.True(t, resp.Active)
	require.Equal(t, 1, resp.LikeCount)
	require.Equal(t, 1, resp.RepostCount)
}

func TestToggleHiddenPost(t *testing.T) {
	db := setupServiceDB(t)
	author := createTestUser(t, db, "umar")
	user := createTestUser(t, db, "aisyah")
	post := seedPost(t, db, author.ID, "soon gone", time.Hour, 0, 0)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Update("hidden", true).Error)

	svc := newEngagementService(t, db)
	_, err := svc.ToggleLike(context.Background(), post.ID, user.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.ToggleRepost(context.Background(), 9999, user.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
