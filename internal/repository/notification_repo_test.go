package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

func TestNotificationUpsertDeduplicates(t *testing.T) {
	db := setupTestDB(t, &models.Notification{})
	repo := NewNotificationRepository(db)

	first := models.Notification{RecipientID: 1, ActorID: 2, Kind: models.NotificationKindLike, SubjectType: "post", SubjectID: 3}
	require.NoError(t, repo.Upsert(context.Background(), &first))

	again := models.Notification{RecipientID: 1, ActorID: 2, Kind: models.NotificationKindLike, SubjectType: "post", SubjectID: 3}
	require.NoError(t, repo.Upsert(context.Background(), &again))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Equal(t, int64(1), count, "same (recipient, actor, kind, subject) collapses to one row")
	require.Equal(t, first.ID, again.ID)
}

func TestNotificationUpsertResurfacesReadEntry(t *testing.T) {
	db := setupTestDB(t, &models.Notification{})
	repo := NewNotificationRepository(db)

	notification := models.Notification{RecipientID: 1, ActorID: 2, Kind: models.NotificationKindMention, SubjectType: "post", SubjectID: 5}
	require.NoError(t, repo.Upsert(context.Background(), &notification))
	require.NoError(t, repo.MarkRead(context.Background(), notification.ID))

	repeat := models.Notification{RecipientID: 1, ActorID: 2, Kind: models.NotificationKindMention, SubjectType: "post", SubjectID: 5}
	require.NoError(t, repo.Upsert(context.Background(), &repeat))
	require.False(t, repeat.Read, "repeated event flips the entry back to unread")

	unread, err := repo.CountUnread(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)
}

func TestNotificationDistinctSubjectsKeptApart(t *testing.T) {
	db := setupTestDB(t, &models.Notification{})
	repo := NewNotificationRepository(db)

	likeOnPost := models.Notification{RecipientID: 1, ActorID: 2, Kind: models.NotificationKindLike, SubjectType: "post", SubjectID: 3}
	require.NoError(t, repo.Upsert(context.Background(), &likeOnPost))
	likeOnOther := models.Notification{RecipientID: 1, ActorID: 2, Kind: models.NotificationKindLike, SubjectType: "post", SubjectID: 4}
	require.NoError(t, repo.Upsert(context.Background(), &likeOnOther))
	repostOnPost := models.Notification{RecipientID: 1, ActorID: 2, Kind: models.NotificationKindRepost, SubjectType: "post", SubjectID: 3}
	require.NoError(t, repo.Upsert(context.Background(), &repostOnPost))

	entries, err := repo.ListByUser(context.Background(), 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestMarkAllReadClearsBadge(t *testing.T) {
	db := setupTestDB(t, &models.Notification{})
	repo := NewNotificationRepository(db)

	for subject := uint(1); subject <= 3; subject++ {
		notification := models.Notification{RecipientID: 7, ActorID: 2, Kind: models.NotificationKindReply, SubjectType: "post", SubjectID: subject}
		require.NoError(t, repo.Upsert(context.Background(), &notification))
	}

	require.NoError(t, repo.MarkAllRead(context.Background(), 7))

	unread, err := repo.CountUnread(context.Background(), 7)
	require.NoError(t, err)
	require.Zero(t, unread)
}
