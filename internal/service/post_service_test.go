package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/models"
	"github.com/alfaruq-id/barakah-api/internal/repository"
)

func newPostService(t *testing.T, db *gorm.DB) (PostService, *recordingBroadcaster) {
	t.Helper()
	broadcaster := newRecordingBroadcaster()
	notifications := NewNotificationService(repository.NewNotificationRepository(db), broadcaster, nil, testLogger())
	svc := NewPostService(repository.NewPostRepository(db), repository.NewUserRepository(db), notifications, testLogger())
	return svc, broadcaster
}

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"none", "just words", nil},
		{"lowercases", "morning #Dhikr", []string{"dhikr"}},
		{"dedupes keeping first position", "#sabr then #Tawakkul then #SABR", []string{"sabr", "tawakkul"}},
		{"unicode letters", "دعاء #دعاء", []string{"دعاء"}},
		{"underscore and digits", "#ramadan_2026", []string{"ramadan_2026"}},
		{"bare hash ignored", "# not a tag", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExtractHashtags(tt.content))
		})
	}
}

func TestCreateRejectsMarkupOnlyContent(t *testing.T) {
	db := setupServiceDB(t)
	author := createTestUser(t, db, "umar")
	svc, _ := newPostService(t, db)

	_, err := svc.Create(context.Background(), author.ID, dto.PostCreateRequest{Content: "<script>alert(1)</script>"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), author.ID, dto.PostCreateRequest{Content: "   "})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateStripsMarkupAndStoresTags(t *testing.T) {
	db := setupServiceDB(t)
	author := createTestUser(t, db, "umar")
	svc, _ := newPostService(t, db)

	resp, err := svc.Create(context.Background(), author.ID, dto.PostCreateRequest{Content: "<b>reflect</b> on #Sabr"})
	require.NoError(t, err)
	require.Equal(t, "reflect on #Sabr", resp.Content)

	var tags []models.PostHashtag
	require.NoError(t, db.Where("post_id = ?", resp.ID).Find(&tags).Error)
	require.Len(t, tags, 1)
	require.Equal(t, "sabr", tags[0].Tag)
}

func TestReplyNotifiesParentAuthor(t *testing.T) {
	db := setupServiceDB(t)
	parentAuthor := createTestUser(t, db, "umar")
	replier := createTestUser(t, db, "aisyah")
	svc, _ := newPostService(t, db)

	parent, err := svc.Create(context.Background(), parentAuthor.ID, dto.PostCreateRequest{Content: "a thought"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), replier.ID, dto.PostCreateRequest{Content: "a reply", ReplyToID: &parent.ID})
	require.NoError(t, err)

	var notification models.Notification
	require.NoError(t, db.Where("kind = ?", models.NotificationKindReply).First(&notification).Error)
	require.Equal(t, parentAuthor.ID, notification.RecipientID)
	require.Equal(t, replier.ID, notification.ActorID)
}

func TestReplyToMissingParent(t *testing.T) {
	db := setupServiceDB(t)
	author := createTestUser(t, db, "umar")
	svc, _ := newPostService(t, db)

	missing := uint(9999)
	_, err := svc.Create(context.Background(), author.ID, dto.PostCreateRequest{Content: "orphan", ReplyToID: &missing})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMentionsNotifyOnceAndSkipUnknownUsers(t *testing.T) {
	db := setupServiceDB(t)
	author := createTestUser(t, db, "umar")
	mentioned := createTestUser(t, db, "aisyah")
	svc, _ := newPostService(t, db)

	_, err := svc.Create(context.Background(), author.ID, dto.PostCreateRequest{Content: "@aisyah @Aisyah @nobody_here assalamu alaikum"})
	require.NoError(t, err)

	var notifications []models.Notification
	require.NoError(t, db.Where("kind = ?", models.NotificationKindMention).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	require.Equal(t, mentioned.ID, notifications[0].RecipientID)
}

func TestDeleteHidesPostFromReads(t *testing.T) {
	db := setupServiceDB(t)
	author := createTestUser(t, db, "umar")
	other := createTestUser(t, db, "aisyah")
	svc, _ := newPostService(t, db)

	post, err := svc.Create(context.Background(), author.ID, dto.PostCreateRequest{Content: "fleeting"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), post.ID, other.ID), ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), post.ID, author.ID))

	_, err = svc.Get(context.Background(), post.ID, 0)
	require.ErrorIs(t, err, ErrNotFound)

	// Hidden, not erased.
	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	require.True(t, stored.Hidden)
}
