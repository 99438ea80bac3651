package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/models"
	"github.com/alfaruq-id/barakah-api/internal/realtime"
	"github.com/alfaruq-id/barakah-api/internal/repository"
)

func newStreamService(t *testing.T, db *gorm.DB) (StreamService, *recordingBroadcaster) {
	t.Helper()
	broadcaster := newRecordingBroadcaster()
	notifications := NewNotificationService(repository.NewNotificationRepository(db), broadcaster, nil, testLogger())
	svc := NewStreamService(
		repository.NewStreamRepository(db),
		repository.NewFollowRepository(db),
		notifications,
		broadcaster,
		testLogger(),
	)
	return svc, broadcaster
}

func TestStartRequiresHost(t *testing.T) {
	db := setupServiceDB(t)
	host := createTestUser(t, db, "umar")
	other := createTestUser(t, db, "aisyah")
	svc, _ := newStreamService(t, db)

	stream, err := svc.Create(context.Background(), host.ID, dto.StreamCreateRequest{Title: "Tafsir night"})
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), other.ID, stream.ID)
	require.ErrorIs(t, err, ErrForbidden)

	live, err := svc.Start(context.Background(), host.ID, stream.ID)
	require.NoError(t, err)
	require.Equal(t, models.StreamStatusLive, live.Status)
}

func TestStartBroadcastsAndNotifiesFollowers(t *testing.T) {
	db := setupServiceDB(t)
	host := createTestUser(t, db, "umar")
	follower := createTestUser(t, db, "aisyah")
	require.NoError(t, db.Create(&models.Follow{FollowerID: follower.ID, FolloweeID: host.ID}).Error)

	svc, broadcaster := newStreamService(t, db)
	stream, err := svc.Create(context.Background(), host.ID, dto.StreamCreateRequest{Title: "Tafsir night"})
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), host.ID, stream.ID)
	require.NoError(t, err)

	require.Equal(t, []string{"stream:live"}, broadcaster.eventsFor(realtime.GlobalRoom))

	// Follower fan-out runs off the request path.
	require.Eventually(t, func() bool {
		var count int64
		if err := db.Model(&models.Notification{}).
			Where("recipient_id = ? AND kind = ?", follower.ID, models.NotificationKindStreamLive).
			Count(&count).Error; err != nil {
			return false
		}
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStartTwiceConflicts(t *testing.T) {
	db := setupServiceDB(t)
	host := createTestUser(t, db, "umar")
	svc, _ := newStreamService(t, db)

	stream, err := svc.Create(context.Background(), host.ID, dto.StreamCreateRequest{Title: "Tafsir night"})
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), host.ID, stream.ID)
	require.NoError(t, err)
	_, err = svc.Start(context.Background(), host.ID, stream.ID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestEndAllowsHostAndModerators(t *testing.T) {
	db := setupServiceDB(t)
	host := createTestUser(t, db, "umar")
	viewer := createTestUser(t, db, "aisyah")
	svc, broadcaster := newStreamService(t, db)

	stream, err := svc.Create(context.Background(), host.ID, dto.StreamCreateRequest{Title: "Tafsir night"})
	require.NoError(t, err)
	_, err = svc.Start(context.Background(), host.ID, stream.ID)
	require.NoError(t, err)

	_, err = svc.End(context.Background(), viewer.ID, models.RoleMember, stream.ID, dto.StreamEndRequest{})
	require.ErrorIs(t, err, ErrForbidden)

	ended, err := svc.End(context.Background(), viewer.ID, models.RoleModerator, stream.ID, dto.StreamEndRequest{RecordingURL: "https://cdn.example.com/rec.mp4"})
	require.NoError(t, err)
	require.Equal(t, models.StreamStatusEnded, ended.Status)
	require.Equal(t, "https://cdn.example.com/rec.mp4", ended.RecordingURL)

	require.Equal(t, []string{"stream:ended"}, broadcaster.eventsFor(realtime.StreamRoom(stream.ID)))
}

func TestEndScheduledStreamConflicts(t *testing.T) {
	db := setupServiceDB(t)
	host := createTestUser(t, db, "umar")
	svc, _ := newStreamService(t, db)

	stream, err := svc.Create(context.Background(), host.ID, dto.StreamCreateRequest{Title: "Tafsir night"})
	require.NoError(t, err)

	_, err = svc.End(context.Background(), host.ID, models.RoleMember, stream.ID, dto.StreamEndRequest{})
	require.ErrorIs(t, err, ErrConflict)
}

func TestViewerCountOnlyWhileLive(t *testing.T) {
	db := setupServiceDB(t)
	host := createTestUser(t, db, "umar")
	svc, broadcaster := newStreamService(t, db)

	stream, err := svc.Create(context.Background(), host.ID, dto.StreamCreateRequest{Title: "Tafsir night"})
	require.NoError(t, err)
	broadcaster.roomSizes[realtime.StreamRoom(stream.ID)] = 7

	got, err := svc.Get(context.Background(), stream.ID)
	require.NoError(t, err)
	require.Zero(t, got.ViewerCount)

	_, err = svc.Start(context.Background(), host.ID, stream.ID)
	require.NoError(t, err)

	got, err = svc.Get(context.Background(), stream.ID)
	require.NoError(t, err)
	require.Equal(t, 7, got.ViewerCount)
}
