package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Like{},
		&models.Repost{},
		&models.PostHashtag{},
		&models.Conversation{},
		&models.Message{},
		&models.Notification{},
		&models.Report{},
		&models.AuditLog{},
		&models.Stream{},
		&models.PushSubscription{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, DisplayName: username}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// recordingBroadcaster captures published frames and lets tests script who
// counts as online.
type recordingBroadcaster struct {
	mu        sync.Mutex
	published []publishedFrame
	online    map[uint]bool
	roomSizes map[string]int
}

type publishedFrame struct {
	Room    string
	Event   string
	Payload interface{}
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{
		online:    make(map[uint]bool),
		roomSizes: make(map[string]int),
	}
}

func (r *recordingBroadcaster) Publish(room, event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, publishedFrame{Room: room, Event: event, Payload: payload})
}

func (r *recordingBroadcaster) IsOnline(userID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.online[userID]
}

func (r *recordingBroadcaster) RoomSize(room string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roomSizes[room]
}

func (r *recordingBroadcaster) frames() []publishedFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]publishedFrame, len(r.published))
	copy(out, r.published)
	return out
}

func (r *recordingBroadcaster) eventsFor(room string) []string {
	var events []string
	for _, frame := range r.frames() {
		if frame.Room == room {
			events = append(events, frame.Event)
		}
	}
	return events
}

// recordingPush captures fallback deliveries without any network traffic.
type recordingPush struct {
	mu        sync.Mutex
	delivered []pushDelivery
	done      chan struct{}
}

type pushDelivery struct {
	UserID  uint
	Payload dto.PushPayload
}

func newRecordingPush() *recordingPush {
	return &recordingPush{done: make(chan struct{}, 16)}
}

func (r *recordingPush) Deliver(_ context.Context, userID uint, payload dto.PushPayload) {
	r.mu.Lock()
	r.delivered = append(r.delivered, pushDelivery{UserID: userID, Payload: payload})
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recordingPush) deliveries() []pushDelivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]pushDelivery, len(r.delivered))
	copy(out, r.delivered)
	return out
}
