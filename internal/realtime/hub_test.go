package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

func testHub() *Hub {
	return NewHub(nil, "barakah", nil, zerolog.Nop())
}

func testClient(userID uint) *Client {
	return &Client{
		userID: userID,
		send:   make(chan Frame, clientSendBufferSize),
		rooms:  make(map[string]struct{}),
		closed: make(chan struct{}),
		ctx:    context.Background(),
	}
}

func TestRoomNames(t *testing.T) {
	require.Equal(t, "conversation:7", ConversationRoom(7))
	require.Equal(t, "user:3", UserRoom(3))
	require.Equal(t, "stream:12", StreamRoom(12))
}

func TestJoinLeaveAndRoomSize(t *testing.T) {
	hub := testHub()
	first := testClient(1)
	second := testClient(2)

	hub.join(first, StreamRoom(5))
	hub.join(second, StreamRoom(5))
	require.Equal(t, 2, hub.RoomSize(StreamRoom(5)))

	hub.leave(first, StreamRoom(5))
	require.Equal(t, 1, hub.RoomSize(StreamRoom(5)))
	require.NotContains(t, first.rooms, StreamRoom(5))

	// Leaving a room never joined is a no-op.
	hub.leave(first, StreamRoom(5))
	require.Equal(t, 1, hub.RoomSize(StreamRoom(5)))
}

func TestIsOnlineTracksUserRoom(t *testing.T) {
	hub := testHub()
	client := testClient(9)

	require.False(t, hub.IsOnline(9))
	hub.join(client, UserRoom(9))
	require.True(t, hub.IsOnline(9))

	hub.detach(client)
	require.False(t, hub.IsOnline(9))
	require.Empty(t, client.rooms)
}

func TestPublishReachesOnlyRoomMembers(t *testing.T) {
	hub := testHub()
	member := testClient(1)
	outsider := testClient(2)
	hub.join(member, ConversationRoom(4))
	hub.join(outsider, ConversationRoom(8))

	hub.Publish(ConversationRoom(4), "chat:message", map[string]string{"content": "salam"})

	select {
	case frame := <-member.send:
		require.Equal(t, "chat:message", frame.Event)
		require.Equal(t, ConversationRoom(4), frame.Room)
	default:
		t.Fatal("room member received nothing")
	}
	select {
	case <-outsider.send:
		t.Fatal("outsider must not receive the frame")
	default:
	}
}

func TestPublishDropsFramesForSlowClients(t *testing.T) {
	hub := testHub()
	slow := testClient(1)
	hub.join(slow, GlobalRoom)

	// Nobody drains the send channel; publishing past the buffer must not
	// block the hub.
	done := make(chan struct{})
	go func() {
		for i := 0; i < clientSendBufferSize*2; i++ {
			hub.Publish(GlobalRoom, "stream:live", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow client")
	}
	require.Len(t, slow.send, clientSendBufferSize)
}

func TestHandleRemoteSkipsOwnEvents(t *testing.T) {
	hub := testHub()
	client := testClient(1)
	hub.join(client, GlobalRoom)

	own, err := json.Marshal(hubEvent{Source: hub.nodeID, Room: GlobalRoom, Event: "stream:live"})
	require.NoError(t, err)
	hub.handleRemote(own)
	require.Empty(t, client.send)

	foreign, err := json.Marshal(hubEvent{Source: "another-node", Room: GlobalRoom, Event: "stream:live"})
	require.NoError(t, err)
	hub.handleRemote(foreign)
	require.Len(t, client.send, 1)
}

func TestPublishBridgesNodesOverRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := NewHub(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "barakah", nil, zerolog.Nop())
	receiver := NewHub(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "barakah", nil, zerolog.Nop())
	receiver.Start(ctx)

	remote := testClient(1)
	receiver.join(remote, GlobalRoom)

	// The subscriber needs a moment to attach before the publish.
	require.Eventually(t, func() bool {
		sender.Publish(GlobalRoom, "stream:live", map[string]uint{"id": 42})
		select {
		case frame := <-remote.send:
			return frame.Event == "stream:live"
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
}

func TestCanJoinRejectsImplicitRooms(t *testing.T) {
	hub := testHub()
	ctx := context.Background()

	require.True(t, hub.canJoin(ctx, 1, ConversationRoom(2)))
	require.True(t, hub.canJoin(ctx, 1, StreamRoom(2)))
	require.False(t, hub.canJoin(ctx, 1, UserRoom(2)))
	require.False(t, hub.canJoin(ctx, 1, GlobalRoom))
	require.False(t, hub.canJoin(ctx, 1, "lobby"))
}

type stubConversationLookup struct {
	conversation models.Conversation
	err          error
}

func (s stubConversationLookup) FindByID(context.Context, uint) (models.Conversation, error) {
	return s.conversation, s.err
}

type stubStreamLookup struct {
	err error
}

func (s stubStreamLookup) FindByID(context.Context, uint) (models.Stream, error) {
	return models.Stream{}, s.err
}

func TestMembershipAuthorizer(t *testing.T) {
	ctx := context.Background()
	conversation := models.Conversation{ID: 4, UserLowID: 1, UserHighID: 2}

	authorize := MembershipAuthorizer(stubConversationLookup{conversation: conversation}, stubStreamLookup{})
	require.True(t, authorize(ctx, 1, ConversationRoom(4)))
	require.True(t, authorize(ctx, 2, ConversationRoom(4)))
	require.False(t, authorize(ctx, 3, ConversationRoom(4)))
	require.True(t, authorize(ctx, 3, StreamRoom(8)))
	require.False(t, authorize(ctx, 1, "user:1"))
	require.False(t, authorize(ctx, 1, "conversation:abc"))
	require.False(t, authorize(ctx, 1, "conversation:0"))

	missing := MembershipAuthorizer(
		stubConversationLookup{err: gorm.ErrRecordNotFound},
		stubStreamLookup{err: gorm.ErrRecordNotFound},
	)
	require.False(t, missing(ctx, 1, ConversationRoom(4)))
	require.False(t, missing(ctx, 1, StreamRoom(8)))
}

func TestNoopBroadcasterIsSafe(t *testing.T) {
	var b Broadcaster = Noop{}
	b.Publish(GlobalRoom, "anything", errors.New("ignored"))
	require.False(t, b.IsOnline(1))
	require.Zero(t, b.RoomSize(GlobalRoom))
}
