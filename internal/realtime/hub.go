package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/alfaruq-id/barakah-api/internal/observability"
)

// JoinAuthorizer decides whether a connected user may join a room. A nil
// authorizer allows every join.
type JoinAuthorizer func(ctx context.Context, userID uint, room string) bool

// Hub is the room-addressed realtime transport. Local delivery goes through
// per-room client sets; cross-node delivery rides Redis pub/sub and NATS
// with a source-node id so a hub never replays its own events.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}

	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	natsQueue   string

	authorize JoinAuthorizer
	logger    zerolog.Logger
	nodeID    string
}

type hubEvent struct {
	Source  string          `json:"source"`
	Room    string          `json:"room"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

// Frame is the envelope written to websocket clients.
type Frame struct {
	Event   string      `json:"event"`
	Room    string      `json:"room"`
	Payload interface{} `json:"payload"`
}

// NewHub constructs a hub. Redis and NATS handles may be nil; the hub then
// delivers to local connections only.
func NewHub(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) *Hub {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":realtime"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".realtime"
	}

	return &Hub{
		rooms:       make(map[string]map[*Client]struct{}),
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		natsQueue:   "barakah-realtime",
		logger:      logger.With().Str("component", "realtime_hub").Logger(),
		nodeID:      uuid.NewString(),
	}
}

// SetJoinAuthorizer installs the room join guard. Must be called before
// connections are served.
func (h *Hub) SetJoinAuthorizer(fn JoinAuthorizer) {
	h.authorize = fn
}

// Start launches the cross-node consumers. They stop when ctx is cancelled.
func (h *Hub) Start(ctx context.Context) {
	if h.redis != nil && h.redisStream != "" {
		go h.consumeRedis(ctx)
	}
	if h.nats != nil && h.natsSubject != "" {
		go h.consumeNATS(ctx)
	}
}

// Publish implements Broadcaster. Local clients receive the frame
// immediately; the event is mirrored to the other nodes best-effort.
func (h *Hub) Publish(room, event string, payload interface{}) {
	h.deliverLocal(room, event, payload)
	observability.RealtimeEventsTotal().WithLabelValues(event).Inc()

	raw, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn().Err(err).Str("event", event).Msg("failed to marshal realtime payload")
		return
	}

	envelope := hubEvent{
		Source:  h.nodeID,
		Room:    room,
		Event:   event,
		Payload: raw,
		SentAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to marshal realtime envelope")
		return
	}

	ctx := context.Background()
	if h.redis != nil && h.redisStream != "" {
		if err := h.redis.Publish(ctx, h.redisStream, data).Err(); err != nil {
			h.logger.Warn().Err(err).Msg("failed to publish realtime event to redis")
		}
	}
	if h.nats != nil && h.natsSubject != "" {
		if err := h.nats.Publish(h.natsSubject, data); err != nil {
			h.logger.Warn().Err(err).Msg("failed to publish realtime event to nats")
		}
	}
}

// IsOnline implements Broadcaster.
func (h *Hub) IsOnline(userID uint) bool {
	return h.RoomSize(UserRoom(userID)) > 0
}

// RoomSize implements Broadcaster.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) deliverLocal(room, event string, payload interface{}) {
	frame := Frame{Event: event, Room: room, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		select {
		case client.send <- frame:
		default:
			h.logger.Warn().Str("room", room).Uint("user_id", client.userID).Msg("dropping realtime frame for slow client")
		}
	}
}

func (h *Hub) join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.rooms[room]; !exists {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][client] = struct{}{}
	client.rooms[room] = struct{}{}
	h.logger.Debug().Str("room", room).Uint("user_id", client.userID).Msg("client joined room")
}

func (h *Hub) leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(client, room)
}

func (h *Hub) leaveLocked(client *Client, room string) {
	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(client.rooms, room)
}

// detach removes the client from every room it joined. Called once on
// disconnect, which is what keeps derived viewer counts honest after an
// abrupt close.
func (h *Hub) detach(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range client.rooms {
		h.leaveLocked(client, room)
	}
}

func (h *Hub) canJoin(ctx context.Context, userID uint, room string) bool {
	if !strings.HasPrefix(room, conversationRoomPrefix) && !strings.HasPrefix(room, streamRoomPrefix) {
		return false
	}
	if h.authorize == nil {
		return true
	}
	return h.authorize(ctx, userID, room)
}

func (h *Hub) consumeRedis(ctx context.Context) {
	pubsub := h.redis.Subscribe(ctx, h.redisStream)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			h.logger.Error().Err(err).Msg("realtime redis subscription closed")
			return
		}
		h.handleRemote([]byte(msg.Payload))
	}
}

func (h *Hub) consumeNATS(ctx context.Context) {
	sub, err := h.nats.QueueSubscribe(h.natsSubject, h.natsQueue, func(msg *nats.Msg) {
		h.handleRemote(msg.Data)
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to subscribe to nats realtime subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			h.logger.Warn().Err(err).Msg("failed to drain realtime nats subscription")
		}
	}()
}

func (h *Hub) handleRemote(data []byte) {
	var event hubEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Warn().Err(err).Msg("invalid realtime envelope")
		return
	}

	if event.Source == h.nodeID {
		return
	}

	h.deliverLocal(event.Room, event.Event, event.Payload)
	observability.RealtimeEventsTotal().WithLabelValues(event.Event).Inc()
}
