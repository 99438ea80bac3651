package realtime

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/alfaruq-id/barakah-api/internal/observability"
)

const (
	clientSendBufferSize = 32
	keepaliveInterval    = 30 * time.Second
)

// Client wraps one websocket connection. Every connection joins the owner's
// personal room and the global room immediately; conversation and stream
// rooms are joined and left through control frames.
type Client struct {
	conn   *websocket.Conn
	hub    *Hub
	userID uint
	send   chan Frame
	rooms  map[string]struct{}
	closed chan struct{}
	once   sync.Once
	ctx    context.Context
}

type controlFrame struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

// ServeConnection runs the read/write pumps for a connection until it
// closes. Blocks for the lifetime of the connection.
func (h *Hub) ServeConnection(conn *websocket.Conn, userID uint, ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	client := &Client{
		conn:   conn,
		hub:    h,
		userID: userID,
		send:   make(chan Frame, clientSendBufferSize),
		rooms:  make(map[string]struct{}),
		closed: make(chan struct{}),
		ctx:    ctx,
	}

	h.join(client, UserRoom(userID))
	h.join(client, GlobalRoom)
	observability.RealtimeConnections().Inc()

	go client.writer()
	client.reader()
}

func (c *Client) reader() {
	defer c.close()

	for {
		var frame controlFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			c.hub.logger.Debug().Err(err).Uint("user_id", c.userID).Msg("realtime read loop ended")
			return
		}

		room := strings.TrimSpace(frame.Room)
		if room == "" {
			continue
		}

		switch frame.Action {
		case "join":
			if c.hub.canJoin(c.ctx, c.userID, room) {
				c.hub.join(c, room)
			} else {
				c.hub.logger.Warn().Str("room", room).Uint("user_id", c.userID).Msg("room join refused")
			}
		case "leave":
			c.hub.leave(c, room)
		default:
			c.hub.logger.Debug().Str("action", frame.Action).Msg("unknown realtime control action")
		}
	}
}

func (c *Client) writer() {
	defer c.close()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				c.hub.logger.Debug().Err(err).Msg("realtime write loop terminated")
				return
			}
		case <-time.After(keepaliveInterval):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.hub.logger.Debug().Err(err).Msg("realtime ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.closed)
		c.hub.detach(c)
		observability.RealtimeConnections().Dec()
		_ = c.conn.Close()
	})
}
