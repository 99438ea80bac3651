package realtime

import "fmt"

// Room kinds understood by the hub. Everything else is rejected at join
// time.
const (
	GlobalRoom             = "global"
	conversationRoomPrefix = "conversation:"
	userRoomPrefix         = "user:"
	streamRoomPrefix       = "stream:"
)

// ConversationRoom addresses the members of a two-party thread.
func ConversationRoom(conversationID uint) string {
	return fmt.Sprintf("%s%d", conversationRoomPrefix, conversationID)
}

// UserRoom addresses all live connections of a single user.
func UserRoom(userID uint) string {
	return fmt.Sprintf("%s%d", userRoomPrefix, userID)
}

// StreamRoom addresses the viewers of a broadcast.
func StreamRoom(streamID uint) string {
	return fmt.Sprintf("%s%d", streamRoomPrefix, streamID)
}

// Broadcaster is the handle services use to push events to connected
// clients. Publishing is fire-and-forget: a slow or absent consumer never
// fails the caller. Components receive a Broadcaster at construction; they
// treat a nil handle as a no-op transport.
type Broadcaster interface {
	// Publish delivers the named event to every client in the room.
	Publish(room, event string, payload interface{})
	// IsOnline reports whether the user has at least one live connection
	// on this node.
	IsOnline(userID uint) bool
	// RoomSize returns the number of clients currently in the room.
	RoomSize(room string) int
}

// Noop is a Broadcaster that drops everything. Used in tests and before the
// hub is wired up.
type Noop struct{}

// Publish discards the event.
func (Noop) Publish(string, string, interface{}) {}

// IsOnline always reports offline.
func (Noop) IsOnline(uint) bool { return false }

// RoomSize always reports an empty room.
func (Noop) RoomSize(string) int { return 0 }
