package models

import "time"

// Conversation is a two-party thread. Participants are stored as the sorted
// pair (UserLowID < UserHighID) with a unique index so concurrent
// get-or-create calls from both sides converge on a single row. Each side
// keeps its own unread counter.
type Conversation struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserLowID     uint       `gorm:"not null;uniqueIndex:idx_conversation_pair;index" json:"user_low_id"`
	UserHighID    uint       `gorm:"not null;uniqueIndex:idx_conversation_pair;index" json:"user_high_id"`
	LastSenderID  uint       `json:"last_sender_id"`
	LastPreview   string     `gorm:"size:255" json:"last_preview"`
	LastMessageAt *time.Time `gorm:"index" json:"last_message_at,omitempty"`
	UnreadLow     int        `gorm:"not null;default:0" json:"-"`
	UnreadHigh    int        `gorm:"not null;default:0" json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Participants returns both member ids.
func (c Conversation) Participants() (uint, uint) {
	return c.UserLowID, c.UserHighID
}

// HasParticipant reports whether the user belongs to the conversation.
func (c Conversation) HasParticipant(userID uint) bool {
	return userID == c.UserLowID || userID == c.UserHighID
}

// OtherParticipant returns the counterpart of the given member.
func (c Conversation) OtherParticipant(userID uint) uint {
	if userID == c.UserLowID {
		return c.UserHighID
	}
	return c.UserLowID
}

// UnreadFor returns the unread counter belonging to the given member.
func (c Conversation) UnreadFor(userID uint) int {
	if userID == c.UserLowID {
		return c.UnreadLow
	}
	return c.UnreadHigh
}

// Message is an append-only chat entry. Ordering within a conversation is
// created_at with id as tie-break.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint      `gorm:"not null;index" json:"sender_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Read           bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}
