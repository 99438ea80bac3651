package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

// ConversationRepository handles persistence for two-party conversations and
// their messages.
type ConversationRepository interface {
	GetOrCreate(ctx context.Context, userA, userB uint) (models.Conversation, error)
	FindByID(ctx context.Context, id uint) (models.Conversation, error)
	ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Conversation, error)
	AppendMessage(ctx context.Context, message *models.Message, recipientID uint, preview string) error
	ListMessages(ctx context.Context, conversationID uint, limit, offset int) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID, userID uint) error
	TotalUnread(ctx context.Context, userID uint) (int64, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository constructs a repository backed by GORM.
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// GetOrCreate resolves the conversation for an unordered user pair. The pair
// is stored sorted under a unique index, so concurrent first messages from
// both sides race on the insert and both land on the same row.
func (r *conversationRepository) GetOrCreate(ctx context.Context, userA, userB uint) (models.Conversation, error) {
	low, high := sortPair(userA, userB)

	insert := models.Conversation{UserLowID: low, UserHighID: high}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&insert).Error; err != nil {
		return models.Conversation{}, err
	}

	var conversation models.Conversation
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&conversation).Error
	return conversation, err
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint) (models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).First(&conversation, id).Error
	return conversation, err
}

// ListForUser pages the caller's threads, newest activity first. Threads
// whose counterpart is banned are filtered out here so the listing and
// TotalUnread agree with each other.
func (r *conversationRepository) ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Conversation, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	var conversations []models.Conversation
	err := r.db.WithContext(ctx).
		Joins(`JOIN users peer ON peer.id = CASE WHEN conversations.user_low_id = ? THEN conversations.user_high_id ELSE conversations.user_low_id END AND peer.banned = ?`, userID, false).
		Where("conversations.user_low_id = ? OR conversations.user_high_id = ?", userID, userID).
		Order("COALESCE(conversations.last_message_at, conversations.created_at) DESC").
		Offset(offset).
		Limit(limit).
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

// AppendMessage appends the message and, in the same transaction, refreshes
// the conversation's last-message snapshot and bumps the recipient's unread
// counter.
func (r *conversationRepository) AppendMessage(ctx context.Context, message *models.Message, recipientID uint, preview string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		var conversation models.Conversation
		if err := tx.First(&conversation, message.ConversationID).Error; err != nil {
			return err
		}

		unreadColumn := "unread_high"
		if recipientID == conversation.UserLowID {
			unreadColumn = "unread_low"
		}

		now := time.Now().UTC()
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversation.ID).
			UpdateColumns(map[string]interface{}{
				"last_sender_id":  message.SenderID,
				"last_preview":    preview,
				"last_message_at": now,
				"updated_at":      now,
				unreadColumn:      gorm.Expr(unreadColumn + " + 1"),
			}).Error
	})
}

func (r *conversationRepository) ListMessages(ctx context.Context, conversationID uint, limit, offset int) ([]models.Message, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flags the counterpart's messages read and zeroes the caller's
// unread counter together.
func (r *conversationRepository) MarkRead(ctx context.Context, conversationID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conversation models.Conversation
		if err := tx.First(&conversation, conversationID).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id <> ? AND read = ?", conversationID, userID, false).
			UpdateColumn("read", true).Error; err != nil {
			return err
		}

		unreadColumn := "unread_high"
		if userID == conversation.UserLowID {
			unreadColumn = "unread_low"
		}

		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			UpdateColumn(unreadColumn, 0).Error
	})
}

// TotalUnread sums the caller's unread counters across all conversations,
// excluding threads with banned counterparts exactly as ListForUser does.
// By construction it equals the sum of per-conversation unread fields a
// client would compute page by page.
func (r *conversationRepository) TotalUnread(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(CASE WHEN c.user_low_id = ? THEN c.unread_low ELSE c.unread_high END), 0)
		 FROM conversations c
		 JOIN users peer ON peer.id = CASE WHEN c.user_low_id = ? THEN c.user_high_id ELSE c.user_low_id END AND peer.banned = ?
		 WHERE c.user_low_id = ? OR c.user_high_id = ?`,
		userID, userID, false, userID, userID,
	).Scan(&total).Error
	return total, err
}

func sortPair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}
