package realtime

import (
	"context"
	"strconv"
	"strings"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

// ConversationLookup resolves a conversation for membership checks.
type ConversationLookup interface {
	FindByID(ctx context.Context, id uint) (models.Conversation, error)
}

// StreamLookup resolves a stream for viewer admission.
type StreamLookup interface {
	FindByID(ctx context.Context, id uint) (models.Stream, error)
}

// MembershipAuthorizer admits conversation rooms only to their two
// participants and stream rooms only while the broadcast exists. User and
// global rooms are joined implicitly on connect and never pass through here.
func MembershipAuthorizer(conversations ConversationLookup, streams StreamLookup) JoinAuthorizer {
	return func(ctx context.Context, userID uint, room string) bool {
		switch {
		case strings.HasPrefix(room, conversationRoomPrefix):
			id, ok := roomID(room, conversationRoomPrefix)
			if !ok {
				return false
			}
			conversation, err := conversations.FindByID(ctx, id)
			if err != nil {
				return false
			}
			return conversation.HasParticipant(userID)
		case strings.HasPrefix(room, streamRoomPrefix):
			id, ok := roomID(room, streamRoomPrefix)
			if !ok {
				return false
			}
			_, err := streams.FindByID(ctx, id)
			return err == nil
		default:
			return false
		}
	}
}

func roomID(room, prefix string) (uint, bool) {
	parsed, err := strconv.ParseUint(strings.TrimPrefix(room, prefix), 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}
