package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

func TestGetOrCreateConversationIdempotentAcrossOrder(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Conversation{}, &models.Message{})
	repo := NewConversationRepository(db)

	alice := createUser(t, db, "alice", false)
	bilal := createUser(t, db, "bilal", false)

	first, err := repo.GetOrCreate(context.Background(), alice.ID, bilal.ID)
	require.NoError(t, err)
	second, err := repo.GetOrCreate(context.Background(), bilal.ID, alice.ID)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID, "pair order must not matter")

	var count int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestAppendMessageUpdatesSnapshotAndUnread(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Conversation{}, &models.Message{})
	repo := NewConversationRepository(db)

	alice := createUser(t, db, "alice", false)
	bilal := createUser(t, db, "bilal", false)

	conversation, err := repo.GetOrCreate(context.Background(), alice.ID, bilal.ID)
	require.NoError(t, err)

	message := models.Message{ConversationID: conversation.ID, SenderID: alice.ID, Content: "salam"}
	require.NoError(t, repo.AppendMessage(context.Background(), &message, bilal.ID, "salam"))

	reloaded, err := repo.FindByID(context.Background(), conversation.ID)
	require.NoError(t, err)
	require.Equal(t, alice.ID, reloaded.LastSenderID)
	require.Equal(t, "salam", reloaded.LastPreview)
	require.NotNil(t, reloaded.LastMessageAt)
	require.Equal(t, 1, reloaded.UnreadFor(bilal.ID))
	require.Equal(t, 0, reloaded.UnreadFor(alice.ID))
}

func TestMarkReadZeroesCallerCounter(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Conversation{}, &models.Message{})
	repo := NewConversationRepository(db)

	alice := createUser(t, db, "alice", false)
	bilal := createUser(t, db, "bilal", false)

	conversation, err := repo.GetOrCreate(context.Background(), alice.ID, bilal.ID)
	require.NoError(t, err)

	for _, content := range []string{"one", "two"} {
		message := models.Message{ConversationID: conversation.ID, SenderID: alice.ID, Content: content}
		require.NoError(t, repo.AppendMessage(context.Background(), &message, bilal.ID, content))
	}

	require.NoError(t, repo.MarkRead(context.Background(), conversation.ID, bilal.ID))

	reloaded, err := repo.FindByID(context.Background(), conversation.ID)
	require.NoError(t, err)
	require.Equal(t, 0, reloaded.UnreadFor(bilal.ID))

	messages, err := repo.ListMessages(context.Background(), conversation.ID, 10, 0)
	require.NoError(t, err)
	for _, message := range messages {
		require.True(t, message.Read)
	}
}

// The badge total must equal the sum of per-conversation unread counters the
// client sees, including after a counterpart ban removes a thread from both.
func TestTotalUnreadMatchesConversationListing(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Conversation{}, &models.Message{})
	repo := NewConversationRepository(db)
	users := NewUserRepository(db)

	reader := createUser(t, db, "reader", false)
	peerA := createUser(t, db, "peer_a", false)
	peerB := createUser(t, db, "peer_b", false)

	for _, peer := range []models.User{peerA, peerB} {
		conversation, err := repo.GetOrCreate(context.Background(), reader.ID, peer.ID)
		require.NoError(t, err)
		message := models.Message{ConversationID: conversation.ID, SenderID: peer.ID, Content: "hi"}
		require.NoError(t, repo.AppendMessage(context.Background(), &message, reader.ID, "hi"))
	}

	sumListed := func() int {
		listed, err := repo.ListForUser(context.Background(), reader.ID, 50, 0)
		require.NoError(t, err)
		sum := 0
		for _, conversation := range listed {
			sum += conversation.UnreadFor(reader.ID)
		}
		return sum
	}

	total, err := repo.TotalUnread(context.Background(), reader.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, 2, sumListed())

	require.NoError(t, users.SetBanned(context.Background(), peerA.ID, true, "spam", 1))

	total, err = repo.TotalUnread(context.Background(), reader.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), total, "banned counterpart leaves the total")
	require.Equal(t, 1, sumListed(), "listing and total agree")
}

func TestListForUserOrdersByActivity(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Conversation{}, &models.Message{})
	repo := NewConversationRepository(db)

	reader := createUser(t, db, "reader", false)
	older := createUser(t, db, "older", false)
	newer := createUser(t, db, "newer", false)

	first, err := repo.GetOrCreate(context.Background(), reader.ID, older.ID)
	require.NoError(t, err)
	second, err := repo.GetOrCreate(context.Background(), reader.ID, newer.ID)
	require.NoError(t, err)

	messageA := models.Message{ConversationID: first.ID, SenderID: older.ID, Content: "a"}
	require.NoError(t, repo.AppendMessage(context.Background(), &messageA, reader.ID, "a"))
	messageB := models.Message{ConversationID: second.ID, SenderID: newer.ID, Content: "b"}
	require.NoError(t, repo.AppendMessage(context.Background(), &messageB, reader.ID, "b"))

	listed, err := repo.ListForUser(context.Background(), reader.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, second.ID, listed[0].ID, "latest activity first")
}
