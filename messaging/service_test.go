package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *docstore.MemoryStore) {
	store := docstore.NewMemoryStore()
	svc := NewService(store, logger.Discard())
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return svc, store
}

func TestSend_Validates(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Send(context.Background(), models.Message{SenderID: "a", Message: "hi"})
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = svc.Send(context.Background(), models.Message{SenderID: "a", ReceiverID: "b", Message: "  "})
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestSend_FillsDefaults(t *testing.T) {
	svc, store := newTestService()

	m, err := svc.Send(context.Background(), models.Message{SenderID: "b", ReceiverID: "a", Message: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "a_b", m.ConversationID)
	assert.Equal(t, models.MessageTypeText, m.MessageType)

	doc, err := store.Get(context.Background(), docstore.Messages, m.ID)
	require.NoError(t, err)
	assert.Equal(t, false, doc["isRead"])
	assert.Equal(t, "hello", doc["message"])
}

func TestConversation_OldestFirstWithinLimit(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, body := range []string{"one", "two", "three"} {
		_, err := svc.Send(ctx, models.Message{SenderID: "a", ReceiverID: "b", Message: body})
		require.NoError(t, err)
	}
	_, err := svc.Send(ctx, models.Message{SenderID: "a", ReceiverID: "c", Message: "elsewhere"})
	require.NoError(t, err)

	msgs, err := svc.Conversation(ctx, "b", "a", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "two", msgs[0].Message)
	assert.Equal(t, "three", msgs[1].Message)
}

func TestMarkRead(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	m, err := svc.Send(ctx, models.Message{SenderID: "a", ReceiverID: "b", Message: "hi"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkRead(ctx, "a", m.ID), ErrForbidden)
	assert.ErrorIs(t, svc.MarkRead(ctx, "b", "missing"), ErrNotFound)
	require.NoError(t, svc.MarkRead(ctx, "b", m.ID))

	doc, err := store.Get(ctx, docstore.Messages, m.ID)
	require.NoError(t, err)
	assert.Equal(t, true, doc["isRead"])
}

func TestMarkConversationRead(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Send(ctx, models.Message{SenderID: "seller", ReceiverID: "buyer", Message: "update"})
		require.NoError(t, err)
	}
	_, err := svc.Send(ctx, models.Message{SenderID: "other", ReceiverID: "buyer", Message: "hey"})
	require.NoError(t, err)

	n, err := svc.MarkConversationRead(ctx, "buyer", "seller")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	inbox, err := svc.Inbox(ctx, "buyer", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, UnreadCount(inbox, "buyer"))
}
