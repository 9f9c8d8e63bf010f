package messaging

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreadCount(t *testing.T) {
	msgs := []models.Message{
		{ReceiverID: "u1"},
		{ReceiverID: "u1", IsRead: true},
		{ReceiverID: "u2"},
		{ReceiverID: "u1"},
	}
	assert.Equal(t, 2, UnreadCount(msgs, "u1"))
	assert.Equal(t, 0, UnreadCount(msgs, ""))
}

func TestTracker_FollowsChanges(t *testing.T) {
	store := docstore.NewMemoryStore()
	svc := NewService(store, logger.Discard())
	tracker := NewTracker(store, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	var latest atomic.Int64
	latest.Store(-1)
	done := make(chan error, 1)
	go func() {
		done <- tracker.Run(ctx, "buyer", func(n int) { latest.Store(int64(n)) })
	}()

	require.Eventually(t, func() bool { return latest.Load() == 0 }, time.Second, 5*time.Millisecond)

	m, err := svc.Send(ctx, models.Message{SenderID: "seller", ReceiverID: "buyer", Message: "hi"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, models.Message{SenderID: "seller", ReceiverID: "buyer", Message: "again"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return latest.Load() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, svc.MarkRead(ctx, "buyer", m.ID))
	require.Eventually(t, func() bool { return latest.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("tracker did not stop")
	}
}

func TestTracker_FailsClosed(t *testing.T) {
	store := docstore.NewMemoryStore()
	svc := NewService(store, logger.Discard())
	tracker := NewTracker(store, logger.Discard())
	ctx := context.Background()

	_, err := svc.Send(ctx, models.Message{SenderID: "seller", ReceiverID: "buyer", Message: "hi"})
	require.NoError(t, err)

	var latest atomic.Int64
	latest.Store(-1)
	done := make(chan error, 1)
	go func() {
		done <- tracker.Run(ctx, "buyer", func(n int) { latest.Store(int64(n)) })
	}()
	require.Eventually(t, func() bool { return latest.Load() == 1 }, time.Second, 5*time.Millisecond)

	boom := errors.New("listener dropped")
	store.Fail(docstore.Messages, boom)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-time.After(time.Second):
		t.Fatal("tracker did not stop")
	}
	assert.Equal(t, int64(0), latest.Load())
}

func TestTracker_NoUser(t *testing.T) {
	tracker := NewTracker(docstore.NewMemoryStore(), logger.Discard())
	got := -1
	require.NoError(t, tracker.Run(context.Background(), "", func(n int) { got = n }))
	assert.Equal(t, 0, got)

	n, err := tracker.Count(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, n)
}
