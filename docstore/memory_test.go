package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Add(ctx, Messages, Document{"senderId": "a", "receiverId": "b", "isRead": false})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := s.Get(ctx, Messages, id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID())
	assert.Equal(t, "a", doc["senderId"])

	require.NoError(t, s.Update(ctx, Messages, id, Document{"isRead": true, "meta.seenBy": "b"}))
	doc, err = s.Get(ctx, Messages, id)
	require.NoError(t, err)
	assert.Equal(t, true, doc["isRead"])
	assert.Equal(t, "b", String(doc, "meta.seenBy"))

	assert.ErrorIs(t, s.Update(ctx, Messages, "missing", Document{"x": 1}), ErrNotFound)

	require.NoError(t, s.Delete(ctx, Messages, id))
	_, err = s.Get(ctx, Messages, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, Stores, "s1", Document{"feeSettings": map[string]any{"deliveryFee": 2.5}}))

	doc, err := s.Get(ctx, Stores, "s1")
	require.NoError(t, err)
	Map(doc, "feeSettings")["deliveryFee"] = 99.0

	again, err := s.Get(ctx, Stores, "s1")
	require.NoError(t, err)
	fee, _ := Float(again, "feeSettings.deliveryFee")
	assert.Equal(t, 2.5, fee)
}

func TestMemoryStore_FindFiltersOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, kind := range []string{"text", "order_request", "text", "receipt"} {
		_, err := s.Add(ctx, Messages, Document{
			"receiverId":  "u1",
			"messageType": kind,
			"timestamp":   base.Add(time.Duration(i) * time.Minute),
			"seq":         i,
		})
		require.NoError(t, err)
	}
	_, err := s.Add(ctx, Messages, Document{"receiverId": "u2", "messageType": "text"})
	require.NoError(t, err)

	docs, err := s.Find(ctx, Query{
		Collection: Messages,
		Filters:    []Filter{Where("receiverId", "u1"), WhereIn("messageType", "text", "receipt")},
		OrderBy:    "timestamp",
		Desc:       true,
		Limit:      2,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "receipt", docs[0]["messageType"])
	assert.Equal(t, "text", docs[1]["messageType"])

	seq, _ := Int(docs[1], "seq")
	assert.Equal(t, 2, seq)

	first, err := FindFirst(ctx, s, Query{Collection: Messages, Filters: []Filter{Where("receiverId", "nobody")}})
	assert.Nil(t, first)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_NumericEqualityAcrossTypes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Add(ctx, Orders, Document{"orderNumber": int64(42)})
	require.NoError(t, err)

	docs, err := s.Find(ctx, Query{Collection: Orders, Filters: []Filter{Where("orderNumber", 42)}})
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = s.Find(ctx, Query{Collection: Orders, Filters: []Filter{Where("orderNumber", "42")}})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemoryStore_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewMemoryStore()

	ch, err := s.Watch(ctx, Query{Collection: Messages, Filters: []Filter{Where("receiverId", "u1")}})
	require.NoError(t, err)

	snap := <-ch
	require.NoError(t, snap.Err)
	assert.Empty(t, snap.Docs)

	_, err = s.Add(ctx, Messages, Document{"receiverId": "u1"})
	require.NoError(t, err)

	snap = <-ch
	require.NoError(t, snap.Err)
	assert.Len(t, snap.Docs, 1)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestMemoryStore_WatchFailure(t *testing.T) {
	s := NewMemoryStore()
	ch, err := s.Watch(context.Background(), Query{Collection: Messages})
	require.NoError(t, err)
	<-ch

	boom := errors.New("listener dropped")
	s.Fail(Messages, boom)

	snap, ok := <-ch
	require.True(t, ok)
	assert.ErrorIs(t, snap.Err, boom)

	_, ok = <-ch
	assert.False(t, ok)
}
