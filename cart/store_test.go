package cart

import (
	"context"
	"testing"

	"github.com/localmart/localmart-backend-go/kvstore"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	s := NewStore(kv, logger.Discard())

	_, err := s.Add(ctx, "u1", bread(1))
	require.NoError(t, err)
	_, err = s.Add(ctx, "u1", bread(1))
	require.NoError(t, err)

	var persisted []models.CartItem
	found, err := kvstore.GetJSON(ctx, kv, "cart:u1", &persisted)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, persisted[0].Quantity)

	// a fresh store over the same kv sees the same cart
	loaded, err := NewStore(kv, logger.Discard()).Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, persisted, loaded)
}

func TestStore_ClearRemovesKey(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	s := NewStore(kv, logger.Discard())

	_, err := s.Add(ctx, "u1", bread(1))
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx, "u1"))

	_, err = kv.Get(ctx, "cart:u1")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	items, err := s.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kvstore.NewMemoryStore(), logger.Discard())

	var seen [][]models.CartItem
	unsubscribe := s.Subscribe("u1", func(items []models.CartItem) {
		seen = append(seen, items)
	})

	_, err := s.Add(ctx, "u1", bread(1))
	require.NoError(t, err)
	_, err = s.Add(ctx, "u2", bread(1))
	require.NoError(t, err)
	_, err = s.Remove(ctx, "u1", "bread", "s1")
	require.NoError(t, err)

	unsubscribe()
	_, err = s.Add(ctx, "u1", bread(1))
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Len(t, seen[0], 1)
	assert.Empty(t, seen[1])
}

func TestStore_ReplaceMergesDuplicateLines(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	s := NewStore(kv, logger.Discard())

	_, err := s.Add(ctx, "u1", models.CartItem{ItemID: "milk", StoreID: "dairy", Quantity: 4})
	require.NoError(t, err)

	items, err := s.Replace(ctx, "u1", []models.CartItem{
		bread(1),
		bread(2),
		{ItemID: "jam", StoreID: ""},
		{ItemID: "butter", StoreID: "bakery", Quantity: 0},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "bread", items[0].ItemID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "butter", items[1].ItemID)
	assert.Equal(t, 1, items[1].Quantity)

	loaded, err := s.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, items, loaded)

	_, err = s.Replace(ctx, "u1", nil)
	require.NoError(t, err)
	_, err = kv.Get(ctx, "cart:u1")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}
