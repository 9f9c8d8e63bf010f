package cart

import (
	"testing"

	"github.com/localmart/localmart-backend-go/models"
	"github.com/stretchr/testify/assert"
)

func bread(qty int) models.CartItem {
	return models.CartItem{ItemID: "bread", StoreID: "s1", Name: "Bread", Price: 2.5, Currency: "GBP", Quantity: qty}
}

func TestAdd_MergesSameItemAndStore(t *testing.T) {
	items := Add(nil, bread(1))
	items = Add(items, bread(2))

	assert.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestAdd_SameItemOtherStoreIsSeparateLine(t *testing.T) {
	other := bread(1)
	other.StoreID = "s2"

	items := Add(Add(nil, bread(1)), other)
	assert.Len(t, items, 2)
}

func TestAdd_ZeroQuantityCountsAsOne(t *testing.T) {
	items := Add(nil, bread(0))
	assert.Equal(t, 1, items[0].Quantity)
}

func TestAdd_DoesNotMutateInput(t *testing.T) {
	orig := []models.CartItem{bread(1)}
	_ = Add(orig, bread(4))
	assert.Equal(t, 1, orig[0].Quantity)
}

func TestRemove_ExactPairOnly(t *testing.T) {
	milk := models.CartItem{ItemID: "milk", StoreID: "s1", Quantity: 1}
	otherStore := bread(1)
	otherStore.StoreID = "s2"
	items := []models.CartItem{bread(1), milk, otherStore}

	got := Remove(items, "bread", "s1")
	assert.Equal(t, []models.CartItem{milk, otherStore}, got)
	assert.Len(t, items, 3)
}

func TestUpdateQuantity(t *testing.T) {
	items := []models.CartItem{bread(1)}

	assert.Equal(t, 5, UpdateQuantity(items, "bread", "s1", 5)[0].Quantity)
	assert.Empty(t, UpdateQuantity(items, "bread", "s1", 0))
	assert.Equal(t, 1, items[0].Quantity)
}

func TestTotalAndCount(t *testing.T) {
	items := []models.CartItem{
		bread(2),
		{ItemID: "jollof", StoreID: "s9", Price: 1500, Currency: "NGN", Quantity: 1},
	}
	assert.Equal(t, map[string]float64{"GBP": 5, "NGN": 1500}, Total(items))
	assert.Equal(t, 3, Count(items))
	assert.Empty(t, Clear())
}
