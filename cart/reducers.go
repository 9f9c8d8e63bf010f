// Package cart holds buyer carts. The reducers are pure; Store adds persistence and change
// notification on top of them.
package cart

import "github.com/localmart/localmart-backend-go/models"

// Add merges item into items by (ItemID, StoreID), summing quantities. A quantity below one
// counts as one.
func Add(items []models.CartItem, item models.CartItem) []models.CartItem {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	out := make([]models.CartItem, len(items), len(items)+1)
	copy(out, items)
	for i := range out {
		if out[i].ItemID == item.ItemID && out[i].StoreID == item.StoreID {
			out[i].Quantity += item.Quantity
			return out
		}
	}
	return append(out, item)
}

// Remove drops the line for (itemID, storeID) and nothing else.
func Remove(items []models.CartItem, itemID, storeID string) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	for _, it := range items {
		if it.ItemID == itemID && it.StoreID == storeID {
			continue
		}
		out = append(out, it)
	}
	return out
}

// UpdateQuantity sets the quantity of a line. A quantity below one removes it.
func UpdateQuantity(items []models.CartItem, itemID, storeID string, qty int) []models.CartItem {
	if qty < 1 {
		return Remove(items, itemID, storeID)
	}
	out := make([]models.CartItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ItemID == itemID && out[i].StoreID == storeID {
			out[i].Quantity = qty
		}
	}
	return out
}

func Clear() []models.CartItem {
	return []models.CartItem{}
}

// Total sums line totals per currency.
func Total(items []models.CartItem) map[string]float64 {
	totals := make(map[string]float64)
	for _, it := range items {
		totals[it.Currency] += it.LineTotal()
	}
	return totals
}

// Count is the number of units across all lines.
func Count(items []models.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
