// Package checkout turns a buyer's cart into per-store order requests.
package checkout

import "github.com/localmart/localmart-backend-go/models"

// StoreGroup is the part of a cart sold by one store in one currency.
type StoreGroup struct {
	StoreID       string            `json:"storeId"`
	StoreName     string            `json:"storeName"`
	Currency      string            `json:"currency"`
	Items         []models.CartItem `json:"items"`
	Subtotal      float64           `json:"subtotal"`
	NeedsDelivery bool              `json:"needsDelivery"`
}

// DeliveryType is delivery when any item in the group is delivered.
func (g StoreGroup) DeliveryType() string {
	if g.NeedsDelivery {
		return models.DeliveryTypeDelivery
	}
	return models.DeliveryTypeCollection
}

// Group splits items by (StoreID, Currency), keeping first-appearance order.
func Group(items []models.CartItem) []StoreGroup {
	type groupKey struct{ store, currency string }
	index := make(map[groupKey]int)
	var groups []StoreGroup
	for _, it := range items {
		k := groupKey{it.StoreID, it.Currency}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, StoreGroup{
				StoreID:   it.StoreID,
				StoreName: it.StoreName,
				Currency:  it.Currency,
			})
		}
		g := &groups[i]
		g.Items = append(g.Items, it)
		g.Subtotal += it.LineTotal()
		if it.DeliveryType == models.DeliveryTypeDelivery {
			g.NeedsDelivery = true
		}
	}
	return groups
}
