package models

// CartItem is one line of a buyer's cart. Lines are unique by (ItemID, StoreID).
type CartItem struct {
	ItemID       string  `json:"itemId"`
	StoreID      string  `json:"storeId"`
	StoreName    string  `json:"storeName"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	Quantity     int     `json:"quantity"`
	DeliveryType string  `json:"deliveryType"` // delivery/collection
	ImageURL     string  `json:"imageUrl,omitempty"`
}

const (
	DeliveryTypeDelivery   = "delivery"
	DeliveryTypeCollection = "collection"
)

// LineTotal is price times quantity.
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

func (i CartItem) Document() map[string]any {
	return map[string]any{
		"itemId":       i.ItemID,
		"storeId":      i.StoreID,
		"storeName":    i.StoreName,
		"name":         i.Name,
		"price":        i.Price,
		"currency":     i.Currency,
		"quantity":     i.Quantity,
		"deliveryType": i.DeliveryType,
		"imageUrl":     i.ImageURL,
	}
}
