package models

import (
	"time"

	"github.com/localmart/localmart-backend-go/docstore"
)

type OrderStatus string

const (
	OrderStatusRequested OrderStatus = "requested"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusRefunded  OrderStatus = "refunded"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderItem is an item as it appears on orders, transactions and receipts.
type OrderItem struct {
	ItemID   string  `json:"itemId,omitempty"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (i OrderItem) Document() map[string]any {
	return map[string]any{
		"itemId":   i.ItemID,
		"name":     i.Name,
		"price":    i.Price,
		"quantity": i.Quantity,
	}
}

// OrderItemFromMap reads an item written by any of the order-producing features.
func OrderItemFromMap(m map[string]any) OrderItem {
	it := OrderItem{
		ItemID: docstore.String(m, "itemId", "id", "productId"),
		Name:   docstore.String(m, "name", "itemName", "title", "productName"),
	}
	it.Price, _ = docstore.Float(m, "price", "unitPrice", "amount")
	if q, ok := docstore.Int(m, "quantity", "qty", "count"); ok {
		it.Quantity = q
	}
	if it.Quantity < 1 {
		it.Quantity = 1
	}
	if it.Name == "" {
		it.Name = "Item"
	}
	return it
}

// OrderItemsFrom converts a raw item list, skipping entries that are not objects.
func OrderItemsFrom(raw []any) []OrderItem {
	items := make([]OrderItem, 0, len(raw))
	for _, r := range raw {
		m, ok := docstore.AsMap(r)
		if !ok {
			continue
		}
		items = append(items, OrderItemFromMap(m))
	}
	return items
}

// Order is the per-store order request recorded at checkout.
type Order struct {
	ID           string      `json:"id"`
	OrderID      string      `json:"orderId"`
	SubmissionID string      `json:"submissionId"`
	Sequence     int         `json:"sequence"`
	BuyerID      string      `json:"buyerId"`
	SellerID     string      `json:"sellerId"`
	StoreID      string      `json:"storeId"`
	StoreName    string      `json:"storeName"`
	Currency     string      `json:"currency"`
	Items        []OrderItem `json:"items"`
	DeliveryType string      `json:"deliveryType"`
	Subtotal     float64     `json:"subtotal"`
	DeliveryFee  float64     `json:"deliveryFee"`
	ServiceFee   float64     `json:"serviceFee"`
	Total        float64     `json:"total"`
	Note         string      `json:"note,omitempty"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func (o Order) Document() docstore.Document {
	items := make([]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, it.Document())
	}
	return docstore.Document{
		"orderId":      o.OrderID,
		"submissionId": o.SubmissionID,
		"sequence":     o.Sequence,
		"buyerId":      o.BuyerID,
		"sellerId":     o.SellerID,
		"storeId":      o.StoreID,
		"storeName":    o.StoreName,
		"currency":     o.Currency,
		"items":        items,
		"deliveryType": o.DeliveryType,
		"subtotal":     o.Subtotal,
		"deliveryFee":  o.DeliveryFee,
		"serviceFee":   o.ServiceFee,
		"total":        o.Total,
		"note":         o.Note,
		"status":       string(o.Status),
		"createdAt":    o.CreatedAt,
	}
}
