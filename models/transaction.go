package models

import (
	"strings"
	"time"

	"github.com/localmart/localmart-backend-go/docstore"
)

type TransactionKind string

const (
	KindOrder  TransactionKind = "order"
	KindRefund TransactionKind = "refund"
)

// Transaction is the normalized view of a payment or refund record. Raw keeps the source
// document so item and store lookups can keep reconciling fields.
type Transaction struct {
	ID            string            `json:"id"`
	OrderID       string            `json:"orderId,omitempty"`
	Kind          TransactionKind   `json:"kind"`
	CustomerID    string            `json:"customerId,omitempty"`
	CustomerName  string            `json:"customerName,omitempty"`
	CustomerEmail string            `json:"customerEmail,omitempty"`
	SellerID      string            `json:"sellerId,omitempty"`
	StoreID       string            `json:"storeId,omitempty"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	Status        string            `json:"status,omitempty"`
	PaymentMethod string            `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	Raw           docstore.Document `json:"-"`
	// Collection is where Raw was read from.
	Collection string `json:"-"`
}

// TransactionFromDocument maps a record from transactions or orders.
func TransactionFromDocument(doc docstore.Document) Transaction {
	t := Transaction{
		ID:            doc.ID(),
		OrderID:       docstore.String(doc, "orderId", "orderID", "order_id"),
		CustomerID:    docstore.String(doc, "customerId", "buyerId", "userId", "customer.id"),
		CustomerName:  docstore.String(doc, "customerName", "buyerName", "customer.name"),
		CustomerEmail: docstore.String(doc, "customerEmail", "buyerEmail", "email", "customer.email"),
		SellerID:      docstore.String(doc, "sellerId", "storeOwnerId", "merchantId"),
		StoreID:       docstore.String(doc, "storeId"),
		Currency:      strings.ToUpper(docstore.String(doc, "currency")),
		Status:        docstore.String(doc, "status"),
		PaymentMethod: docstore.String(doc, "paymentMethod", "method", "paymentType"),
		Raw:           doc,
	}
	t.Amount, _ = docstore.Float(doc, "amount", "total", "totalAmount", "grandTotal")
	t.CreatedAt, _ = docstore.Time(doc, "createdAt", "timestamp", "date")
	t.Kind = KindOrder
	kind := strings.ToLower(docstore.String(doc, "type", "transactionType"))
	if strings.Contains(kind, "refund") || strings.EqualFold(t.Status, "refunded") {
		t.Kind = KindRefund
	}
	if t.Currency == "" {
		t.Currency = "GBP"
	}
	return t
}
