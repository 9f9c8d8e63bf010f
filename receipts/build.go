package receipts

import (
	"errors"
	"strings"
	"time"

	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/fees"
	"github.com/localmart/localmart-backend-go/models"
)

var ErrMissingCustomer = errors.New("transaction has no customer id")

const NotSpecified = "Not specified"

// Input is everything gathered for one receipt.
type Input struct {
	Txn            models.Transaction
	Items          []models.OrderItem
	ItemSource     Source
	Store          StoreInfo
	DeliveryMethod string
	IssuedAt       time.Time
}

type Receipt struct {
	Number          string                 `json:"receiptNumber"`
	Kind            models.TransactionKind `json:"kind"`
	TransactionID   string                 `json:"transactionId"`
	OrderID         string                 `json:"orderId,omitempty"`
	CustomerID      string                 `json:"customerId"`
	CustomerName    string                 `json:"customerName"`
	CustomerEmail   string                 `json:"customerEmail,omitempty"`
	SellerID        string                 `json:"sellerId,omitempty"`
	Store           StoreInfo              `json:"store"`
	Items           []models.OrderItem     `json:"items"`
	ItemSource      Source                 `json:"itemSource,omitempty"`
	Currency        string                 `json:"currency"`
	Subtotal        float64                `json:"subtotal"`
	DeliveryFee     float64                `json:"deliveryFee"`
	ServiceFee      float64                `json:"serviceFee"`
	Total           float64                `json:"total"`
	PaymentMethod   string                 `json:"paymentMethod"`
	DeliveryMethod  string                 `json:"deliveryMethod"`
	Status          string                 `json:"status"`
	Reason          string                 `json:"reason,omitempty"`
	TransactionDate time.Time              `json:"transactionDate"`
	IssuedAt        time.Time              `json:"issuedAt"`
}

// Number derives a stable receipt number from the transaction id.
func Number(kind models.TransactionKind, txnID string) string {
	prefix := "RCP-"
	if kind == models.KindRefund {
		prefix = "RFD-"
	}
	id := strings.ToUpper(strings.ReplaceAll(txnID, "-", ""))
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return prefix + id
}

// BuildReceipt assembles a receipt. Only a missing customer id is an error; every other gap
// degrades to an empty value or "Not specified".
func BuildReceipt(in Input) (Receipt, error) {
	txn := in.Txn
	if txn.CustomerID == "" {
		return Receipt{}, ErrMissingCustomer
	}
	r := Receipt{
		Number:          Number(txn.Kind, txn.ID),
		Kind:            txn.Kind,
		TransactionID:   txn.ID,
		OrderID:         txn.OrderID,
		CustomerID:      txn.CustomerID,
		CustomerName:    orDefault(txn.CustomerName, "Customer"),
		CustomerEmail:   txn.CustomerEmail,
		SellerID:        txn.SellerID,
		Store:           in.Store,
		Items:           in.Items,
		ItemSource:      in.ItemSource,
		Currency:        orDefault(txn.Currency, "GBP"),
		PaymentMethod:   orDefault(txn.PaymentMethod, NotSpecified),
		DeliveryMethod:  orDefault(in.DeliveryMethod, NotSpecified),
		Status:          orDefault(txn.Status, "completed"),
		Reason:          docstore.String(txn.Raw, "reason", "refundReason"),
		TransactionDate: txn.CreatedAt,
		IssuedAt:        in.IssuedAt.UTC(),
	}
	if r.Items == nil {
		r.Items = []models.OrderItem{}
	}
	if r.Store.Name == "" {
		r.Store.Name = orDefault(docstore.String(txn.Raw, "storeName", "sellerName"), "Store")
	}
	if r.Store.ID == "" {
		r.Store.ID = txn.StoreID
	}

	for _, it := range r.Items {
		r.Subtotal += it.Price * float64(it.Quantity)
	}
	r.Subtotal = fees.Round(r.Subtotal)
	r.DeliveryFee, _ = docstore.Float(txn.Raw, "deliveryFee", "fees.delivery", "orderData.deliveryFee")
	r.ServiceFee, _ = docstore.Float(txn.Raw, "serviceFee", "fees.service", "orderData.serviceFee")

	if refund, ok := docstore.Float(txn.Raw, "refundAmount", "amountRefunded"); ok && txn.Kind == models.KindRefund {
		r.Total = refund
	} else if txn.Amount > 0 {
		r.Total = txn.Amount
	} else {
		r.Total = r.Subtotal + r.DeliveryFee + r.ServiceFee
	}
	r.Total = fees.Round(r.Total)
	if r.Subtotal == 0 && len(r.Items) == 0 {
		r.Subtotal = fees.Round(r.Total - r.DeliveryFee - r.ServiceFee)
	}
	return r, nil
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// Audience selects which side of the transaction a stored receipt belongs to.
type Audience string

const (
	AudienceSeller Audience = "seller"
	AudienceBuyer  Audience = "buyer"
)

// Document is the stored form of the receipt for one audience.
func (r Receipt) Document(audience Audience, text string) docstore.Document {
	items := make([]any, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, it.Document())
	}
	ownerID := r.SellerID
	if audience == AudienceBuyer {
		ownerID = r.CustomerID
	}
	return docstore.Document{
		"receiptNumber":   r.Number,
		"type":            string(r.Kind),
		"audience":        string(audience),
		"userId":          ownerID,
		"transactionId":   r.TransactionID,
		"orderId":         r.OrderID,
		"customerId":      r.CustomerID,
		"customerName":    r.CustomerName,
		"customerEmail":   r.CustomerEmail,
		"sellerId":        r.SellerID,
		"storeId":         r.Store.ID,
		"storeName":       r.Store.Name,
		"storePhone":      r.Store.Phone,
		"storeAddress":    r.Store.Address,
		"items":           items,
		"currency":        r.Currency,
		"subtotal":        r.Subtotal,
		"deliveryFee":     r.DeliveryFee,
		"serviceFee":      r.ServiceFee,
		"total":           r.Total,
		"paymentMethod":   r.PaymentMethod,
		"deliveryMethod":  r.DeliveryMethod,
		"status":          r.Status,
		"transactionDate": r.TransactionDate,
		"createdAt":       r.IssuedAt,
		"text":            text,
	}
}
