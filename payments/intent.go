package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"

	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/models"
)

var (
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrInvalidReceipt = errors.New("payment intent id and a valid email are required")
)

type IntentRequest struct {
	StoreID      string  `json:"storeId"`
	OrderID      string  `json:"orderId"`
	Amount       float64 `json:"amount"` // major units
	Currency     string  `json:"currency"`
	ReceiptEmail string  `json:"receiptEmail"`
}

// Intents creates card payment intents routed to the store's connected account.
type Intents struct {
	store     docstore.Store
	functions *FunctionsClient
}

func NewIntents(store docstore.Store, functions *FunctionsClient) *Intents {
	return &Intents{store: store, functions: functions}
}

// Create uses the receipt-sending function when a receipt email is given.
func (s *Intents) Create(ctx context.Context, buyerID string, req IntentRequest) (PaymentIntent, error) {
	if req.Amount <= 0 {
		return PaymentIntent{}, ErrInvalidAmount
	}
	pi := PaymentIntentRequest{
		Amount:       int64(math.Round(req.Amount * 100)),
		Currency:     req.Currency,
		ReceiptEmail: req.ReceiptEmail,
		Metadata: map[string]string{
			"buyerId": buyerID,
			"storeId": req.StoreID,
			"orderId": req.OrderID,
		},
	}
	if req.StoreID != "" {
		doc, err := s.store.Get(ctx, docstore.Stores, req.StoreID)
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return PaymentIntent{}, fmt.Errorf("load store: %w", err)
		}
		if err == nil {
			st := models.StoreFromDocument(doc)
			pi.ConnectedAccountID = st.StripeAccountID
			if pi.Currency == "" {
				pi.Currency = st.Currency
			}
		}
	}
	if req.ReceiptEmail != "" {
		return s.functions.CreatePaymentIntentWithReceipt(ctx, pi)
	}
	return s.functions.CreatePaymentIntent(ctx, pi)
}

// SendReceipt asks Stripe to email its own receipt for a payment intent.
func (s *Intents) SendReceipt(ctx context.Context, paymentIntentID, email string) error {
	paymentIntentID = strings.TrimSpace(paymentIntentID)
	email = strings.TrimSpace(email)
	if paymentIntentID == "" {
		return ErrInvalidReceipt
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return ErrInvalidReceipt
	}
	return s.functions.SendStripeReceipt(ctx, paymentIntentID, email)
}
