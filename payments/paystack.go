package payments

import (
	"context"
	"errors"
)

var ErrPaystackUnavailable = errors.New("paystack payments are not available yet")

type PaystackInitRequest struct {
	Email    string `json:"email"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type PaystackSession struct {
	AuthorizationURL string `json:"authorizationUrl"`
	Reference        string `json:"reference"`
}

// Paystack is a placeholder for the Paystack integration.
type Paystack struct{}

func (Paystack) Initialize(ctx context.Context, req PaystackInitRequest) (PaystackSession, error) {
	return PaystackSession{}, ErrPaystackUnavailable
}

func (Paystack) Verify(ctx context.Context, reference string) error {
	return ErrPaystackUnavailable
}
