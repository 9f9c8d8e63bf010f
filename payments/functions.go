package payments

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var ErrFunctionsDisabled = errors.New("cloud functions url is not configured")

type PaymentIntentRequest struct {
	Amount             int64             `json:"amount"`
	Currency           string            `json:"currency"`
	ConnectedAccountID string            `json:"connectedAccountId,omitempty"`
	ReceiptEmail       string            `json:"receiptEmail,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
}

type CustomReceipt struct {
	Email         string `json:"email"`
	Subject       string `json:"subject"`
	ReceiptNumber string `json:"receiptNumber"`
	Text          string `json:"text"`
}

// FunctionsClient calls /create-payment-intent on the companion backend and the payment
// Cloud Functions.
type FunctionsClient struct {
	api       jsonClient
	functions jsonClient
	enabled   bool
}

func NewFunctionsClient(apiBaseURL, functionsURL string) *FunctionsClient {
	return &FunctionsClient{
		api:       newJSONClient(apiBaseURL),
		functions: newJSONClient(functionsURL),
		enabled:   functionsURL != "",
	}
}

func (c *FunctionsClient) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (PaymentIntent, error) {
	req.Currency = strings.ToLower(req.Currency)
	res, err := c.api.do(ctx, http.MethodPost, "/create-payment-intent", req)
	if err != nil {
		return PaymentIntent{}, err
	}
	return PaymentIntent{
		ID:           firstString(res, "paymentIntentId", "id"),
		ClientSecret: firstString(res, "clientSecret", "client_secret"),
	}, nil
}

func (c *FunctionsClient) CreatePaymentIntentWithReceipt(ctx context.Context, req PaymentIntentRequest) (PaymentIntent, error) {
	if !c.enabled {
		return PaymentIntent{}, ErrFunctionsDisabled
	}
	req.Currency = strings.ToLower(req.Currency)
	res, err := c.functions.do(ctx, http.MethodPost, "/createPaymentIntentWithReceipt", req)
	if err != nil {
		return PaymentIntent{}, err
	}
	return PaymentIntent{
		ID:           firstString(res, "paymentIntentId", "id"),
		ClientSecret: firstString(res, "clientSecret", "client_secret"),
	}, nil
}

func (c *FunctionsClient) SendStripeReceipt(ctx context.Context, paymentIntentID, email string) error {
	if !c.enabled {
		return ErrFunctionsDisabled
	}
	_, err := c.functions.do(ctx, http.MethodPost, "/sendStripeReceipt", map[string]string{
		"paymentIntentId": paymentIntentID,
		"email":           email,
	})
	return err
}

func (c *FunctionsClient) SendCustomReceipt(ctx context.Context, r CustomReceipt) error {
	if !c.enabled {
		return ErrFunctionsDisabled
	}
	_, err := c.functions.do(ctx, http.MethodPost, "/sendCustomReceipt", r)
	return err
}
