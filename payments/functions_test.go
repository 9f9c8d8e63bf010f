package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	path string
	body map[string]any
}

func recorder(calls *[]recordedCall, reply string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		*calls = append(*calls, recordedCall{path: r.URL.Path, body: body})
		w.Write([]byte(reply))
	}
}

func TestIntents_RoutesToConnectedAccount(t *testing.T) {
	var apiCalls, fnCalls []recordedCall
	api := httptest.NewServer(recorder(&apiCalls, `{"clientSecret":"pi_1_secret","paymentIntentId":"pi_1"}`))
	defer api.Close()
	fns := httptest.NewServer(recorder(&fnCalls, `{"client_secret":"pi_2_secret","id":"pi_2"}`))
	defer fns.Close()

	store := docstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, docstore.Stores, "shop-1", docstore.Document{"stripeAccountId": "acct_1", "currency": "GBP"}))
	intents := NewIntents(store, NewFunctionsClient(api.URL, fns.URL))

	pi, err := intents.Create(ctx, "buyer", IntentRequest{StoreID: "shop-1", Amount: 12.34})
	require.NoError(t, err)
	assert.Equal(t, PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, pi)
	require.Len(t, apiCalls, 1)
	assert.Equal(t, "/create-payment-intent", apiCalls[0].path)
	assert.Equal(t, float64(1234), apiCalls[0].body["amount"])
	assert.Equal(t, "gbp", apiCalls[0].body["currency"])
	assert.Equal(t, "acct_1", apiCalls[0].body["connectedAccountId"])

	pi, err = intents.Create(ctx, "buyer", IntentRequest{StoreID: "shop-1", Amount: 5, Currency: "GBP", ReceiptEmail: "b@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "pi_2", pi.ID)
	require.Len(t, fnCalls, 1)
	assert.Equal(t, "/createPaymentIntentWithReceipt", fnCalls[0].path)

	_, err = intents.Create(ctx, "buyer", IntentRequest{Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFunctionsClient_Disabled(t *testing.T) {
	c := NewFunctionsClient("http://unused.invalid", "")
	assert.ErrorIs(t, c.SendStripeReceipt(context.Background(), "pi_1", "a@b.c"), ErrFunctionsDisabled)
	assert.ErrorIs(t, c.SendCustomReceipt(context.Background(), CustomReceipt{}), ErrFunctionsDisabled)
}

func TestFunctionsClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":{"message":"mail provider down"}}`))
	}))
	defer srv.Close()

	c := NewFunctionsClient(srv.URL, srv.URL)
	err := c.SendStripeReceipt(context.Background(), "pi_1", "a@b.c")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "mail provider down", apiErr.Message)
}

func TestIntents_SendReceipt(t *testing.T) {
	var fnCalls []recordedCall
	fns := httptest.NewServer(recorder(&fnCalls, `{"success":true}`))
	defer fns.Close()
	intents := NewIntents(docstore.NewMemoryStore(), NewFunctionsClient("http://unused.invalid", fns.URL))
	ctx := context.Background()

	require.NoError(t, intents.SendReceipt(ctx, "pi_7", "ada@example.com"))
	require.Len(t, fnCalls, 1)
	assert.Equal(t, "/sendStripeReceipt", fnCalls[0].path)
	assert.Equal(t, "pi_7", fnCalls[0].body["paymentIntentId"])
	assert.Equal(t, "ada@example.com", fnCalls[0].body["email"])

	assert.ErrorIs(t, intents.SendReceipt(ctx, "", "ada@example.com"), ErrInvalidReceipt)
	assert.ErrorIs(t, intents.SendReceipt(ctx, "pi_7", "Ada <ada@example.com>"), ErrInvalidReceipt)
	assert.Len(t, fnCalls, 1)
}
