package receipts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/kvstore"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/messaging"
	"github.com/localmart/localmart-backend-go/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []payments.CustomReceipt
	err  error
}

func (m *fakeMailer) SendCustomReceipt(ctx context.Context, r payments.CustomReceipt) error {
	m.sent = append(m.sent, r)
	return m.err
}

func newServiceFixture(t *testing.T, mailer Mailer) (*Service, *docstore.MemoryStore) {
	t.Helper()
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, docstore.Transactions, "txn-0001", docstore.Document{
		"orderId":       "ord-1",
		"customerId":    "buyer",
		"customerName":  "Ada",
		"customerEmail": "ada@example.com",
		"sellerId":      "seller",
		"storeId":       "shop-1",
		"amount":        11,
		"currency":      "gbp",
		"paymentMethod": "card",
		"createdAt":     "2024-05-30T12:00:00Z",
	}))
	require.NoError(t, store.Set(ctx, docstore.Orders, "ord-1", docstore.Document{
		"deliveryType": "delivery",
		"items":        []any{map[string]any{"name": "Sourdough", "price": 4.5, "quantity": 2}},
	}))
	require.NoError(t, store.Set(ctx, docstore.Stores, "shop-1", docstore.Document{
		"storeName": "Corner Bakery", "phone": "0800 123", "address": "1 Bread St",
	}))
	require.NoError(t, store.Set(ctx, docstore.Transactions, "txn-nocust", docstore.Document{"sellerId": "seller", "amount": 1}))

	recent := NewRecent(kvstore.NewMemoryStore())
	recent.now = func() time.Time { return issued }
	svc := NewService(store, messaging.NewService(store, logger.Discard()), recent, mailer, logger.Discard())
	svc.now = func() time.Time { return issued }
	return svc, store
}

func TestPreviewAndSendShareTheBuilder(t *testing.T) {
	svc, _ := newServiceFixture(t, nil)
	ctx := context.Background()

	preview, err := svc.Preview(ctx, "seller", "txn-0001")
	require.NoError(t, err)
	sent, err := svc.Send(ctx, "seller", "txn-0001")
	require.NoError(t, err)

	assert.Equal(t, preview.Receipt, sent.Receipt)
	assert.Equal(t, preview.Text, sent.Text)
	assert.Equal(t, SourceOrders, preview.Receipt.ItemSource)
	assert.Equal(t, "Delivery", preview.Receipt.DeliveryMethod)
	assert.Equal(t, "Corner Bakery", preview.Receipt.Store.Name)
	assert.Equal(t, 9.0, preview.Receipt.Subtotal)
	assert.Equal(t, 11.0, preview.Receipt.Total)
	assert.Contains(t, preview.Text, "2 x Sourdough  £9.00")
}

func TestSend_WritesMessageAndTwoReceipts(t *testing.T) {
	mailer := &fakeMailer{}
	svc, store := newServiceFixture(t, mailer)
	ctx := context.Background()

	res, err := svc.Send(ctx, "seller", "txn-0001")
	require.NoError(t, err)
	assert.True(t, res.Emailed)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ada@example.com", mailer.sent[0].Email)

	msg, err := store.Get(ctx, docstore.Messages, res.MessageID)
	require.NoError(t, err)
	assert.Equal(t, "receipt", msg["messageType"])
	assert.Equal(t, "buyer", msg["receiverId"])
	assert.Equal(t, res.Text, msg["text"])
	assert.Equal(t, res.Text, msg["message"])

	docs, err := store.Find(ctx, docstore.Query{Collection: docstore.Receipts, OrderBy: "audience"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "buyer", docs[0]["audience"])
	assert.Equal(t, "buyer", docs[0]["userId"])
	assert.Equal(t, "seller", docs[1]["audience"])
	assert.Equal(t, "seller", docs[1]["userId"])
	assert.Equal(t, "RCP-TXN0001", docs[1]["receiptNumber"])

	recent, err := svc.Recent(ctx, "seller")
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "txn-0001", recent[0].TransactionID)
}

func TestSend_EmailFailureIsNotFatal(t *testing.T) {
	svc, _ := newServiceFixture(t, &fakeMailer{err: errors.New("smtp down")})
	res, err := svc.Send(context.Background(), "seller", "txn-0001")
	require.NoError(t, err)
	assert.False(t, res.Emailed)
}

func TestSend_Errors(t *testing.T) {
	svc, store := newServiceFixture(t, nil)
	ctx := context.Background()

	_, err := svc.Send(ctx, "seller", "txn-nocust")
	assert.ErrorIs(t, err, ErrMissingCustomer)

	_, err = svc.Send(ctx, "someone-else", "txn-0001")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Preview(ctx, "seller", "nope")
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	msgs, err := store.Find(ctx, docstore.Query{Collection: docstore.Messages})
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
