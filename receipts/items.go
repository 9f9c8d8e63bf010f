// Package receipts regenerates order and refund receipts for sellers. Order data is spread
// over several collections with inconsistent field names, so items and store details are
// located best-effort before a single builder assembles the receipt.
package receipts

import (
	"context"
	"errors"
	"fmt"

	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/models"
	"github.com/sirupsen/logrus"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// Source names the collection the receipt items were found in.
type Source string

const (
	SourceTransactions Source = docstore.Transactions
	SourcePayments     Source = docstore.Payments
	SourceMessages     Source = docstore.Messages
	SourceOrders       Source = docstore.Orders
	SourceOrderStates  Source = docstore.OrderStates
	SourceNone         Source = ""
)

// itemKeys are the places an item list has been stored under.
var itemKeys = []string{"items", "orderData.items", "cartItems", "products", "metadata.items", "order.items"}

// Finder locates transactions and their items.
type Finder struct {
	store docstore.Store
	log   logrus.FieldLogger
}

func NewFinder(store docstore.Store, log logrus.FieldLogger) *Finder {
	return &Finder{store: store, log: logger.Component(log, "receipts")}
}

// LoadTransaction reads id from transactions, falling back to orders.
func (f *Finder) LoadTransaction(ctx context.Context, id string) (models.Transaction, error) {
	for _, coll := range []string{docstore.Transactions, docstore.Orders} {
		doc, err := f.store.Get(ctx, coll, id)
		if errors.Is(err, docstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return models.Transaction{}, fmt.Errorf("load %s/%s: %w", coll, id, err)
		}
		txn := models.TransactionFromDocument(doc)
		txn.Collection = coll
		if txn.OrderID == "" && coll == docstore.Orders {
			txn.OrderID = id
		}
		return txn, nil
	}
	return models.Transaction{}, ErrTransactionNotFound
}

type itemSource struct {
	name Source
	find func(ctx context.Context, txn models.Transaction) ([]any, error)
}

// FindItems tries transactions, payments, messages, orders and orderStates in that order and
// returns the first non-empty item list. A failing source is logged and skipped.
func (f *Finder) FindItems(ctx context.Context, txn models.Transaction) ([]models.OrderItem, Source) {
	sources := []itemSource{
		{SourceTransactions, f.fromTransactions},
		{SourcePayments, f.fromPayments},
		{SourceMessages, f.fromMessages},
		{SourceOrders, f.fromOrders},
		{SourceOrderStates, f.fromOrderStates},
	}
	for _, src := range sources {
		raw, err := src.find(ctx, txn)
		if err != nil {
			f.log.WithError(err).WithFields(logrus.Fields{"txn": txn.ID, "source": src.name}).Warn("item source failed")
			continue
		}
		if items := models.OrderItemsFrom(raw); len(items) > 0 {
			return items, src.name
		}
	}
	return []models.OrderItem{}, SourceNone
}

func orderKey(txn models.Transaction) string {
	if txn.OrderID != "" {
		return txn.OrderID
	}
	return txn.ID
}

func (f *Finder) fromTransactions(ctx context.Context, txn models.Transaction) ([]any, error) {
	if txn.Collection == docstore.Transactions {
		if items := docstore.Slice(txn.Raw, itemKeys...); len(items) > 0 {
			return items, nil
		}
	}
	if txn.OrderID == "" {
		return nil, nil
	}
	return f.firstItems(ctx, docstore.Query{
		Collection: docstore.Transactions,
		Filters:    []docstore.Filter{docstore.Where("orderId", txn.OrderID)},
	})
}

func (f *Finder) fromPayments(ctx context.Context, txn models.Transaction) ([]any, error) {
	if items, err := f.firstItems(ctx, docstore.Query{
		Collection: docstore.Payments,
		Filters:    []docstore.Filter{docstore.Where("orderId", orderKey(txn))},
	}); err != nil || len(items) > 0 {
		return items, err
	}
	return f.firstItems(ctx, docstore.Query{
		Collection: docstore.Payments,
		Filters:    []docstore.Filter{docstore.Where("transactionId", txn.ID)},
	})
}

func (f *Finder) fromMessages(ctx context.Context, txn models.Transaction) ([]any, error) {
	return f.firstItems(ctx, docstore.Query{
		Collection: docstore.Messages,
		Filters: []docstore.Filter{
			docstore.Where("messageType", string(models.MessageTypeOrderRequest)),
			docstore.Where("orderData.orderId", orderKey(txn)),
		},
	})
}

func (f *Finder) fromOrders(ctx context.Context, txn models.Transaction) ([]any, error) {
	return f.byIDOrOrderID(ctx, docstore.Orders, orderKey(txn))
}

func (f *Finder) fromOrderStates(ctx context.Context, txn models.Transaction) ([]any, error) {
	return f.byIDOrOrderID(ctx, docstore.OrderStates, orderKey(txn))
}

func (f *Finder) byIDOrOrderID(ctx context.Context, collection, key string) ([]any, error) {
	doc, err := f.store.Get(ctx, collection, key)
	switch {
	case err == nil:
		if items := docstore.Slice(doc, itemKeys...); len(items) > 0 {
			return items, nil
		}
	case !errors.Is(err, docstore.ErrNotFound):
		return nil, err
	}
	return f.firstItems(ctx, docstore.Query{
		Collection: collection,
		Filters:    []docstore.Filter{docstore.Where("orderId", key)},
	})
}

// firstItems returns the item list of the first matching document that has one.
func (f *Finder) firstItems(ctx context.Context, q docstore.Query) ([]any, error) {
	docs, err := f.store.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if items := docstore.Slice(d, itemKeys...); len(items) > 0 {
			return items, nil
		}
	}
	return nil, nil
}
