// Package reports summarizes a seller's transactions.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/fees"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/models"
	"github.com/sirupsen/logrus"
)

// CurrencySummary aggregates one currency. Net is Gross minus Refunds.
type CurrencySummary struct {
	Currency string  `json:"currency"`
	Orders   int     `json:"orders"`
	Refunds  int     `json:"refunds"`
	Gross    float64 `json:"gross"`
	Refunded float64 `json:"refunded"`
	Net      float64 `json:"net"`
}

type Summary struct {
	SellerID   string            `json:"sellerId"`
	From       time.Time         `json:"from"`
	To         time.Time         `json:"to"`
	Currencies []CurrencySummary `json:"currencies"`
}

type Service struct {
	store docstore.Store
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewService(store docstore.Store, log logrus.FieldLogger) *Service {
	return &Service{store: store, log: logger.Component(log, "reports"), now: time.Now}
}

// Transactions returns the seller's transactions, newest first.
func (s *Service) Transactions(ctx context.Context, sellerID string) ([]models.Transaction, error) {
	docs, err := s.store.Find(ctx, docstore.Query{
		Collection: docstore.Transactions,
		Filters:    []docstore.Filter{docstore.Where("sellerId", sellerID)},
		OrderBy:    "createdAt",
		Desc:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	txns := make([]models.Transaction, 0, len(docs))
	for _, d := range docs {
		txns = append(txns, models.TransactionFromDocument(d))
	}
	return txns, nil
}

// Summarize aggregates txns created in [from, to). A zero bound is open.
func Summarize(sellerID string, txns []models.Transaction, from, to time.Time) Summary {
	byCurrency := map[string]*CurrencySummary{}
	for _, t := range txns {
		if !from.IsZero() && t.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !t.CreatedAt.Before(to) {
			continue
		}
		cs, ok := byCurrency[t.Currency]
		if !ok {
			cs = &CurrencySummary{Currency: t.Currency}
			byCurrency[t.Currency] = cs
		}
		if t.Kind == models.KindRefund {
			cs.Refunds++
			cs.Refunded += t.Amount
		} else {
			cs.Orders++
			cs.Gross += t.Amount
		}
	}

	sum := Summary{SellerID: sellerID, From: from, To: to, Currencies: []CurrencySummary{}}
	for _, cs := range byCurrency {
		cs.Gross = fees.Round(cs.Gross)
		cs.Refunded = fees.Round(cs.Refunded)
		cs.Net = fees.Round(cs.Gross - cs.Refunded)
		sum.Currencies = append(sum.Currencies, *cs)
	}
	sort.Slice(sum.Currencies, func(i, j int) bool { return sum.Currencies[i].Currency < sum.Currencies[j].Currency })
	return sum
}

func (s *Service) Summary(ctx context.Context, sellerID string, from, to time.Time) (Summary, error) {
	txns, err := s.Transactions(ctx, sellerID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(sellerID, txns, from, to), nil
}

// Save stores the summary in reports and returns its id.
func (s *Service) Save(ctx context.Context, sellerID string, from, to time.Time) (string, Summary, error) {
	sum, err := s.Summary(ctx, sellerID, from, to)
	if err != nil {
		return "", Summary{}, err
	}
	currencies := make([]any, 0, len(sum.Currencies))
	for _, c := range sum.Currencies {
		currencies = append(currencies, map[string]any{
			"currency": c.Currency,
			"orders":   c.Orders,
			"refunds":  c.Refunds,
			"gross":    c.Gross,
			"refunded": c.Refunded,
			"net":      c.Net,
		})
	}
	doc := docstore.Document{
		"sellerId":   sellerID,
		"currencies": currencies,
		"createdAt":  s.now().UTC(),
	}
	if !from.IsZero() {
		doc["from"] = from
	}
	if !to.IsZero() {
		doc["to"] = to
	}
	id, err := s.store.Add(ctx, docstore.Reports, doc)
	if err != nil {
		return "", Summary{}, fmt.Errorf("save report: %w", err)
	}
	s.log.WithFields(logrus.Fields{"seller": sellerID, "report": id}).Info("report saved")
	return id, sum, nil
}
