package receipts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/messaging"
	"github.com/localmart/localmart-backend-go/metrics"
	"github.com/localmart/localmart-backend-go/models"
	"github.com/localmart/localmart-backend-go/payments"
	"github.com/sirupsen/logrus"
)

var ErrForbidden = errors.New("transaction belongs to another seller")

// Mailer emails a receipt to the customer.
type Mailer interface {
	SendCustomReceipt(ctx context.Context, r payments.CustomReceipt) error
}

type Preview struct {
	Receipt Receipt `json:"receipt"`
	Text    string  `json:"text"`
}

type SendResult struct {
	Receipt    Receipt  `json:"receipt"`
	Text       string   `json:"text"`
	MessageID  string   `json:"messageId"`
	ReceiptIDs []string `json:"receiptIds"`
	Emailed    bool     `json:"emailed"`
}

type Service struct {
	finder   *Finder
	store    docstore.Store
	messages *messaging.Service
	recent   *Recent
	mailer   Mailer
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewService wires receipt dispatch. A nil mailer disables email copies.
func NewService(store docstore.Store, messages *messaging.Service, recent *Recent, mailer Mailer, log logrus.FieldLogger) *Service {
	return &Service{
		finder:   NewFinder(store, log),
		store:    store,
		messages: messages,
		recent:   recent,
		mailer:   mailer,
		log:      logger.Component(log, "receipts"),
		now:      time.Now,
	}
}

// assemble gathers the transaction, its items, the store and the delivery method.
func (s *Service) assemble(ctx context.Context, sellerID, txnID string) (Input, error) {
	txn, err := s.finder.LoadTransaction(ctx, txnID)
	if err != nil {
		return Input{}, err
	}
	if txn.SellerID != "" && txn.SellerID != sellerID {
		return Input{}, ErrForbidden
	}
	if txn.SellerID == "" {
		txn.SellerID = sellerID
	}
	items, source := s.finder.FindItems(ctx, txn)
	store := s.finder.ResolveStore(ctx, txn.SellerID, txn.StoreID)

	deliveryDocs := []map[string]any{txn.Raw}
	if txn.OrderID != "" && txn.OrderID != txn.ID {
		if order, err := s.store.Get(ctx, docstore.Orders, txn.OrderID); err == nil {
			deliveryDocs = append(deliveryDocs, order)
		}
	}
	return Input{
		Txn:            txn,
		Items:          items,
		ItemSource:     source,
		Store:          store,
		DeliveryMethod: DeliveryMethod(deliveryDocs...),
		IssuedAt:       s.now(),
	}, nil
}

func (s *Service) Preview(ctx context.Context, sellerID, txnID string) (Preview, error) {
	in, err := s.assemble(ctx, sellerID, txnID)
	if err != nil {
		return Preview{}, err
	}
	r, err := BuildReceipt(in)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Receipt: r, Text: Format(r)}, nil
}

// Send posts the receipt into the seller/customer conversation and stores a seller copy and
// a buyer copy in receipts.
func (s *Service) Send(ctx context.Context, sellerID, txnID string) (SendResult, error) {
	in, err := s.assemble(ctx, sellerID, txnID)
	if err != nil {
		return SendResult{}, err
	}
	r, err := BuildReceipt(in)
	if err != nil {
		return SendResult{}, err
	}
	text := Format(r)
	log := s.log.WithFields(logrus.Fields{"seller": sellerID, "txn": txnID, "receipt": r.Number})

	msgType := models.MessageTypeReceipt
	if r.Kind == models.KindRefund {
		msgType = models.MessageTypeRefundReceipt
	}
	msg, err := s.messages.Send(ctx, models.Message{
		SenderID:     sellerID,
		SenderName:   r.Store.Name,
		ReceiverID:   r.CustomerID,
		ReceiverName: r.CustomerName,
		Message:      text,
		Text:         text,
		MessageType:  msgType,
		ReceiptData:  map[string]any(r.Document(AudienceBuyer, "")),
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("send receipt message: %w", err)
	}
	res := SendResult{Receipt: r, Text: text, MessageID: msg.ID}

	for _, audience := range []Audience{AudienceSeller, AudienceBuyer} {
		id, err := s.store.Add(ctx, docstore.Receipts, r.Document(audience, text))
		if err != nil {
			return res, fmt.Errorf("store %s receipt: %w", audience, err)
		}
		res.ReceiptIDs = append(res.ReceiptIDs, id)
	}
	metrics.ReceiptsGenerated.WithLabelValues(string(r.Kind)).Inc()

	if _, err := s.recent.Add(ctx, sellerID, RecentEntry{
		ReceiptNumber: r.Number,
		TransactionID: r.TransactionID,
		Kind:          r.Kind,
		CustomerName:  r.CustomerName,
		Total:         r.Total,
		Currency:      r.Currency,
		GeneratedAt:   r.IssuedAt,
	}); err != nil {
		log.WithError(err).Warn("could not record recent receipt")
	}

	if s.mailer != nil && r.CustomerEmail != "" {
		err := s.mailer.SendCustomReceipt(ctx, payments.CustomReceipt{
			Email:         r.CustomerEmail,
			Subject:       fmt.Sprintf("Your receipt from %s (%s)", r.Store.Name, r.Number),
			ReceiptNumber: r.Number,
			Text:          text,
		})
		if err != nil {
			log.WithError(err).Warn("receipt email failed")
		} else {
			res.Emailed = true
		}
	}
	log.Info("receipt sent")
	return res, nil
}

func (s *Service) Recent(ctx context.Context, sellerID string) ([]RecentEntry, error) {
	return s.recent.List(ctx, sellerID)
}
