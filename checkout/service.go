package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localmart/localmart-backend-go/cart"
	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/fees"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/messaging"
	"github.com/localmart/localmart-backend-go/metrics"
	"github.com/localmart/localmart-backend-go/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyCart                = errors.New("cart is empty")
	ErrDeliveryLocationRequired = errors.New("a saved delivery location is required for delivery orders")
	ErrUnknownSeller            = errors.New("store has no seller to receive the order")
)

// GroupQuote is a store group with its fees applied.
type GroupQuote struct {
	StoreGroup
	SellerID string         `json:"sellerId"`
	Fees     fees.Breakdown `json:"fees"`
}

type Quote struct {
	Groups []GroupQuote       `json:"groups"`
	Totals map[string]float64 `json:"totals"`
}

// SubmitResult reports the orders sent. Sent can be lower than the number of groups when
// a send failed part way.
type SubmitResult struct {
	SubmissionID string         `json:"submissionId"`
	Orders       []models.Order `json:"orders"`
	Sent         int            `json:"sent"`
	Groups       int            `json:"groups"`
}

type Service struct {
	store    docstore.Store
	carts    *cart.Store
	messages *messaging.Service
	log      logrus.FieldLogger
	now      func() time.Time
	newID    func() string
}

func NewService(store docstore.Store, carts *cart.Store, messages *messaging.Service, log logrus.FieldLogger) *Service {
	return &Service{
		store:    store,
		carts:    carts,
		messages: messages,
		log:      logger.Component(log, "checkout"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Quote prices every store group of the user's cart. Store fee settings are fetched
// concurrently; a store that no longer exists is quoted without fees.
func (s *Service) Quote(ctx context.Context, userID string) (Quote, error) {
	items, err := s.carts.Load(ctx, userID)
	if err != nil {
		return Quote{}, err
	}
	groups := Group(items)
	quotes := make([]GroupQuote, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	for i := range groups {
		i := i
		g.Go(func() error {
			q := GroupQuote{StoreGroup: groups[i]}
			var settings fees.Settings
			doc, err := s.store.Get(gctx, docstore.Stores, groups[i].StoreID)
			switch {
			case errors.Is(err, docstore.ErrNotFound):
				s.log.WithField("store", groups[i].StoreID).Warn("store not found, quoting without fees")
				settings = fees.ParseSettings(nil)
			case err != nil:
				return fmt.Errorf("load store %s: %w", groups[i].StoreID, err)
			default:
				st := models.StoreFromDocument(doc)
				q.SellerID = st.OwnerID
				if q.StoreName == "" {
					q.StoreName = st.Name
				}
				settings = fees.ParseSettings(st.FeeSettings)
			}
			q.Fees = fees.Compute(settings, groups[i].Subtotal, groups[i].DeliveryType())
			quotes[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Quote{}, err
	}

	totals := make(map[string]float64)
	for _, q := range quotes {
		totals[q.Currency] = fees.Round(totals[q.Currency] + q.Fees.Total)
	}
	return Quote{Groups: quotes, Totals: totals}, nil
}

// Submit sends one order request per store group, one after another. Each request carries
// the submission id and its sequence number so sellers can order them without relying on
// timestamps. Sent groups are removed from the cart; the first failure stops the run.
func (s *Service) Submit(ctx context.Context, userID, note string) (SubmitResult, error) {
	quote, err := s.Quote(ctx, userID)
	if err != nil {
		return SubmitResult{}, err
	}
	if len(quote.Groups) == 0 {
		return SubmitResult{}, ErrEmptyCart
	}

	buyer, err := s.loadBuyer(ctx, userID)
	if err != nil {
		return SubmitResult{}, err
	}
	for _, g := range quote.Groups {
		if g.NeedsDelivery && buyer.DeliveryLocation == nil {
			return SubmitResult{}, ErrDeliveryLocationRequired
		}
	}

	res := SubmitResult{SubmissionID: s.newID(), Groups: len(quote.Groups)}
	log := s.log.WithFields(logrus.Fields{"user": userID, "submission": res.SubmissionID})
	for i, g := range quote.Groups {
		order, err := s.sendOrder(ctx, buyer, g, res.SubmissionID, i+1, note)
		if err != nil {
			metrics.OrderRequests.WithLabelValues("failed").Inc()
			log.WithError(err).WithField("store", g.StoreID).Error("order request failed")
			return res, fmt.Errorf("order for store %s: %w", g.StoreID, err)
		}
		metrics.OrderRequests.WithLabelValues("sent").Inc()
		res.Orders = append(res.Orders, order)
		res.Sent++

		for _, it := range g.Items {
			if _, err := s.carts.Remove(ctx, userID, it.ItemID, it.StoreID); err != nil {
				log.WithError(err).Warn("could not remove ordered item from cart")
			}
		}
	}
	log.WithField("orders", res.Sent).Info("order requests sent")
	return res, nil
}

func (s *Service) loadBuyer(ctx context.Context, userID string) (models.User, error) {
	doc, err := s.store.Get(ctx, docstore.Users, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.User{ID: userID}, nil
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load buyer: %w", err)
	}
	return models.UserFromDocument(doc), nil
}

func (s *Service) sendOrder(ctx context.Context, buyer models.User, g GroupQuote, submissionID string, seq int, note string) (models.Order, error) {
	if g.SellerID == "" {
		return models.Order{}, ErrUnknownSeller
	}
	order := models.Order{
		OrderID:      s.newID(),
		SubmissionID: submissionID,
		Sequence:     seq,
		BuyerID:      buyer.ID,
		SellerID:     g.SellerID,
		StoreID:      g.StoreID,
		StoreName:    g.StoreName,
		Currency:     g.Currency,
		DeliveryType: g.DeliveryType(),
		Subtotal:     g.Fees.Subtotal,
		DeliveryFee:  g.Fees.DeliveryFee,
		ServiceFee:   g.Fees.ServiceFee,
		Total:        g.Fees.Total,
		Note:         note,
		Status:       models.OrderStatusRequested,
		CreatedAt:    s.now().UTC(),
	}
	for _, it := range g.Items {
		order.Items = append(order.Items, models.OrderItem{
			ItemID:   it.ItemID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}

	// The order is recorded before the seller is told, so a delivered request always has
	// an order behind it.
	id, err := s.store.Add(ctx, docstore.Orders, order.Document())
	if err != nil {
		return models.Order{}, fmt.Errorf("record order: %w", err)
	}
	order.ID = id

	orderData := order.Document()
	if g.NeedsDelivery && buyer.DeliveryLocation != nil {
		orderData["deliveryLocation"] = buyer.DeliveryLocation.Document()
	}
	if _, err := s.messages.Send(ctx, models.Message{
		SenderID:    buyer.ID,
		SenderName:  buyer.Name,
		ReceiverID:  g.SellerID,
		Message:     orderText(buyer, order),
		MessageType: models.MessageTypeOrderRequest,
		Timestamp:   order.CreatedAt,
		OrderData:   orderData,
	}); err != nil {
		if delErr := s.store.Delete(ctx, docstore.Orders, id); delErr != nil {
			s.log.WithError(delErr).WithField("order", id).Error("could not remove unsent order")
		}
		return models.Order{}, err
	}
	return order, nil
}

func orderText(buyer models.User, o models.Order) string {
	var b strings.Builder
	name := buyer.Name
	if name == "" {
		name = "A customer"
	}
	fmt.Fprintf(&b, "New order request from %s\n", name)
	fmt.Fprintf(&b, "Order: %s (%d)\n\n", o.OrderID, o.Sequence)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "%d x %s @ %s\n", it.Quantity, it.Name, fees.FormatMoney(it.Price, o.Currency))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", fees.FormatMoney(o.Subtotal, o.Currency))
	if o.DeliveryType == models.DeliveryTypeDelivery {
		fmt.Fprintf(&b, "Delivery fee: %s\n", fees.FormatMoney(o.DeliveryFee, o.Currency))
	} else {
		b.WriteString("Collection\n")
	}
	if o.ServiceFee > 0 {
		fmt.Fprintf(&b, "Service fee: %s\n", fees.FormatMoney(o.ServiceFee, o.Currency))
	}
	fmt.Fprintf(&b, "Total: %s", fees.FormatMoney(o.Total, o.Currency))
	if o.Note != "" {
		fmt.Fprintf(&b, "\n\nNote: %s", o.Note)
	}
	return b.String()
}
