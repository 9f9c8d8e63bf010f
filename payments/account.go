package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/models"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoAccount      = errors.New("no stripe account connected")
	ErrAccountDeleted = errors.New("stripe account was deleted; connect a new one")
	ErrInvalidPayout  = errors.New("payout amount must be positive")
	ErrUserNotFound   = errors.New("user not found")
)

// ConnectService manages a seller's Stripe Connect account and keeps the account id on the
// seller's user and store documents.
type ConnectService struct {
	store  docstore.Store
	client *ConnectClient
	log    logrus.FieldLogger
}

func NewConnectService(store docstore.Store, client *ConnectClient, log logrus.FieldLogger) *ConnectService {
	return &ConnectService{store: store, client: client, log: logger.Component(log, "stripe")}
}

// CreateAccount returns the seller's existing account id or creates a new account.
func (s *ConnectService) CreateAccount(ctx context.Context, userID, country string) (string, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.StripeAccountID != "" {
		return user.StripeAccountID, nil
	}
	if country == "" {
		country = user.Country
	}
	id, err := s.client.CreateAccount(ctx, CreateAccountRequest{UserID: userID, Email: user.Email, Country: NormalizeCountry(country)})
	if err != nil {
		return "", fmt.Errorf("create stripe account: %w", err)
	}
	if err := s.setReference(ctx, user, id); err != nil {
		return "", err
	}
	s.log.WithFields(logrus.Fields{"user": userID, "account": id}).Info("stripe account connected")
	return id, nil
}

func (s *ConnectService) AccountLink(ctx context.Context, userID, refreshURL, returnURL string) (string, error) {
	user, id, err := s.account(ctx, userID)
	if err != nil {
		return "", err
	}
	link, err := s.client.CreateAccountLink(ctx, id, refreshURL, returnURL)
	return link, s.check(ctx, user, err)
}

func (s *ConnectService) Status(ctx context.Context, userID string) (AccountStatus, error) {
	user, id, err := s.account(ctx, userID)
	if err != nil {
		return AccountStatus{}, err
	}
	st, err := s.client.AccountStatus(ctx, id)
	return st, s.check(ctx, user, err)
}

func (s *ConnectService) Balance(ctx context.Context, userID string) (Balance, error) {
	user, id, err := s.account(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	bal, err := s.client.Balance(ctx, id)
	return bal, s.check(ctx, user, err)
}

// Payout triggers a manual payout. No idempotency key is sent; a repeated call pays twice.
func (s *ConnectService) Payout(ctx context.Context, userID string, amount int64, currency string) (Payout, error) {
	if amount <= 0 {
		return Payout{}, ErrInvalidPayout
	}
	user, id, err := s.account(ctx, userID)
	if err != nil {
		return Payout{}, err
	}
	p, err := s.client.Payout(ctx, id, amount, currency)
	if err := s.check(ctx, user, err); err != nil {
		return Payout{}, err
	}
	s.log.WithFields(logrus.Fields{"user": userID, "payout": p.ID, "amount": amount}).Info("payout requested")
	return p, nil
}

func (s *ConnectService) user(ctx context.Context, userID string) (models.User, error) {
	doc, err := s.store.Get(ctx, docstore.Users, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return models.UserFromDocument(doc), nil
}

func (s *ConnectService) account(ctx context.Context, userID string) (models.User, string, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return models.User{}, "", err
	}
	if user.StripeAccountID == "" {
		return user, "", ErrNoAccount
	}
	return user, user.StripeAccountID, nil
}

// check clears the stored references when Stripe no longer knows the account.
func (s *ConnectService) check(ctx context.Context, user models.User, err error) error {
	if !errors.Is(err, ErrAccountNotFound) {
		return err
	}
	s.log.WithFields(logrus.Fields{"user": user.ID, "account": user.StripeAccountID}).Warn("stripe account gone, clearing references")
	if clearErr := s.setReference(ctx, user, ""); clearErr != nil {
		return fmt.Errorf("%w (clearing references: %v)", ErrAccountDeleted, clearErr)
	}
	return ErrAccountDeleted
}

// setReference writes accountID to the user and every store the user owns. An empty
// accountID clears it.
func (s *ConnectService) setReference(ctx context.Context, user models.User, accountID string) error {
	var value any
	if accountID != "" {
		value = accountID
	}
	if err := s.store.Update(ctx, docstore.Users, user.ID, docstore.Document{"stripeAccountId": value}); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	storeIDs := map[string]bool{}
	if user.StoreID != "" {
		storeIDs[user.StoreID] = true
	}
	owned, err := s.store.Find(ctx, docstore.Query{
		Collection: docstore.Stores,
		Filters:    []docstore.Filter{docstore.Where("ownerId", user.ID)},
	})
	if err != nil {
		return fmt.Errorf("find stores: %w", err)
	}
	for _, d := range owned {
		storeIDs[d.ID()] = true
	}
	for id := range storeIDs {
		err := s.store.Update(ctx, docstore.Stores, id, docstore.Document{"stripeAccountId": value})
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("update store %s: %w", id, err)
		}
	}
	return nil
}
