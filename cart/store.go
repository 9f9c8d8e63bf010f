package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/localmart/localmart-backend-go/kvstore"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/metrics"
	"github.com/localmart/localmart-backend-go/models"
	"github.com/sirupsen/logrus"
)

// Listener is called with the full cart after every persisted mutation.
type Listener func(items []models.CartItem)

// Store keeps one cart per user under the key "cart:<userID>".
type Store struct {
	kv  kvstore.Store
	log logrus.FieldLogger

	mu        sync.Mutex
	nextID    int
	listeners map[string]map[int]Listener
}

func NewStore(kv kvstore.Store, log logrus.FieldLogger) *Store {
	return &Store{
		kv:        kv,
		log:       logger.Component(log, "cart"),
		listeners: make(map[string]map[int]Listener),
	}
}

func key(userID string) string {
	return "cart:" + userID
}

// Load returns the persisted cart, or an empty one.
func (s *Store) Load(ctx context.Context, userID string) ([]models.CartItem, error) {
	items := []models.CartItem{}
	if _, err := kvstore.GetJSON(ctx, s.kv, key(userID), &items); err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

func (s *Store) Add(ctx context.Context, userID string, item models.CartItem) ([]models.CartItem, error) {
	return s.mutate(ctx, userID, "add", func(items []models.CartItem) []models.CartItem {
		return Add(items, item)
	})
}

func (s *Store) Remove(ctx context.Context, userID, itemID, storeID string) ([]models.CartItem, error) {
	return s.mutate(ctx, userID, "remove", func(items []models.CartItem) []models.CartItem {
		return Remove(items, itemID, storeID)
	})
}

func (s *Store) UpdateQuantity(ctx context.Context, userID, itemID, storeID string, qty int) ([]models.CartItem, error) {
	return s.mutate(ctx, userID, "update_quantity", func(items []models.CartItem) []models.CartItem {
		return UpdateQuantity(items, itemID, storeID, qty)
	})
}

// Replace stores items as the whole cart. Lines are merged through Add so the result stays
// unique by item and store; lines without both ids are dropped.
func (s *Store) Replace(ctx context.Context, userID string, items []models.CartItem) ([]models.CartItem, error) {
	return s.mutate(ctx, userID, "replace", func([]models.CartItem) []models.CartItem {
		next := Clear()
		for _, it := range items {
			if it.ItemID == "" || it.StoreID == "" {
				continue
			}
			next = Add(next, it)
		}
		return next
	})
}

// Clear empties the cart and removes the persisted key.
func (s *Store) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, key(userID)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	metrics.CartMutations.WithLabelValues("clear").Inc()
	s.notify(userID, Clear())
	return nil
}

// Subscribe registers fn for changes to userID's cart. The returned func unsubscribes.
func (s *Store) Subscribe(userID string, fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	if s.listeners[userID] == nil {
		s.listeners[userID] = make(map[int]Listener)
	}
	s.listeners[userID][id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners[userID], id)
		if len(s.listeners[userID]) == 0 {
			delete(s.listeners, userID)
		}
	}
}

func (s *Store) mutate(ctx context.Context, userID, op string, fn func([]models.CartItem) []models.CartItem) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	items = fn(items)
	if len(items) == 0 {
		err = s.kv.Delete(ctx, key(userID))
	} else {
		err = s.kv.Set(ctx, key(userID), items)
	}
	if err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	metrics.CartMutations.WithLabelValues(op).Inc()
	s.log.WithFields(logrus.Fields{"user": userID, "op": op, "lines": len(items)}).Debug("cart updated")
	s.notify(userID, items)
	return items, nil
}

// notify runs with s.mu held.
func (s *Store) notify(userID string, items []models.CartItem) {
	for _, fn := range s.listeners[userID] {
		snapshot := make([]models.CartItem, len(items))
		copy(snapshot, items)
		fn(snapshot)
	}
}
