package receipts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/localmart/localmart-backend-go/kvstore"
	"github.com/localmart/localmart-backend-go/models"
)

const (
	MaxRecent    = 50
	RecentMaxAge = 30 * 24 * time.Hour
	recentPrefix = "regeneratedReceipts:"
)

type RecentEntry struct {
	ReceiptNumber string                 `json:"receiptNumber"`
	TransactionID string                 `json:"transactionId"`
	Kind          models.TransactionKind `json:"kind"`
	CustomerName  string                 `json:"customerName"`
	Total         float64                `json:"total"`
	Currency      string                 `json:"currency"`
	GeneratedAt   time.Time              `json:"generatedAt"`
}

// Recent keeps the latest regenerated receipts per seller, newest first.
type Recent struct {
	kv  kvstore.Store
	now func() time.Time
	mu  sync.Mutex
}

func NewRecent(kv kvstore.Store) *Recent {
	return &Recent{kv: kv, now: time.Now}
}

// Prune drops entries older than RecentMaxAge and keeps at most MaxRecent.
func Prune(entries []RecentEntry, now time.Time) []RecentEntry {
	out := make([]RecentEntry, 0, len(entries))
	cutoff := now.Add(-RecentMaxAge)
	for _, e := range entries {
		if e.GeneratedAt.Before(cutoff) {
			continue
		}
		out = append(out, e)
		if len(out) == MaxRecent {
			break
		}
	}
	return out
}

// Add puts e first, replacing an older entry for the same transaction.
func (r *Recent) Add(ctx context.Context, sellerID string, e RecentEntry) ([]RecentEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, err := r.load(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	next := []RecentEntry{e}
	for _, old := range entries {
		if old.TransactionID != e.TransactionID {
			next = append(next, old)
		}
	}
	next = Prune(next, r.now())
	return next, r.save(ctx, sellerID, next)
}

func (r *Recent) List(ctx context.Context, sellerID string) ([]RecentEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, err := r.load(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return Prune(entries, r.now()), nil
}

// PruneAll rewrites every seller's list and reports how many entries were dropped.
func (r *Recent) PruneAll(ctx context.Context) (int, error) {
	keys, err := r.kv.Keys(ctx, recentPrefix)
	if err != nil {
		return 0, fmt.Errorf("list receipt keys: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for _, k := range keys {
		sellerID := strings.TrimPrefix(k, recentPrefix)
		entries, err := r.load(ctx, sellerID)
		if err != nil {
			return dropped, err
		}
		kept := Prune(entries, r.now())
		if len(kept) == len(entries) {
			continue
		}
		dropped += len(entries) - len(kept)
		if err := r.save(ctx, sellerID, kept); err != nil {
			return dropped, err
		}
	}
	return dropped, nil
}

func (r *Recent) load(ctx context.Context, sellerID string) ([]RecentEntry, error) {
	var entries []RecentEntry
	if _, err := kvstore.GetJSON(ctx, r.kv, recentPrefix+sellerID, &entries); err != nil {
		return nil, fmt.Errorf("load recent receipts: %w", err)
	}
	return entries, nil
}

func (r *Recent) save(ctx context.Context, sellerID string, entries []RecentEntry) error {
	if len(entries) == 0 {
		return r.kv.Delete(ctx, recentPrefix+sellerID)
	}
	return r.kv.Set(ctx, recentPrefix+sellerID, entries)
}
