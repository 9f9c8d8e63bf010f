// Package docstore is the document-database port shared by every feature. Collections are
// loosely schematized, so documents are plain maps and readers reconcile field names with the
// accessors in fields.go.
package docstore

import (
	"context"
	"errors"
)

// Collection names used across the marketplace.
const (
	Messages        = "messages"
	Orders          = "orders"
	OrderStates     = "orderStates"
	Transactions    = "transactions"
	Payments        = "payments"
	Receipts        = "receipts"
	Reports         = "reports"
	Users           = "users"
	Stores          = "stores"
	AdminComplaints = "admin_complaints"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrClosed   = errors.New("document store closed")
)

// Document is a single record. Documents returned by a Store always carry their id under "id".
type Document map[string]any

// ID returns the document id or "".
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

type Op string

const (
	Eq Op = "=="
	In Op = "in"
)

type Filter struct {
	Field string
	Op    Op
	Value any
}

// Where is shorthand for an equality filter.
func Where(field string, value any) Filter {
	return Filter{Field: field, Op: Eq, Value: value}
}

// WhereIn matches documents whose field equals any of values.
func WhereIn(field string, values ...any) Filter {
	return Filter{Field: field, Op: In, Value: values}
}

type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Desc       bool
	Limit      int
}

// Snapshot is one delivery of a live query: the full result set, or the error that ended it.
type Snapshot struct {
	Docs []Document
	Err  error
}

// Store is implemented by MongoStore, FirestoreStore and MemoryStore.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Find(ctx context.Context, q Query) ([]Document, error)
	Add(ctx context.Context, collection string, doc Document) (string, error)
	Set(ctx context.Context, collection, id string, doc Document) error
	// Update merges fields into an existing document. Keys may be dotted paths.
	Update(ctx context.Context, collection, id string, fields Document) error
	Delete(ctx context.Context, collection, id string) error
	// Watch delivers the query result immediately and again after every change. The channel is
	// closed when ctx ends or after a Snapshot carrying Err.
	Watch(ctx context.Context, q Query) (<-chan Snapshot, error)
	Close(ctx context.Context) error
}

// FindFirst returns the first document matching q, or ErrNotFound.
func FindFirst(ctx context.Context, s Store, q Query) (Document, error) {
	q.Limit = 1
	docs, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

// withoutID copies doc, dropping the synthetic "id" key before it is written.
func withoutID(doc Document) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}
