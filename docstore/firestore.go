package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore serves the same collections from Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
	log    logrus.FieldLogger
}

func NewFirestoreStore(client *firestore.Client, log logrus.FieldLogger) *FirestoreStore {
	return &FirestoreStore{client: client, log: log}
}

var _ Store = (*FirestoreStore)(nil)

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return fromSnapshot(snap), nil
}

func (s *FirestoreStore) Find(ctx context.Context, q Query) ([]Document, error) {
	iter := s.query(q).Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("find %s: %w", q.Collection, err)
		}
		docs = append(docs, fromSnapshot(snap))
	}
	return docs, nil
}

func (s *FirestoreStore) Add(ctx context.Context, collection string, doc Document) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, withoutID(doc))
	if err != nil {
		return "", fmt.Errorf("add %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, doc Document) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, withoutID(doc)); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields Document) error {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range withoutID(fields) {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	if len(updates) == 0 {
		return nil
	}
	if _, err := s.client.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Watch(ctx context.Context, q Query) (<-chan Snapshot, error) {
	it := s.query(q).Snapshots(ctx)
	out := make(chan Snapshot, 1)

	go func() {
		defer close(out)
		defer it.Stop()
		for {
			qs, err := it.Next()
			if err != nil {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled {
					send(ctx, out, Snapshot{Err: fmt.Errorf("watch %s: %w", q.Collection, err)})
				}
				return
			}
			snaps, err := qs.Documents.GetAll()
			if err != nil {
				send(ctx, out, Snapshot{Err: err})
				return
			}
			docs := make([]Document, 0, len(snaps))
			for _, snap := range snaps {
				docs = append(docs, fromSnapshot(snap))
			}
			if !send(ctx, out, Snapshot{Docs: docs}) {
				return
			}
		}
	}()
	return out, nil
}

func (s *FirestoreStore) Close(ctx context.Context) error {
	return s.client.Close()
}

func (s *FirestoreStore) query(q Query) firestore.Query {
	query := s.client.Collection(q.Collection).Query
	for _, f := range q.Filters {
		value := f.Value
		if f.Op == In {
			value = toSlice(f.Value)
		}
		if f.Field == "id" {
			query = query.Where(firestore.DocumentID, string(f.Op), value)
			continue
		}
		query = query.Where(f.Field, string(f.Op), value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	return query
}

func fromSnapshot(snap *firestore.DocumentSnapshot) Document {
	doc := Document(snap.Data())
	if doc == nil {
		doc = Document{}
	}
	doc["id"] = snap.Ref.ID
	return doc
}
