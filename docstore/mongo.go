package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore maps documents onto MongoDB collections using string _id values.
type MongoStore struct {
	db           *mongo.Database
	pollInterval time.Duration
	log          logrus.FieldLogger
}

func NewMongoStore(db *mongo.Database, pollInterval time.Duration, log logrus.FieldLogger) *MongoStore {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &MongoStore{db: db, pollInterval: pollInterval, log: log}
}

var _ Store = (*MongoStore)(nil)

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) Find(ctx context.Context, q Query) ([]Document, error) {
	opts := options.Find()
	if q.OrderBy != "" {
		dir := 1
		if q.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.OrderBy, Value: dir}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := s.db.Collection(q.Collection).Find(ctx, mongoFilter(q.Filters), opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", q.Collection, err)
	}
	defer cursor.Close(ctx)

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("decode %s: %w", q.Collection, err)
	}
	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, fromBSON(raw))
	}
	return docs, nil
}

func (s *MongoStore) Add(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.NewString()
	if _, err := s.db.Collection(collection).InsertOne(ctx, toBSON(id, doc)); err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return id, nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, doc Document) error {
	_, err := s.db.Collection(collection).ReplaceOne(
		ctx,
		bson.M{"_id": id},
		toBSON(id, doc),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields Document) error {
	result, err := s.db.Collection(collection).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M(withoutID(fields))},
	)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Watch re-runs the query on every change-stream event. Standalone servers have no change
// streams, so the query is polled instead.
func (s *MongoStore) Watch(ctx context.Context, q Query) (<-chan Snapshot, error) {
	first, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make(chan Snapshot, 1)
	out <- Snapshot{Docs: first}

	go func() {
		defer close(out)

		stream, err := s.db.Collection(q.Collection).Watch(ctx, mongo.Pipeline{})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.WithError(err).WithField("collection", q.Collection).Debug("change streams unavailable, polling")
			s.poll(ctx, q, out)
			return
		}
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			if !s.emit(ctx, q, out) {
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			send(ctx, out, Snapshot{Err: fmt.Errorf("watch %s: %w", q.Collection, err)})
		}
	}()
	return out, nil
}

func (s *MongoStore) poll(ctx context.Context, q Query, out chan<- Snapshot) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.emit(ctx, q, out) {
				return
			}
		}
	}
}

func (s *MongoStore) emit(ctx context.Context, q Query, out chan<- Snapshot) bool {
	docs, err := s.Find(ctx, q)
	if err != nil {
		if ctx.Err() == nil {
			send(ctx, out, Snapshot{Err: err})
		}
		return false
	}
	return send(ctx, out, Snapshot{Docs: docs})
}

func send(ctx context.Context, out chan<- Snapshot, snap Snapshot) bool {
	select {
	case out <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func mongoFilter(filters []Filter) bson.M {
	filter := bson.M{}
	for _, f := range filters {
		field := f.Field
		if field == "id" {
			field = "_id"
		}
		switch f.Op {
		case In:
			filter[field] = bson.M{"$in": toSlice(f.Value)}
		default:
			filter[field] = f.Value
		}
	}
	return filter
}

func toBSON(id string, doc Document) bson.M {
	out := bson.M(withoutID(doc))
	out["_id"] = id
	return out
}

func fromBSON(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			doc["id"] = fmt.Sprint(normalizeBSON(v))
			continue
		}
		doc[k] = normalizeBSON(v)
	}
	return doc
}

func normalizeBSON(v any) any {
	switch t := v.(type) {
	case primitive.M:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = normalizeBSON(inner)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalizeBSON(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i := range t {
			out[i] = normalizeBSON(t[i])
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case primitive.Decimal128:
		return t.String()
	}
	return v
}
