package docstore

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps collections in process. It backs tests and DOCSTORE_DRIVER=memory.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]Document
	watchers    map[string]map[*memWatcher]struct{}
	closed      bool
}

type memWatcher struct {
	q  Query
	ch chan Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
		watchers:    make(map[string]map[*memWatcher]struct{}),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(doc), nil
}

func (s *MemoryStore) Find(ctx context.Context, q Query) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query(q), nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.NewString()
	return id, s.Set(ctx, collection, id, doc)
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	stored := copyDocument(Document(withoutID(doc)))
	stored["id"] = id
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}
	s.collections[collection][id] = stored
	s.notify(collection)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		setPath(doc, k, copyValue(v))
	}
	s.notify(collection)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return nil
	}
	delete(s.collections[collection], id)
	s.notify(collection)
	return nil
}

func (s *MemoryStore) Watch(ctx context.Context, q Query) (<-chan Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	w := &memWatcher{q: q, ch: make(chan Snapshot, 1)}
	if s.watchers[q.Collection] == nil {
		s.watchers[q.Collection] = make(map[*memWatcher]struct{})
	}
	s.watchers[q.Collection][w] = struct{}{}
	w.ch <- Snapshot{Docs: s.query(q)}

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[q.Collection][w]; ok {
			delete(s.watchers[q.Collection], w)
			close(w.ch)
		}
	}()
	return w.ch, nil
}

// Fail ends every live query on collection with err, as a dropped listener would.
func (s *MemoryStore) Fail(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for w := range s.watchers[collection] {
		deliver(w, Snapshot{Err: err})
		close(w.ch)
		delete(s.watchers[collection], w)
	}
}

func (s *MemoryStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, ws := range s.watchers {
		for w := range ws {
			close(w.ch)
		}
	}
	s.watchers = make(map[string]map[*memWatcher]struct{})
	return nil
}

// notify must be called with s.mu held.
func (s *MemoryStore) notify(collection string) {
	for w := range s.watchers[collection] {
		deliver(w, Snapshot{Docs: s.query(w.q)})
	}
}

// deliver keeps only the newest snapshot when the reader lags behind.
func deliver(w *memWatcher, snap Snapshot) {
	select {
	case w.ch <- snap:
		return
	default:
	}
	select {
	case <-w.ch:
	default:
	}
	w.ch <- snap
}

func (s *MemoryStore) query(q Query) []Document {
	var out []Document
	for _, doc := range s.collections[q.Collection] {
		if matches(doc, q.Filters) {
			out = append(out, copyDocument(doc))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			a, _ := Lookup(out[i], q.OrderBy)
			b, _ := Lookup(out[j], q.OrderBy)
			c := compareValues(a, b)
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		v, _ := Lookup(doc, f.Field)
		switch f.Op {
		case In:
			found := false
			for _, candidate := range toSlice(f.Value) {
				if equalValues(v, candidate) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			if !equalValues(v, f.Value) {
				return false
			}
		}
	}
	return true
}

func equalValues(a, b any) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	_, aStr := a.(string)
	_, bStr := b.(string)
	if okA && okB && !aStr && !bStr {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if ta, ok := toTime(a); ok {
		if tb, ok := toTime(b); ok {
			return ta.Compare(tb)
		}
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb)
		}
	}
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
	}
	return 0
}

func setPath(doc map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := AsMap(cur[p])
		if !ok {
			next = make(map[string]any)
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}

func copyDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case Document:
		return map[string]any(copyDocument(t))
	case map[string]any:
		return map[string]any(copyDocument(t))
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = copyValue(t[i])
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = copyValue(t[i])
		}
		return out
	case time.Time:
		return t
	}
	return v
}
