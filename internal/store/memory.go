package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

var errMissingID = errors.New("document has no string _id")

// MemoryRepository keeps documents in their BSON form so partial updates and
// filters behave like the Mongo implementation. Filters support top-level
// equality only. Results are returned in insertion order.
type MemoryRepository[T any] struct {
	mu    sync.Mutex
	order []string
	docs  map[string]bson.M
}

func NewMemoryRepository[T any]() *MemoryRepository[T] {
	return &MemoryRepository[T]{docs: make(map[string]bson.M)}
}

func (r *MemoryRepository[T]) List(ctx context.Context, filter bson.M, page Page) (List[T], error) {
	page = page.Normalize()
	matched, err := r.Find(ctx, filter)
	if err != nil {
		return List[T]{}, err
	}

	total := int64(len(matched))
	start := page.Offset
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return List[T]{Items: matched[start:end], Total: total, Limit: page.Limit, Offset: page.Offset}, nil
}

func (r *MemoryRepository[T]) Find(ctx context.Context, filter bson.M) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]T, 0)
	for _, id := range r.order {
		doc := r.docs[id]
		if !matches(doc, filter) {
			continue
		}
		item, err := decode[T](doc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *MemoryRepository[T]) Get(ctx context.Context, id string) (T, error) {
	return r.FindOne(ctx, bson.M{"_id": id})
}

func (r *MemoryRepository[T]) FindOne(ctx context.Context, filter bson.M) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	id, ok := r.firstMatch(filter)
	if !ok {
		return zero, ErrNotFound
	}
	return decode[T](r.docs[id])
}

func (r *MemoryRepository[T]) Create(ctx context.Context, doc T) error {
	m, err := toM(doc)
	if err != nil {
		return err
	}
	id, ok := m["_id"].(string)
	if !ok || id == "" {
		return errMissingID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.docs[id]; exists {
		return fmt.Errorf("duplicate _id %q", id)
	}
	r.docs[id] = m
	r.order = append(r.order, id)
	return nil
}

func (r *MemoryRepository[T]) Update(ctx context.Context, id string, set bson.M) (T, error) {
	return r.UpdateOne(ctx, bson.M{"_id": id}, set)
}

func (r *MemoryRepository[T]) UpdateOne(ctx context.Context, filter bson.M, set bson.M) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	id, ok := r.firstMatch(filter)
	if !ok {
		return zero, ErrNotFound
	}

	merged := make(bson.M, len(r.docs[id])+len(set))
	for k, v := range r.docs[id] {
		merged[k] = v
	}
	for k, v := range set {
		merged[k] = v
	}
	normalized, err := toM(merged)
	if err != nil {
		return zero, err
	}
	r.docs[id] = normalized
	return decode[T](normalized)
}

func (r *MemoryRepository[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[id]; !ok {
		return ErrNotFound
	}
	delete(r.docs, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len reports how many documents are stored.
func (r *MemoryRepository[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

func (r *MemoryRepository[T]) firstMatch(filter bson.M) (string, bool) {
	for _, id := range r.order {
		if matches(r.docs[id], filter) {
			return id, true
		}
	}
	return "", false
}

func matches(doc, filter bson.M) bool {
	if len(filter) == 0 {
		return true
	}
	normalized, err := toM(filter)
	if err != nil {
		return false
	}
	for k, want := range normalized {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func toM(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decode[T any](m bson.M) (T, error) {
	var out T
	raw, err := bson.Marshal(m)
	if err != nil {
		return out, err
	}
	err = bson.Unmarshal(raw, &out)
	return out, err
}
