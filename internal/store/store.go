// Package store maps domain documents onto backend collections. Every
// feature package talks to its collection through a Repository; the Mongo
// implementation is used in production and the in-memory one in tests.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned when an identifier or filter resolves to no document.
var ErrNotFound = errors.New("document not found")

const (
	DefaultLimit int64 = 50
	MaxLimit     int64 = 100
)

type Page struct {
	Limit  int64
	Offset int64
}

// Normalize applies the paging defaults: a non-positive limit becomes
// DefaultLimit, limits above MaxLimit are clamped, a negative offset becomes 0.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type List[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

// Repository is the CRUD surface one collection exposes. Each call is a
// single backend round trip: no retries, no caching, no batching.
//
// Update and UpdateOne apply set as a partial update and never upsert.
// Delete is not idempotent: removing a missing id returns ErrNotFound.
type Repository[T any] interface {
	List(ctx context.Context, filter bson.M, page Page) (List[T], error)
	Find(ctx context.Context, filter bson.M) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	FindOne(ctx context.Context, filter bson.M) (T, error)
	Create(ctx context.Context, doc T) error
	Update(ctx context.Context, id string, set bson.M) (T, error)
	UpdateOne(ctx context.Context, filter bson.M, set bson.M) (T, error)
	Delete(ctx context.Context, id string) error
}
