// Package cache holds short-lived session state such as revoked refresh
// tokens. Content documents are never cached.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

const revokedPrefix = "revoked:"

// Revoke marks a token id as unusable until ttl elapses.
func Revoke(ctx context.Context, c Cache, tokenID string, ttl time.Duration) error {
	if c == nil || tokenID == "" || ttl <= 0 {
		return nil
	}
	return c.Set(ctx, revokedPrefix+tokenID, []byte("1"), ttl)
}

// RevokeOnce atomically marks a token id as unusable and reports whether this
// call was the one that did it. A token that is already revoked, or already
// expired, yields false.
func RevokeOnce(ctx context.Context, c Cache, tokenID string, ttl time.Duration) (bool, error) {
	if tokenID == "" || ttl <= 0 {
		return false, nil
	}
	if c == nil {
		return true, nil
	}
	return c.SetNX(ctx, revokedPrefix+tokenID, []byte("1"), ttl)
}
