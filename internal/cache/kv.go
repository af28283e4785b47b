// Package cache holds the resumable key-value cache used for sessions,
// daily batches and served-content sets, plus its backends.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get for a missing or expired key.
var ErrNotFound = errors.New("cache: key not found")

// KV is a string-keyed byte store. A ttl of 0 means no expiry.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Keys returns every live key with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
