package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is the external cache collaborator. Reads and writes carry no
// locking and no single-flight deduplication: two concurrent requests for
// the same uncached key may both miss and both recompute, which is an
// accepted property at current scale.
type Store interface {
	// Get returns the cached value or ErrMiss.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// DeletePattern removes every key with the given prefix.
	DeletePattern(ctx context.Context, prefix string) error
}
