package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// The scan service keeps the serialised history behind it, so swapping
// memory (single instance) for Redis (shared) needs no service changes.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A non-positive TTL never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Incr atomically increments the integer stored at key, starting from 0,
	// and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Common cache errors
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"
)
