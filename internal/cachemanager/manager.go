// Package cachemanager memoises diff results. CacheManager is the storage
// contract, InMemoryCacheManager its go-cache implementation, ReadThroughCache
// the load-on-miss wrapper, and DiffEngine the memoising front of diff.Compute.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager stores values by key, each with its own ttl.
// Implementations must be safe for concurrent use.
type CacheManager[K comparable, V any] interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key K) (V, bool)
	// GetWithRefresh is Get, but a hit also pushes the expiry out to ttl.
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
