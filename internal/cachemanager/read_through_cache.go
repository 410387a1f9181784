package cachemanager

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader produces the value for input on a cache miss.
type Loader[I, V any] func(ctx context.Context, input I) (V, error)

// ReadThroughCache fronts a CacheManager with a Loader. Concurrent misses on
// one key share a single load; load errors are returned to every waiter and
// never stored.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache  CacheManager[K, V]
	load   Loader[I, V]
	bypass bool
	group  singleflight.Group
}

// NewReadThroughCache wraps cache. With bypass set every call loads and the
// cache is never consulted.
func NewReadThroughCache[K comparable, V any, I any](cache CacheManager[K, V], load Loader[I, V], bypass bool) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{cache: cache, load: load, bypass: bypass}
}

// Get returns the cached value for key, loading and storing it with ttl on a miss.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	return r.get(ctx, key, input, ttl, func() (V, bool) { return r.cache.Get(ctx, key) })
}

// GetWithRefresh is Get, but a hit also resets the entry's ttl.
func (r *ReadThroughCache[K, V, I]) GetWithRefresh(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	return r.get(ctx, key, input, ttl, func() (V, bool) { return r.cache.GetWithRefresh(ctx, key, ttl) })
}

func (r *ReadThroughCache[K, V, I]) get(ctx context.Context, key K, input I, ttl time.Duration, lookup func() (V, bool)) (V, error) {
	if r.bypass {
		return r.load(ctx, input)
	}
	if value, ok := lookup(); ok {
		return value, nil
	}

	v, err, _ := r.group.Do(fmt.Sprint(key), func() (any, error) {
		// A load that finished between the lookup above and Do already stored it.
		if value, ok := lookup(); ok {
			return value, nil
		}
		value, err := r.load(ctx, input)
		if err != nil {
			return value, err
		}
		r.cache.Set(ctx, key, value, ttl)
		return value, nil
	})
	value, _ := v.(V)
	return value, err
}
