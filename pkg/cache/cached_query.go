// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ErrCacheMiss is what every ICache returns for an absent key.
var ErrCacheMiss = redis.Nil

// QueryFunc loads the value from the source of truth. params are the same
// values the cache key was derived from.
type QueryFunc[T any] func(ctx context.Context, params ...any) (T, error)

// KeyFunc defines a function that generates cache key from parameters
type KeyFunc func(params ...any) string

// CachedQuery provides a generic cache-aside pattern implementation.
// Concurrent misses on the same key share one load.
type CachedQuery[T any] struct {
	cache     ICache
	keyFunc   KeyFunc
	queryFunc QueryFunc[T]
	ttl       time.Duration
	name      string
	observe   func(key string, hit bool)
	group     singleflight.Group
}

// CachedQueryOption configures CachedQuery behavior
type CachedQueryOption[T any] func(*CachedQuery[T])

// WithTTL sets the default expiration used by Get.
func WithTTL[T any](ttl time.Duration) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.ttl = ttl
	}
}

// WithName tags log entries of this query.
func WithName[T any](name string) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.name = name
	}
}

// WithObserver registers a callback invoked on every cached lookup.
func WithObserver[T any](fn func(key string, hit bool)) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.observe = fn
	}
}

// NewCachedQuery creates a new CachedQuery instance. A nil cache turns every
// call into a direct load.
func NewCachedQuery[T any](
	cache ICache,
	keyFunc KeyFunc,
	queryFunc QueryFunc[T],
	opts ...CachedQueryOption[T],
) *CachedQuery[T] {
	cq := &CachedQuery[T]{
		cache:     cache,
		keyFunc:   keyFunc,
		queryFunc: queryFunc,
		ttl:       time.Hour,
		name:      "cached-query",
	}
	for _, opt := range opts {
		opt(cq)
	}
	return cq
}

// Key returns the cache key for params.
func (cq *CachedQuery[T]) Key(params ...any) string {
	return cq.keyFunc(params...)
}

// Get is GetWithTTL with the default TTL.
func (cq *CachedQuery[T]) Get(ctx context.Context, params ...any) (T, error) {
	return cq.GetWithTTL(ctx, cq.ttl, params...)
}

// GetWithTTL returns the cached value or loads and stores it for ttl.
// ttl <= 0 bypasses the cache entirely. Cache backend failures degrade to a
// direct load; load errors are returned unchanged and never cached.
func (cq *CachedQuery[T]) GetWithTTL(ctx context.Context, ttl time.Duration, params ...any) (T, error) {
	if cq.cache == nil || ttl <= 0 {
		return cq.queryFunc(ctx, params...)
	}

	cacheKey := cq.keyFunc(params...)
	if result, ok := cq.lookup(ctx, cacheKey); ok {
		cq.notify(cacheKey, true)
		return result, nil
	}
	cq.notify(cacheKey, false)

	v, err, _ := cq.group.Do(cacheKey, func() (any, error) {
		// another caller may have filled the key while we waited
		if result, ok := cq.lookup(ctx, cacheKey); ok {
			return result, nil
		}
		log.Debugw("cache miss, loading", "query", cq.name, "key", cacheKey)
		result, err := cq.queryFunc(ctx, params...)
		if err != nil {
			return result, err
		}
		cq.store(ctx, cacheKey, result, ttl)
		return result, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate removes the cached data
func (cq *CachedQuery[T]) Invalidate(ctx context.Context, params ...any) error {
	if cq.cache == nil {
		return nil
	}
	cacheKey := cq.keyFunc(params...)
	if err := cq.cache.Del(ctx, cacheKey).Err(); err != nil {
		log.Warnw("failed to invalidate cache", "query", cq.name, "key", cacheKey, "error", err)
		return err
	}
	log.Debugw("cache invalidated", "query", cq.name, "key", cacheKey)
	return nil
}

func (cq *CachedQuery[T]) lookup(ctx context.Context, cacheKey string) (T, bool) {
	var result T
	cacheData, err := cq.cache.Get(ctx, cacheKey).Result()
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			log.Warnw("cache get error", "query", cq.name, "key", cacheKey, "error", err)
		}
		return result, false
	}
	if err := sonic.UnmarshalString(cacheData, &result); err != nil {
		log.Warnw("failed to unmarshal cached data", "query", cq.name, "key", cacheKey, "error", err)
		return result, false
	}
	log.Debugw("cache hit", "query", cq.name, "key", cacheKey)
	return result, true
}

func (cq *CachedQuery[T]) store(ctx context.Context, cacheKey string, result T, ttl time.Duration) {
	cacheData, err := sonic.MarshalString(result)
	if err != nil {
		log.Warnw("failed to marshal result for caching", "query", cq.name, "key", cacheKey, "error", err)
		return
	}
	if err := cq.cache.Set(ctx, cacheKey, cacheData, ttl).Err(); err != nil {
		log.Warnw("failed to cache result", "query", cq.name, "key", cacheKey, "error", err)
		return
	}
	log.Debugw("cached result", "query", cq.name, "key", cacheKey, "ttl", ttl)
}

func (cq *CachedQuery[T]) notify(key string, hit bool) {
	if cq.observe != nil {
		cq.observe(key, hit)
	}
}
