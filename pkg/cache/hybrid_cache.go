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
	"time"

	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/go-arcade/navmanager/pkg/safe"
	"github.com/redis/go-redis/v9"
)

// HybridCache 混合缓存：本地 FastCache + 远程 Redis
// 读：先本地后远程，远程命中时回填本地
// 写/删：同时作用于两层
type HybridCache struct {
	local    *FastCache
	remote   ICache
	ttlRatio float64
}

// NewHybridCache 创建混合缓存
func NewHybridCache(local *FastCache, remote ICache, localTTLRatio float64) *HybridCache {
	if localTTLRatio <= 0 || localTTLRatio > 1 {
		localTTLRatio = 1
	}
	return &HybridCache{local: local, remote: remote, ttlRatio: localTTLRatio}
}

func (hc *HybridCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if cmd := hc.local.Get(ctx, key); cmd.Err() == nil {
		log.Debugw("hybrid cache hit (local)", "key", key)
		return cmd
	}

	cmd := hc.remote.Get(ctx, key)
	if cmd.Err() != nil {
		return cmd
	}
	log.Debugw("hybrid cache hit (remote)", "key", key)

	value := cmd.Val()
	// 回填本地时沿用远程剩余寿命不可知，使用短 TTL
	ttl := hc.localTTL(time.Minute)
	safe.Go(func() {
		hc.local.Set(context.Background(), key, value, ttl)
	})
	return cmd
}

func (hc *HybridCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	hc.local.Set(ctx, key, value, hc.localTTL(expiration))
	return hc.remote.Set(ctx, key, value, expiration)
}

func (hc *HybridCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	hc.local.Del(ctx, keys...)
	return hc.remote.Del(ctx, keys...)
}

func (hc *HybridCache) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	hc.local.Expire(ctx, key, hc.localTTL(expiration))
	return hc.remote.Expire(ctx, key, expiration)
}

func (hc *HybridCache) localTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	return time.Duration(float64(ttl) * hc.ttlRatio)
}
