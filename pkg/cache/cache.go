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

	"github.com/redis/go-redis/v9"
)

// Driver names accepted by Conf.Driver.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverHybrid = "hybrid"
)

// ICache 定义缓存接口（抽象）
type ICache interface {
	// Get 获取缓存值，未命中时返回 redis.Nil
	Get(ctx context.Context, key string) *redis.StringCmd
	// Set 设置缓存值
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	// Del 删除缓存
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	// Expire 设置过期时间
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// Conf selects and sizes the cache backend.
type Conf struct {
	Driver        string
	LocalMaxBytes int
	// LocalTTLRatio shortens local entries of the hybrid driver so that
	// other instances' invalidations are picked up sooner.
	LocalTTLRatio float64
	Redis         Redis
}

// SetDefaults fills zero values.
func (c *Conf) SetDefaults() {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	if c.LocalMaxBytes <= 0 {
		c.LocalMaxBytes = defaultLocalMaxBytes
	}
	if c.LocalTTLRatio <= 0 || c.LocalTTLRatio > 1 {
		c.LocalTTLRatio = 0.8
	}
	if c.Redis.Mode == "" {
		c.Redis.Mode = "single"
	}
}
