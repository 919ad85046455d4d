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
	"encoding/binary"
	"fmt"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// defaultLocalMaxBytes is the default cache size (32MB)
const defaultLocalMaxBytes = 32 * 1024 * 1024

// deadlineSize is the width of the expiry prefix stored in front of every value.
const deadlineSize = 8

// FastCacheConfig holds fastcache configuration
type FastCacheConfig struct {
	MaxBytes int
}

// FastCache is an in-process ICache backed by VictoriaMetrics fastcache.
// Each value carries its own deadline and expired entries are dropped on read.
type FastCache struct {
	cache *fastcache.Cache
	now   func() time.Time
}

// NewFastCache creates a new FastCache instance
func NewFastCache(conf FastCacheConfig) *FastCache {
	maxBytes := conf.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultLocalMaxBytes
	}
	return &FastCache{
		cache: fastcache.New(maxBytes),
		now:   time.Now,
	}
}

func (fc *FastCache) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	payload, ok := fc.load(key)
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(string(payload))
	return cmd
}

func (fc *FastCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	raw, err := toBytes(value)
	if err != nil {
		cmd.SetErr(err)
		return cmd
	}
	fc.store(key, raw, expiration)
	cmd.SetVal("OK")
	return cmd
}

func (fc *FastCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")
	var n int64
	for _, key := range keys {
		if _, ok := fc.load(key); ok {
			n++
		}
		fc.cache.Del([]byte(key))
	}
	cmd.SetVal(n)
	return cmd
}

func (fc *FastCache) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx, "expire", key)
	payload, ok := fc.load(key)
	if !ok {
		cmd.SetVal(false)
		return cmd
	}
	if expiration <= 0 {
		fc.cache.Del([]byte(key))
	} else {
		fc.store(key, payload, expiration)
	}
	cmd.SetVal(true)
	return cmd
}

// Clear drops every entry.
func (fc *FastCache) Clear() {
	fc.cache.Reset()
}

func (fc *FastCache) store(key string, payload []byte, expiration time.Duration) {
	buf := make([]byte, deadlineSize+len(payload))
	var deadline int64
	if expiration > 0 {
		deadline = fc.now().Add(expiration).UnixNano()
	}
	binary.BigEndian.PutUint64(buf, uint64(deadline))
	copy(buf[deadlineSize:], payload)
	// SetBig keeps trees larger than fastcache's 64KB entry limit.
	fc.cache.SetBig([]byte(key), buf)
}

func (fc *FastCache) load(key string) ([]byte, bool) {
	buf := fc.cache.GetBig(nil, []byte(key))
	if len(buf) < deadlineSize {
		return nil, false
	}
	deadline := int64(binary.BigEndian.Uint64(buf))
	if deadline != 0 && fc.now().UnixNano() >= deadline {
		fc.cache.Del([]byte(key))
		return nil, false
	}
	return buf[deadlineSize:], true
}

func toBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, fmt.Errorf("cache: nil value")
	default:
		return sonic.Marshal(v)
	}
}
