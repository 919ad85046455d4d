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
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFastCache() (*FastCache, *time.Time) {
	fc := NewFastCache(FastCacheConfig{MaxBytes: 1024 * 1024})
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fc.now = func() time.Time { return now }
	return fc, &now
}

func TestFastCache_SetGet(t *testing.T) {
	fc, _ := newTestFastCache()
	ctx := context.Background()

	require.Equal(t, "OK", fc.Set(ctx, "k", "v", time.Hour).Val())
	got, err := fc.Get(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestFastCache_MissIsRedisNil(t *testing.T) {
	fc, _ := newTestFastCache()
	_, err := fc.Get(context.Background(), "absent").Result()
	assert.ErrorIs(t, err, redis.Nil)
}

func TestFastCache_Expiration(t *testing.T) {
	fc, now := newTestFastCache()
	ctx := context.Background()

	fc.Set(ctx, "k", "v", time.Minute)
	*now = now.Add(59 * time.Second)
	assert.Equal(t, "v", fc.Get(ctx, "k").Val())

	*now = now.Add(time.Second)
	assert.ErrorIs(t, fc.Get(ctx, "k").Err(), redis.Nil)
}

func TestFastCache_NoExpiration(t *testing.T) {
	fc, now := newTestFastCache()
	ctx := context.Background()

	fc.Set(ctx, "k", "v", 0)
	*now = now.Add(24 * 365 * time.Hour)
	assert.Equal(t, "v", fc.Get(ctx, "k").Val())
}

func TestFastCache_Del(t *testing.T) {
	fc, _ := newTestFastCache()
	ctx := context.Background()

	fc.Set(ctx, "a", "1", time.Hour)
	fc.Set(ctx, "b", "2", time.Hour)
	assert.EqualValues(t, 2, fc.Del(ctx, "a", "b", "c").Val())
	assert.ErrorIs(t, fc.Get(ctx, "a").Err(), redis.Nil)
}

func TestFastCache_Expire(t *testing.T) {
	fc, now := newTestFastCache()
	ctx := context.Background()

	assert.False(t, fc.Expire(ctx, "absent", time.Minute).Val())

	fc.Set(ctx, "k", "v", time.Hour)
	assert.True(t, fc.Expire(ctx, "k", time.Second).Val())
	*now = now.Add(2 * time.Second)
	assert.ErrorIs(t, fc.Get(ctx, "k").Err(), redis.Nil)
}

func TestFastCache_StructValue(t *testing.T) {
	fc, _ := newTestFastCache()
	ctx := context.Background()

	fc.Set(ctx, "u", testUser{ID: 1, Name: "n"}, time.Hour)
	assert.JSONEq(t, `{"id":1,"name":"n"}`, fc.Get(ctx, "u").Val())
}

func TestFastCache_LargeValue(t *testing.T) {
	fc, _ := newTestFastCache()
	ctx := context.Background()

	big := strings.Repeat("x", 200*1024)
	fc.Set(ctx, "big", big, time.Hour)
	assert.Equal(t, big, fc.Get(ctx, "big").Val())
}

func TestFastCache_Clear(t *testing.T) {
	fc, _ := newTestFastCache()
	ctx := context.Background()

	fc.Set(ctx, "k", "v", time.Hour)
	fc.Clear()
	assert.ErrorIs(t, fc.Get(ctx, "k").Err(), redis.Nil)
}
