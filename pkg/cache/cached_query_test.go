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
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCache is a simple mock implementation of ICache for testing
type mockCache struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockCache) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewStringCmd(ctx, "get", key)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	val, ok := m.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (m *mockCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	m.ttls[key] = expiration
	cmd := redis.NewStatusCmd(ctx, "set", key)
	cmd.SetVal("OK")
	return cmd
}

func (m *mockCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			n++
		}
	}
	cmd := redis.NewIntCmd(ctx, "del")
	cmd.SetVal(n)
	return cmd
}

func (m *mockCache) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewBoolCmd(ctx, "expire", key)
	_, ok := m.data[key]
	if ok {
		m.ttls[key] = expiration
	}
	cmd.SetVal(ok)
	return cmd
}

type testUser struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func userKey(params ...any) string {
	return fmt.Sprintf("user:%v", params[0])
}

func TestCachedQuery_Get_CacheHit(t *testing.T) {
	mc := newMockCache()
	mc.data["user:1"] = `{"id":1,"name":"cached"}`

	var calls int32
	cq := NewCachedQuery(mc, userKey, func(ctx context.Context, params ...any) (testUser, error) {
		atomic.AddInt32(&calls, 1)
		return testUser{ID: 1, Name: "db"}, nil
	})

	got, err := cq.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "cached", got.Name)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestCachedQuery_Get_CacheMiss(t *testing.T) {
	mc := newMockCache()
	cq := NewCachedQuery(mc, userKey, func(ctx context.Context, params ...any) (testUser, error) {
		return testUser{ID: params[0].(int), Name: "db"}, nil
	}, WithTTL[testUser](time.Minute))

	got, err := cq.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, testUser{ID: 7, Name: "db"}, got)
	assert.JSONEq(t, `{"id":7,"name":"db"}`, mc.data["user:7"])
	assert.Equal(t, time.Minute, mc.ttls["user:7"])
}

func TestCachedQuery_Get_QueryErrorNotCached(t *testing.T) {
	mc := newMockCache()
	boom := errors.New("boom")
	cq := NewCachedQuery(mc, userKey, func(ctx context.Context, params ...any) (testUser, error) {
		return testUser{}, boom
	})

	_, err := cq.Get(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, mc.data)
}

func TestCachedQuery_GetWithTTL_ZeroBypasses(t *testing.T) {
	mc := newMockCache()
	mc.data["user:1"] = `{"id":1,"name":"stale"}`

	var calls int32
	cq := NewCachedQuery(mc, userKey, func(ctx context.Context, params ...any) (testUser, error) {
		atomic.AddInt32(&calls, 1)
		return testUser{ID: 1, Name: "fresh"}, nil
	})

	for i := 0; i < 2; i++ {
		got, err := cq.GetWithTTL(context.Background(), 0, 1)
		require.NoError(t, err)
		assert.Equal(t, "fresh", got.Name)
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	assert.Equal(t, `{"id":1,"name":"stale"}`, mc.data["user:1"])
}

func TestCachedQuery_BackendErrorFallsBack(t *testing.T) {
	mc := newMockCache()
	mc.getErr = errors.New("connection refused")
	cq := NewCachedQuery(mc, userKey, func(ctx context.Context, params ...any) (testUser, error) {
		return testUser{ID: 1, Name: "db"}, nil
	})

	got, err := cq.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "db", got.Name)
}

func TestCachedQuery_CorruptEntryReloads(t *testing.T) {
	mc := newMockCache()
	mc.data["user:1"] = `not json`
	cq := NewCachedQuery(mc, userKey, func(ctx context.Context, params ...any) (testUser, error) {
		return testUser{ID: 1, Name: "db"}, nil
	})

	got, err := cq.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "db", got.Name)
	assert.JSONEq(t, `{"id":1,"name":"db"}`, mc.data["user:1"])
}

func TestCachedQuery_Invalidate(t *testing.T) {
	mc := newMockCache()
	var calls int32
	cq := NewCachedQuery(mc, userKey, func(ctx context.Context, params ...any) (testUser, error) {
		n := atomic.AddInt32(&calls, 1)
		return testUser{ID: 1, Name: fmt.Sprintf("v%d", n)}, nil
	})
	ctx := context.Background()

	first, err := cq.Get(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, cq.Invalidate(ctx, 1))
	second, err := cq.Get(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, "v1", first.Name)
	assert.Equal(t, "v2", second.Name)
}

func TestCachedQuery_NilCache(t *testing.T) {
	cq := NewCachedQuery[testUser](nil, userKey, func(ctx context.Context, params ...any) (testUser, error) {
		return testUser{ID: 3}, nil
	})
	got, err := cq.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got.ID)
	assert.NoError(t, cq.Invalidate(context.Background(), 3))
}

func TestCachedQuery_Observer(t *testing.T) {
	mc := newMockCache()
	var hits, misses int
	cq := NewCachedQuery(mc, userKey, func(ctx context.Context, params ...any) (testUser, error) {
		return testUser{ID: 1}, nil
	}, WithObserver[testUser](func(key string, hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	}))

	_, _ = cq.Get(context.Background(), 1)
	_, _ = cq.Get(context.Background(), 1)
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestCachedQuery_ConcurrentMissesShareLoad(t *testing.T) {
	mc := newMockCache()
	var calls int32
	release := make(chan struct{})
	cq := NewCachedQuery(mc, userKey, func(ctx context.Context, params ...any) (testUser, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return testUser{ID: 1}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cq.Get(context.Background(), 1)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(8))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}
