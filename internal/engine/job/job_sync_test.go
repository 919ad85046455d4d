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

package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-arcade/navmanager/pkg/cron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncer struct {
	mu        sync.Mutex
	active    map[string]int
	maxActive map[string]int
	calls     int
	delay     time.Duration
	fail      map[string]error
	deadline  bool
}

func newFakeSyncer(delay time.Duration) *fakeSyncer {
	return &fakeSyncer{
		active:    map[string]int{},
		maxActive: map[string]int{},
		fail:      map[string]error{},
		delay:     delay,
	}
}

func (f *fakeSyncer) Sync(ctx context.Context, scope string) (int, error) {
	f.mu.Lock()
	f.calls++
	f.active[scope]++
	if f.active[scope] > f.maxActive[scope] {
		f.maxActive[scope] = f.active[scope]
	}
	_, f.deadline = ctx.Deadline()
	err := f.fail[scope]
	f.mu.Unlock()

	time.Sleep(f.delay)

	f.mu.Lock()
	f.active[scope]--
	f.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return 3, nil
}

func TestSyncRunner_SerializesPerScope(t *testing.T) {
	f := newFakeSyncer(10 * time.Millisecond)
	r := NewSyncRunner(f, 0)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		for _, scope := range []string{"admin", "app"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, err := r.Run(context.Background(), scope)
				assert.NoError(t, err)
				assert.Equal(t, 3, n)
			}()
		}
	}
	wg.Wait()

	assert.Equal(t, 8, f.calls)
	assert.Equal(t, 1, f.maxActive["admin"])
	assert.Equal(t, 1, f.maxActive["app"])
}

func TestSyncRunner_TryRunBusy(t *testing.T) {
	r := NewSyncRunner(newFakeSyncer(0), 0)

	mu := r.lock("admin")
	mu.Lock()
	_, err := r.TryRun(context.Background(), "admin")
	assert.ErrorIs(t, err, ErrBusy)
	mu.Unlock()

	n, err := r.TryRun(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSyncRunner_Timeout(t *testing.T) {
	f := newFakeSyncer(0)
	_, err := NewSyncRunner(f, time.Minute).Run(context.Background(), "admin")
	require.NoError(t, err)
	assert.True(t, f.deadline)

	_, err = NewSyncRunner(f, 0).Run(context.Background(), "admin")
	require.NoError(t, err)
	assert.False(t, f.deadline)
}

func TestSyncRunner_RunAll(t *testing.T) {
	f := newFakeSyncer(0)
	f.fail["broken"] = errors.New("discovery down")
	r := NewSyncRunner(f, 0)

	counts, err := r.RunAll(context.Background(), []string{"admin", "broken", "admin", " "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, map[string]int{"admin": 3}, counts)
	assert.Equal(t, 2, f.calls)
}

func TestSyncRunner_Schedule(t *testing.T) {
	r := NewSyncRunner(newFakeSyncer(0), 0)

	s := cron.New(nil)
	require.NoError(t, r.Schedule(s, "", []string{"admin"}))
	assert.Equal(t, 0, s.Len())

	require.NoError(t, r.Schedule(s, "@every 1h", []string{"admin", "app", "admin", ""}))
	assert.Equal(t, 2, s.Len())

	assert.Error(t, r.Schedule(cron.New(nil), "not a spec", []string{"admin"}))
	assert.Equal(t, "navigation-sync:admin", JobName("admin"))
}

func TestSyncConf_SetDefaults(t *testing.T) {
	c := SyncConf{}
	c.SetDefaults()
	assert.Equal(t, 120, c.Timeout)

	c = SyncConf{Timeout: 5}
	c.SetDefaults()
	assert.Equal(t, 5, c.Timeout)
}
