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

package main

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-arcade/navmanager/internal/engine/job"
	"github.com/go-arcade/navmanager/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSyncer struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func (s *countingSyncer) Sync(_ context.Context, scope string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[scope]++
	if err := s.fail[scope]; err != nil {
		return 0, err
	}
	return len(scope), nil
}

func TestSyncScopes_DeduplicatesScopes(t *testing.T) {
	syncer := &countingSyncer{calls: map[string]int{}}
	var out, errOut bytes.Buffer

	err := syncScopes(context.Background(), job.NewSyncRunner(syncer, 0),
		[]string{"admin", "reports", "admin", " "}, &out, &errOut)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"admin": 1, "reports": 1}, syncer.calls)
	assert.Equal(t, "admin: synced 5 items\nreports: synced 7 items\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestSyncScopes_SingleScope(t *testing.T) {
	syncer := &countingSyncer{calls: map[string]int{}}
	var out, errOut bytes.Buffer

	require.NoError(t, syncScopes(context.Background(), job.NewSyncRunner(syncer, 0),
		[]string{"admin", "admin"}, &out, &errOut))
	assert.Equal(t, "synced 5 items\n", out.String())
}

func TestSyncScopes_ReportsFailures(t *testing.T) {
	boom := errors.New("scan failed")
	syncer := &countingSyncer{calls: map[string]int{}, fail: map[string]error{"reports": boom}}
	var out, errOut bytes.Buffer

	err := syncScopes(context.Background(), job.NewSyncRunner(syncer, 0),
		[]string{"reports", "admin"}, &out, &errOut)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "admin: synced 5 items\n", out.String())
	assert.Contains(t, errOut.String(), "reports: ")
	assert.Contains(t, errOut.String(), "scan failed")
}

func TestProcessLocalCache(t *testing.T) {
	assert.True(t, processLocalCache(cache.DriverMemory))
	assert.True(t, processLocalCache(cache.DriverHybrid))
	assert.False(t, processLocalCache(cache.DriverRedis))
	assert.False(t, processLocalCache(cache.DriverNone))
	assert.NotPanics(t, func() { warnLocalCache(cache.DriverMemory) })
}
