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

package cron

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	runs  map[string]int
	errs  map[string]int
	count int
}

func newRecorder() *recorder {
	return &recorder{runs: map[string]int{}, errs: map[string]int{}}
}

func (r *recorder) RecordJobRun(name string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[name]++
	if err != nil {
		r.errs[name]++
	}
}

func (r *recorder) UpdateJobsCount(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count = n
}

func TestScheduler_AddFunc(t *testing.T) {
	rec := newRecorder()
	s := New(rec)

	require.NoError(t, s.AddFunc("sync", "@every 1h", func() error { return nil }))
	assert.ErrorIs(t, s.AddFunc("sync", "@every 1h", func() error { return nil }), ErrDuplicateJob)
	assert.Error(t, s.AddFunc("bad", "not a spec", func() error { return nil }))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, rec.count)
}

func TestScheduler_RunRecordsErrorsAndPanics(t *testing.T) {
	rec := newRecorder()
	s := New(rec)

	s.run("ok", func() error { return nil })
	s.run("fail", func() error { return errors.New("x") })
	s.run("panic", func() error { panic("boom") })

	assert.Equal(t, 1, rec.runs["ok"])
	assert.Zero(t, rec.errs["ok"])
	assert.Equal(t, 1, rec.errs["fail"])
	assert.Equal(t, 1, rec.errs["panic"])
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.AddFunc("tick", "@every 1h", func() error { return nil }))

	s.Start()
	s.Start()
	assert.False(t, s.NextRun().IsZero())
	s.Stop()
	s.Stop()
}
