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
	"fmt"
	"sync"
	"time"

	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/go-arcade/navmanager/pkg/safe"
	"github.com/robfig/cron"
)

var ErrDuplicateJob = errors.New("job already registered")

// MetricsRecorder receives one call per job run.
type MetricsRecorder interface {
	RecordJobRun(jobName string, duration time.Duration, err error)
	UpdateJobsCount(count int)
}

// Scheduler runs named jobs on cron specs. Specs use the six-field form
// (seconds first) or descriptors such as "@every 10m".
type Scheduler struct {
	mu       sync.Mutex
	cron     *cron.Cron
	names    map[string]struct{}
	recorder MetricsRecorder
	running  bool
}

func New(recorder MetricsRecorder) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		names:    map[string]struct{}{},
		recorder: recorder,
	}
}

// AddFunc registers fn under name. A panic inside fn is recovered and
// counted as an error.
func (s *Scheduler) AddFunc(name, spec string, fn func() error) error {
	if _, err := cron.Parse(spec); err != nil {
		return fmt.Errorf("invalid spec %q for job %s: %w", spec, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.names[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	err := s.cron.AddFunc(spec, func() { s.run(name, fn) })
	if err != nil {
		return err
	}
	s.names[name] = struct{}{}
	if s.recorder != nil {
		s.recorder.UpdateJobsCount(len(s.names))
	}
	log.Infow("scheduled job registered", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) run(name string, fn func() error) {
	start := time.Now()
	var jobErr error
	if err := safe.Do(func() { jobErr = fn() }); err != nil {
		jobErr = err
	}
	elapsed := time.Since(start)

	if jobErr != nil {
		log.Errorw("scheduled job failed", "job", name, "elapsed", elapsed, "error", jobErr)
	} else {
		log.Debugw("scheduled job finished", "job", name, "elapsed", elapsed)
	}
	if s.recorder != nil {
		s.recorder.RecordJobRun(name, elapsed, jobErr)
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.cron.Stop()
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.names)
}

// NextRun returns the earliest upcoming run, zero when nothing is scheduled
// or the scheduler is stopped.
func (s *Scheduler) NextRun() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if e.Next.IsZero() {
			continue
		}
		if next.IsZero() || e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}
