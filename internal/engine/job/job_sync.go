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
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-arcade/navmanager/pkg/cron"
	"github.com/go-arcade/navmanager/pkg/log"
	"golang.org/x/sync/errgroup"
)

// ErrBusy is returned by TryRun when a sync of the same scope is in flight.
var ErrBusy = errors.New("navigation sync already running")

const jobPrefix = "navigation-sync:"

// Syncer is satisfied by service.TreeSynchronizer.
type Syncer interface {
	Sync(ctx context.Context, scope string) (int, error)
}

// SyncRunner serializes synchronization per scope. HTTP handlers, the CLI
// and scheduled jobs all go through the same runner so two writers never
// merge into one scope concurrently.
type SyncRunner struct {
	syncer  Syncer
	timeout time.Duration
	locks   sync.Map // scope -> *sync.Mutex
}

// NewSyncRunner 创建同步执行器，timeout <= 0 表示不限制单次同步时长
func NewSyncRunner(syncer Syncer, timeout time.Duration) *SyncRunner {
	return &SyncRunner{syncer: syncer, timeout: timeout}
}

func (r *SyncRunner) lock(scope string) *sync.Mutex {
	m, _ := r.locks.LoadOrStore(scope, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// Run waits for any in-flight sync of scope, then syncs it.
func (r *SyncRunner) Run(ctx context.Context, scope string) (int, error) {
	mu := r.lock(scope)
	mu.Lock()
	defer mu.Unlock()
	return r.run(ctx, scope)
}

// TryRun syncs scope unless another sync of it is running.
func (r *SyncRunner) TryRun(ctx context.Context, scope string) (int, error) {
	mu := r.lock(scope)
	if !mu.TryLock() {
		return 0, fmt.Errorf("%w: %s", ErrBusy, scope)
	}
	defer mu.Unlock()
	return r.run(ctx, scope)
}

func (r *SyncRunner) run(ctx context.Context, scope string) (int, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	n, err := r.syncer.Sync(ctx, scope)
	if err != nil {
		log.Errorw("navigation sync failed", "scope", scope, "error", err)
		return n, err
	}
	log.Infow("navigation synced", "scope", scope, "items", n, "elapsed", time.Since(start))
	return n, nil
}

// RunAll syncs every scope concurrently, one goroutine per scope. Counts of
// successful scopes are returned even when others fail.
func (r *SyncRunner) RunAll(ctx context.Context, scopes []string) (map[string]int, error) {
	scopes = uniqueScopes(scopes)
	counts := make(map[string]int, len(scopes))
	errs := make([]error, len(scopes))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, scope := range scopes {
		g.Go(func() error {
			n, err := r.Run(gctx, scope)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", scope, err)
				return nil
			}
			mu.Lock()
			counts[scope] = n
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return counts, errors.Join(errs...)
}

// Schedule registers one cron job per scope. An empty spec schedules
// nothing. Scheduled runs skip a scope that is already being synced.
func (r *SyncRunner) Schedule(s *cron.Scheduler, spec string, scopes []string) error {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	for _, scope := range uniqueScopes(scopes) {
		err := s.AddFunc(JobName(scope), spec, func() error {
			_, err := r.TryRun(context.Background(), scope)
			if errors.Is(err, ErrBusy) {
				log.Debugw("scheduled sync skipped", "scope", scope)
				return nil
			}
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// JobName is the cron job name used for scope.
func JobName(scope string) string {
	return jobPrefix + scope
}

func uniqueScopes(scopes []string) []string {
	seen := make(map[string]struct{}, len(scopes))
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
