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

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-arcade/navmanager/internal/engine/model"
	"github.com/go-arcade/navmanager/internal/engine/repo"
	"github.com/go-arcade/navmanager/internal/pkg/treetable"
	"github.com/go-arcade/navmanager/pkg/cache"
	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/go-arcade/navmanager/pkg/metrics"
)

const navigationKeyPrefix = "nav-manager:navigation:"

// NavigationKey is the cache key of a scope's tree data.
func NavigationKey(scope string) string {
	return navigationKeyPrefix + scope
}

// NavigationCache memoizes the visible tree data of a scope. Only the
// closure-free TreeData is cached; elements are rebuilt from it per call.
// Every mutation path must call Invalidate.
type NavigationCache struct {
	repo  repo.INavNodeRepository
	query *cache.CachedQuery[model.TreeData]
	opts  Options

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewNavigationCache wires the tree loader behind CachedQuery. A nil store
// disables caching.
func NewNavigationCache(r repo.INavNodeRepository, store cache.ICache, m *metrics.NavMetrics, opts Options) *NavigationCache {
	c := &NavigationCache{
		repo: r,
		opts: opts,
		seen: make(map[string]struct{}),
	}
	c.query = cache.NewCachedQuery(
		store,
		func(params ...any) string { return NavigationKey(params[0].(string)) },
		c.load,
		cache.WithName[model.TreeData]("navigation"),
		cache.WithObserver[model.TreeData](func(_ string, hit bool) { m.ObserveCache(hit) }),
	)
	return c
}

// GetOrBuild returns the tree data of scope. ttlSeconds <= 0 always reads
// the repository.
func (c *NavigationCache) GetOrBuild(ctx context.Context, scope string, ttlSeconds int) (model.TreeData, error) {
	c.mu.Lock()
	c.seen[scope] = struct{}{}
	c.mu.Unlock()
	return c.query.GetWithTTL(ctx, time.Duration(ttlSeconds)*time.Second, scope)
}

// Invalidate drops the cached tree of scope. The empty scope holds nodes
// shared by every scope, so it drops all of them.
func (c *NavigationCache) Invalidate(ctx context.Context, scope string) error {
	if scope == "" {
		return c.InvalidateAll(ctx)
	}
	return c.query.Invalidate(ctx, scope)
}

// InvalidateAll drops every configured or previously built scope.
func (c *NavigationCache) InvalidateAll(ctx context.Context) error {
	scopes := map[string]struct{}{"": {}}
	for _, s := range c.opts.KnownScopes() {
		scopes[s] = struct{}{}
	}
	c.mu.Lock()
	for s := range c.seen {
		scopes[s] = struct{}{}
	}
	c.mu.Unlock()

	var errs []error
	for s := range scopes {
		if err := c.query.Invalidate(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *NavigationCache) load(ctx context.Context, params ...any) (model.TreeData, error) {
	scope := params[0].(string)
	nodes, err := c.repo.List(ctx, scope)
	if err != nil {
		return model.TreeData{}, fmt.Errorf("load navigation nodes: %w", err)
	}
	return BuildTreeData(scope, nodes, c.opts.treeOptions()), nil
}

// BuildTreeData arranges nodes into the visible forest. A hidden node hides
// its whole subtree. Nodes whose parent cannot be reached become extra
// roots after the regular ones.
func BuildTreeData(scope string, nodes []model.NavNode, opts treetable.Options) model.TreeData {
	rows := treetable.Build(nodes, opts)
	children := make(map[int64][]model.NavNode)
	for _, r := range rows {
		if r.Depth > 0 {
			children[r.Node.ParentID] = append(children[r.Node.ParentID], r.Node)
		}
	}

	var grow func(n model.NavNode) model.TreeNode
	grow = func(n model.NavNode) model.TreeNode {
		t := model.TreeNode{NavNode: n}
		for _, c := range children[n.ID] {
			if c.Visible {
				t.Children = append(t.Children, grow(c))
			}
		}
		return t
	}

	data := model.TreeData{Scope: scope, Roots: []model.TreeNode{}}
	for _, r := range rows {
		if r.Depth != 0 {
			continue
		}
		if r.Orphan {
			log.Warnw("navigation node parent not reachable, treated as root",
				"scope", scope, "menu_id", r.Node.ID, "parent_id", r.Node.ParentID)
		}
		if r.Node.Visible {
			data.Roots = append(data.Roots, grow(r.Node))
		}
	}
	return data
}
