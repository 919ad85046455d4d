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
	"fmt"
	"strings"

	"github.com/go-arcade/navmanager/internal/engine/host"
	"github.com/go-arcade/navmanager/internal/engine/model"
	"github.com/go-arcade/navmanager/internal/engine/repo"
	"github.com/go-arcade/navmanager/internal/pkg/icon"
	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/go-arcade/navmanager/pkg/metrics"
	"github.com/go-arcade/navmanager/pkg/safe"
	"github.com/go-arcade/navmanager/pkg/trace"
	"go.opentelemetry.io/otel/attribute"
)

// TreeSynchronizer merges discovered entities into the persisted tree of a
// scope. Existing rows keep their order; entities that are not discovered
// are never written. Runs for the same scope must be serialized by the
// caller.
type TreeSynchronizer struct {
	repo       repo.INavNodeRepository
	discoverer host.Discoverer
	cache      *NavigationCache
	metrics    *metrics.NavMetrics
	opts       Options
}

func NewTreeSynchronizer(
	r repo.INavNodeRepository,
	discoverer host.Discoverer,
	cache *NavigationCache,
	m *metrics.NavMetrics,
	opts Options,
) *TreeSynchronizer {
	return &TreeSynchronizer{
		repo:       r,
		discoverer: discoverer,
		cache:      cache,
		metrics:    m,
		opts:       opts,
	}
}

// Sync returns the number of leaf nodes created or updated.
func (s *TreeSynchronizer) Sync(ctx context.Context, scope string) (synced int, err error) {
	if strings.TrimSpace(scope) == "" {
		return 0, ErrScopeRequired
	}
	ctx, span := trace.Start(ctx, "navigation.sync", attribute.String("scope", scope))
	defer func() {
		span.SetAttributes(attribute.Int("synced", synced))
		trace.End(span, err)
		s.metrics.ObserveSync(scope, synced, err)
	}()

	entities, err := safe.Call(func() ([]host.Entity, error) {
		return s.discoverer.Discover(ctx, scope)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDiscoveryFailed, err)
	}

	groupOrder, groupNames := collectGroups(entities)
	groupIDs, err := s.syncGroups(ctx, scope, groupNames, groupOrder)
	if err != nil {
		return 0, err
	}

	counter := len(groupNames) + 1
	for _, e := range entities {
		order := counter
		counter++
		if !e.Discovered {
			log.Debugw("entity not discovered, skipped", "scope", scope, "identity", e.Identity)
			continue
		}
		if hint, ok := e.SortHint(); ok {
			order = hint
		}
		if err := s.syncEntity(ctx, scope, e, groupIDs, order); err != nil {
			return synced, err
		}
		synced++
	}

	if err := s.renumberRoots(ctx, scope); err != nil {
		return synced, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, scope); err != nil {
			log.Warnw("failed to invalidate navigation cache after sync", "scope", scope, "error", err)
		}
	}
	log.Infow("navigation synced", "scope", scope, "entities", len(entities), "synced", synced)
	return synced, nil
}

// collectGroups numbers the distinct group names 1..N in first-seen order.
func collectGroups(entities []host.Entity) (map[string]int, []string) {
	order := make(map[string]int)
	var names []string
	for _, e := range entities {
		g := strings.TrimSpace(e.Group)
		if g == "" {
			continue
		}
		if _, ok := order[g]; !ok {
			names = append(names, g)
			order[g] = len(names)
		}
	}
	return order, names
}

func (s *TreeSynchronizer) syncGroups(ctx context.Context, scope string, names []string, order map[string]int) (map[string]int64, error) {
	scopeOpts := s.opts.scope(scope)
	ids := make(map[string]int64, len(names))
	for _, name := range names {
		groupIcon := icon.Normalize(scopeOpts.GroupIcon(name), s.opts.IconPrefix)
		existing, err := s.repo.FindGroup(ctx, scope, name)
		if err != nil {
			return nil, fmt.Errorf("find group %q: %w", name, err)
		}
		if existing != nil {
			existing.URI = model.GroupURI
			existing.Visible = true
			existing.Extension = model.ExtensionDiscovery
			if groupIcon != "" {
				existing.Icon = groupIcon
			}
			if err := s.repo.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("update group %q: %w", name, err)
			}
			ids[name] = existing.ID
			continue
		}
		group := &model.NavNode{
			ParentID:  model.RootParent,
			Scope:     scope,
			Order:     order[name],
			Title:     name,
			Kind:      model.KindGroup,
			Icon:      groupIcon,
			URI:       model.GroupURI,
			Extension: model.ExtensionDiscovery,
			Visible:   true,
		}
		if err := s.repo.Create(ctx, group); err != nil {
			return nil, fmt.Errorf("create group %q: %w", name, err)
		}
		ids[name] = group.ID
	}
	return ids, nil
}

func (s *TreeSynchronizer) syncEntity(ctx context.Context, scope string, e host.Entity, groups map[string]int64, order int) error {
	parentID := model.RootParent
	if id, ok := groups[strings.TrimSpace(e.Group)]; ok {
		parentID = id
	}
	label := s.entityLabel(scope, e)
	entityIcon := s.entityIcon(scope, e)
	uri := model.GroupURI
	if e.Slug != "" {
		uri = strings.Trim(s.opts.scope(scope).Path, "/") + "/" + strings.Trim(e.Slug, "/")
	}

	existing, err := s.repo.FindByTarget(ctx, scope, e.Kind, e.Identity)
	if err != nil {
		return fmt.Errorf("find %s %s: %w", e.Kind, e.Identity, err)
	}
	if existing != nil {
		existing.Title = label
		existing.ParentID = parentID
		existing.Icon = entityIcon
		existing.URI = uri
		existing.Extension = model.ExtensionDiscovery
		existing.Visible = e.ShouldAppear
		if err := s.repo.Update(ctx, existing); err != nil {
			return fmt.Errorf("update %s %s: %w", e.Kind, e.Identity, err)
		}
		return nil
	}

	node := &model.NavNode{
		ParentID:  parentID,
		Scope:     scope,
		Order:     order,
		Title:     label,
		Kind:      e.Kind,
		Icon:      entityIcon,
		URI:       uri,
		Target:    e.Identity,
		Extension: model.ExtensionDiscovery,
		Visible:   e.ShouldAppear,
	}
	if err := s.repo.Create(ctx, node); err != nil {
		return fmt.Errorf("create %s %s: %w", e.Kind, e.Identity, err)
	}
	return nil
}

// entityLabel: capability, then declared label, then the headlined basename.
func (s *TreeSynchronizer) entityLabel(scope string, e host.Entity) string {
	if e.Describer != nil {
		label, err := safe.Call(func() (string, error) { return e.Describer.NavigationLabel(scope) })
		if err != nil {
			log.Warnw("navigation label lookup failed", "scope", scope, "identity", e.Identity, "error", err)
		} else if label = strings.TrimSpace(label); label != "" {
			return label
		}
	}
	if e.Label != "" {
		return e.Label
	}
	return headline(e.Basename())
}

func (s *TreeSynchronizer) entityIcon(scope string, e host.Entity) string {
	raw := e.Icon
	if e.Describer != nil {
		v, err := safe.Call(func() (string, error) { return e.Describer.NavigationIcon(scope) })
		if err != nil {
			log.Warnw("navigation icon lookup failed", "scope", scope, "identity", e.Identity, "error", err)
		} else if strings.TrimSpace(v) != "" {
			raw = v
		}
	}
	return icon.Normalize(raw, s.opts.IconPrefix)
}

// renumberRoots assigns 1..N to the scope's root nodes by (order, id).
func (s *TreeSynchronizer) renumberRoots(ctx context.Context, scope string) error {
	roots, err := s.repo.ListChildren(ctx, scope, model.RootParent)
	if err != nil {
		return fmt.Errorf("list root nodes: %w", err)
	}
	orders := make(map[int64]int)
	for i, n := range roots {
		if n.Order != i+1 {
			orders[n.ID] = i + 1
		}
	}
	if err := s.repo.UpdateOrders(ctx, orders); err != nil {
		return fmt.Errorf("renumber root nodes: %w", err)
	}
	return nil
}
