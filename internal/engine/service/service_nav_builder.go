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
	"strings"
	"time"

	"github.com/go-arcade/navmanager/internal/engine/host"
	"github.com/go-arcade/navmanager/internal/engine/model"
	"github.com/go-arcade/navmanager/internal/pkg/icon"
	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/go-arcade/navmanager/pkg/metrics"
	"github.com/go-arcade/navmanager/pkg/safe"
	"github.com/go-arcade/navmanager/pkg/trace"
	"go.opentelemetry.io/otel/attribute"
)

// NavigationBuilder turns the visible tree of a scope into render-ready
// groups and items. The output is strictly two levels deep: a root with
// children becomes a Group whose items are all of its descendants, a root
// without children becomes a standalone Item.
type NavigationBuilder struct {
	cache   *NavigationCache
	targets host.TargetResolver
	routes  host.RouteRegistry
	perms   host.PermissionChecker
	icons   *icon.Resolver
	metrics *metrics.NavMetrics
	opts    Options
}

func NewNavigationBuilder(
	cache *NavigationCache,
	targets host.TargetResolver,
	routes host.RouteRegistry,
	perms host.PermissionChecker,
	icons *icon.Resolver,
	m *metrics.NavMetrics,
	opts Options,
) *NavigationBuilder {
	if perms == nil {
		perms = host.AllowAll{}
	}
	if icons == nil {
		icons = icon.NewResolver(nil)
	}
	return &NavigationBuilder{
		cache:   cache,
		targets: targets,
		routes:  routes,
		perms:   perms,
		icons:   icons,
		metrics: m,
		opts:    opts,
	}
}

// Build loads the tree data of scope (cached for Options.CacheSeconds) and
// converts it. Badges and predicates are never taken from the cache.
func (b *NavigationBuilder) Build(ctx context.Context, scope string) (elements []model.Element, err error) {
	start := time.Now()
	ctx, span := trace.Start(ctx, "navigation.build", attribute.String("scope", scope))
	defer func() {
		trace.End(span, err)
		b.metrics.ObserveBuild(scope, time.Since(start))
	}()

	data, err := b.cache.GetOrBuild(ctx, scope, b.opts.CacheSeconds)
	if err != nil {
		return nil, err
	}
	elements = b.Elements(ctx, data)
	span.SetAttributes(attribute.Int("elements", len(elements)))
	return elements, nil
}

// Elements converts tree data without touching the repository.
func (b *NavigationBuilder) Elements(ctx context.Context, data model.TreeData) []model.Element {
	out := make([]model.Element, 0, len(data.Roots))
	for _, root := range data.Roots {
		if el := b.element(ctx, data.Scope, root); el != nil {
			out = append(out, el)
		}
	}
	return out
}

func (b *NavigationBuilder) element(ctx context.Context, scope string, root model.TreeNode) model.Element {
	if len(root.Children) == 0 {
		item := b.item(ctx, scope, root, false)
		if item == nil {
			return nil
		}
		return item
	}

	group := &model.Group{
		Label:       root.Title,
		Icon:        b.icons.ResolveFor(root.Icon, root.ID, root.Title),
		Collapsed:   root.Collapsed,
		Collapsible: true,
		Sort:        root.Order,
	}
	b.collect(ctx, scope, root.Children, group.Icon != "", &group.Items)
	if len(group.Items) == 0 {
		return nil
	}
	return group
}

// collect appends nodes as items and hoists their descendants right after
// them, so nested nodes stay inside the same group.
func (b *NavigationBuilder) collect(ctx context.Context, scope string, nodes []model.TreeNode, ancestorHasIcon bool, items *[]*model.Item) {
	for _, n := range nodes {
		hasIcon := ancestorHasIcon
		if n.Kind != model.KindGroup {
			if item := b.item(ctx, scope, n, ancestorHasIcon); item != nil {
				*items = append(*items, item)
				hasIcon = hasIcon || item.Icon != ""
			}
		}
		if len(n.Children) > 0 {
			b.collect(ctx, scope, n.Children, hasIcon, items)
		}
	}
}

// determineIcon: a node keeps its own icon unless an ancestor already shows
// one and the node has children; a node without an icon takes the first
// icon found among its descendants, a parent with none gets StackIcon.
func determineIcon(n model.TreeNode, ancestorHasIcon bool) string {
	hasChildren := len(n.Children) > 0
	if strings.TrimSpace(n.Icon) != "" {
		if ancestorHasIcon && hasChildren {
			return ""
		}
		return n.Icon
	}
	if ancestorHasIcon {
		return ""
	}
	for _, c := range n.Children {
		if i := determineIcon(c, false); i != "" {
			return i
		}
	}
	if hasChildren {
		return icon.StackIcon
	}
	return ""
}

func (b *NavigationBuilder) item(ctx context.Context, scope string, n model.TreeNode, ancestorHasIcon bool) *model.Item {
	nodeScope := scopeOf(n.NavNode, scope)
	item := &model.Item{
		NodeID: n.ID,
		Label:  n.Title,
		Sort:   n.Order,
	}
	if raw := determineIcon(n, ancestorHasIcon); raw != "" {
		item.Icon = b.icons.ResolveFor(raw, n.ID, n.Title)
	}

	var entity *host.Entity
	if n.Kind.Discoverable() {
		e, err := b.lookup(ctx, nodeScope, n.Target)
		if err != nil {
			if !errors.Is(err, host.ErrTargetNotFound) {
				log.Warnw("navigation target lookup failed", "menu_id", n.ID, "target", n.Target, "error", err)
			}
			return nil
		}
		entity = e
	}

	if !b.applyDestination(item, n, nodeScope, entity) {
		return nil
	}
	b.applyBadge(ctx, item, n, nodeScope, entity)

	if patterns := activePatterns(n, nodeScope, entity); len(patterns) > 0 {
		item.IsActive = func(routeName string) bool {
			for _, p := range patterns {
				if host.MatchRoute(p, routeName) {
					return true
				}
			}
			return false
		}
	}
	if n.Permission != "" {
		permission := n.Permission
		item.Visible = func(ctx context.Context) bool {
			return b.perms.Can(ctx, permission)
		}
	}
	return item
}

func (b *NavigationBuilder) lookup(ctx context.Context, scope, target string) (*host.Entity, error) {
	if b.targets == nil || target == "" {
		return nil, host.ErrTargetNotFound
	}
	return safe.Call(func() (*host.Entity, error) {
		return b.targets.Lookup(ctx, scope, target)
	})
}

func (b *NavigationBuilder) applyDestination(item *model.Item, n model.TreeNode, scope string, entity *host.Entity) bool {
	switch n.Kind {
	case model.KindResource, model.KindPage:
		u, ok := b.entityURL(n, scope, entity)
		if !ok {
			return false
		}
		b.setURL(item, u)
	case model.KindUrl:
		u := n.Target
		if u == "" {
			u = n.URI
		}
		if u == "" {
			return false
		}
		b.setURL(item, u)
	case model.KindRoute:
		name := n.Target
		if name == "" {
			name = n.URI
		}
		if name == "" || b.routes == nil || !b.routes.Has(name) {
			return false
		}
		u, err := b.routes.URLFor(name)
		if err != nil {
			return false
		}
		item.URL = u
	default:
		if n.URI == "" || n.URI == model.GroupURI {
			return false
		}
		b.setURL(item, n.URI)
	}
	return true
}

// entityURL asks the entity for its scoped URL, then its scope-agnostic
// URL, then falls back to the synced uri.
func (b *NavigationBuilder) entityURL(n model.TreeNode, scope string, entity *host.Entity) (string, bool) {
	if entity.Linker != nil {
		for _, s := range []string{scope, ""} {
			u, err := safe.Call(func() (string, error) { return entity.Linker.URL(s) })
			if err == nil && u != "" {
				return u, true
			}
		}
	}
	if n.URI != "" && n.URI != model.GroupURI {
		return n.URI, true
	}
	log.Warnw("navigation target has no url", "menu_id", n.ID, "target", n.Target)
	return "", false
}

func (b *NavigationBuilder) setURL(item *model.Item, u string) {
	if host.IsExternal(u) {
		item.URL = u
		item.OpensInNewTab = true
		return
	}
	item.URL = host.JoinURL(b.opts.BaseURL, u)
}

// applyBadge: live badge of the entity first, persisted badge otherwise.
func (b *NavigationBuilder) applyBadge(ctx context.Context, item *model.Item, n model.TreeNode, scope string, entity *host.Entity) {
	if entity != nil && entity.Badger != nil {
		badge, err := safe.Call(func() (host.Badge, error) {
			return entity.Badger.NavigationBadge(ctx, scope)
		})
		if err == nil {
			item.Badge = badge.Value
			item.BadgeColor = badge.Color
			item.BadgeTooltip = badge.Tooltip
			return
		}
		log.Debugw("live badge failed, using stored badge", "menu_id", n.ID, "error", err)
	}
	if n.Badge != "" {
		item.Badge = n.Badge
		item.BadgeColor = n.BadgeColor
	}
}

func activePatterns(n model.TreeNode, scope string, entity *host.Entity) []string {
	switch n.Kind {
	case model.KindResource, model.KindPage:
		if entity == nil {
			return nil
		}
		return []string{entity.ActivePattern(scope)}
	default:
		name := n.Target
		if name == "" {
			name = n.URI
		}
		if name == "" || name == model.GroupURI {
			return nil
		}
		return []string{name}
	}
}

// Resolve evaluates the per-request predicates: items the caller may not
// see are removed, groups left empty are removed, and Active is set for
// items matching routeName.
func (b *NavigationBuilder) Resolve(ctx context.Context, elements []model.Element, routeName string) []model.Entry {
	out := make([]model.Entry, 0, len(elements))
	for _, el := range elements {
		switch v := el.(type) {
		case *model.Item:
			if entry, ok := resolveItem(ctx, v, routeName); ok {
				out = append(out, entry)
			}
		case *model.Group:
			entry := model.Entry{
				Type:        model.EntryGroup,
				Label:       v.Label,
				Icon:        v.Icon,
				Sort:        v.Sort,
				Collapsed:   v.Collapsed,
				Collapsible: v.Collapsible,
			}
			for _, it := range v.Items {
				if e, ok := resolveItem(ctx, it, routeName); ok {
					entry.Items = append(entry.Items, e)
					entry.Active = entry.Active || e.Active
				}
			}
			if len(entry.Items) > 0 {
				out = append(out, entry)
			}
		}
	}
	return out
}

func resolveItem(ctx context.Context, it *model.Item, routeName string) (model.Entry, bool) {
	if !it.VisibleTo(ctx) {
		return model.Entry{}, false
	}
	return model.Entry{
		Type:          model.EntryItem,
		Label:         it.Label,
		Icon:          it.Icon,
		Badge:         it.Badge,
		BadgeColor:    it.BadgeColor,
		BadgeTooltip:  it.BadgeTooltip,
		URL:           it.URL,
		OpensInNewTab: it.OpensInNewTab,
		Sort:          it.Sort,
		Active:        it.Active(routeName),
	}, true
}

// WrapItems puts every standalone root item into a group without a label,
// for consumers that only render groups.
func WrapItems(elements []model.Element) []*model.Group {
	out := make([]*model.Group, 0, len(elements))
	for _, el := range elements {
		switch v := el.(type) {
		case *model.Group:
			out = append(out, v)
		case *model.Item:
			out = append(out, &model.Group{Sort: v.Sort, Items: []*model.Item{v}})
		}
	}
	return out
}
