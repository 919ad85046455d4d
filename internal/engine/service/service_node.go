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
	"strings"

	"github.com/go-arcade/navmanager/internal/engine/model"
	"github.com/go-arcade/navmanager/internal/engine/repo"
	"github.com/go-arcade/navmanager/internal/pkg/icon"
	"github.com/go-arcade/navmanager/internal/pkg/treetable"
	"github.com/go-arcade/navmanager/pkg/log"
	"gorm.io/gorm"
)

// NodeInput 创建/更新节点的请求
type NodeInput struct {
	ParentID   int64  `json:"parentId"`
	Scope      string `json:"scope"`
	Order      int    `json:"order"`
	Title      string `json:"title"`
	Kind       string `json:"kind"`
	Icon       string `json:"icon"`
	URI        string `json:"uri"`
	Target     string `json:"target"`
	Visible    *bool  `json:"visible"`
	Badge      string `json:"badge"`
	BadgeColor string `json:"badgeColor"`
	Collapsed  bool   `json:"collapsed"`
	Permission string `json:"permission"`
}

// TreeRow 树形表格的一行
type TreeRow struct {
	model.NavNode
	Depth        int    `json:"depth"`
	HasChildren  bool   `json:"hasChildren"`
	Orphan       bool   `json:"orphan,omitempty"`
	Classes      string `json:"classes"`
	ResolvedIcon string `json:"resolvedIcon,omitempty"`
}

// NodeService is the admin surface over the navigation table. Every
// mutation invalidates the cached navigation of the affected scope.
type NodeService struct {
	repo  repo.INavNodeRepository
	cache *NavigationCache
	icons *icon.Resolver
	opts  Options
}

func NewNodeService(r repo.INavNodeRepository, cache *NavigationCache, icons *icon.Resolver, opts Options) *NodeService {
	if icons == nil {
		icons = icon.NewResolver(nil)
	}
	return &NodeService{repo: r, cache: cache, icons: icons, opts: opts}
}

func (s *NodeService) Get(ctx context.Context, id int64) (*model.NavNode, error) {
	node, err := s.repo.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return node, err
}

func (s *NodeService) List(ctx context.Context, scope string) ([]model.NavNode, error) {
	return s.repo.List(ctx, scope)
}

// Tree returns the scope's nodes in tree-table order.
func (s *NodeService) Tree(ctx context.Context, scope string) ([]TreeRow, error) {
	nodes, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	rows := treetable.Build(nodes, s.opts.treeOptions())
	out := make([]TreeRow, len(rows))
	for i, r := range rows {
		out[i] = TreeRow{
			NavNode:      r.Node,
			Depth:        r.Depth,
			HasChildren:  r.HasChildren,
			Orphan:       r.Orphan,
			Classes:      r.Classes,
			ResolvedIcon: s.icons.ResolveFor(r.Node.Icon, r.Node.ID, r.Node.Title),
		}
		if r.Orphan {
			log.Warnw("navigation node parent not reachable", "scope", scope, "menu_id", r.Node.ID, "parent_id", r.Node.ParentID)
		}
	}
	return out, nil
}

// SelectOptions lists candidate parents for a node, without except and its
// subtree. An empty rootLabel falls back to Options.RootLabel.
func (s *NodeService) SelectOptions(ctx context.Context, scope string, except int64, rootLabel string) ([]treetable.Option, error) {
	nodes, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	if rootLabel == "" {
		rootLabel = s.opts.RootLabel
	}
	return treetable.SelectOptions(nodes, except, rootLabel, s.opts.treeOptions()), nil
}

// Depth is the number of ancestors of id.
func (s *NodeService) Depth(ctx context.Context, id int64) (int, error) {
	node, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	nodes, err := s.repo.List(ctx, node.Scope)
	if err != nil {
		return 0, err
	}
	return treetable.Depth(nodes, id, s.opts.treeOptions()), nil
}

func (s *NodeService) Create(ctx context.Context, in NodeInput) (*model.NavNode, error) {
	node := &model.NavNode{Visible: true}
	if err := s.apply(ctx, node, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, node); err != nil {
		return nil, err
	}
	s.invalidate(ctx, node.Scope)
	return node, nil
}

func (s *NodeService) Update(ctx context.Context, id int64, in NodeInput) (*model.NavNode, error) {
	node, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldScope := node.Scope
	if err := s.apply(ctx, node, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, node); err != nil {
		return nil, err
	}
	s.invalidate(ctx, oldScope)
	if node.Scope != oldScope {
		s.invalidate(ctx, node.Scope)
	}
	return node, nil
}

func (s *NodeService) apply(ctx context.Context, node *model.NavNode, in NodeInput) error {
	kind, err := model.ParseKind(in.Kind)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidKind, in.Kind)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidNode)
	}
	scope := strings.TrimSpace(in.Scope)
	parentID := model.NormalizeParent(in.ParentID)
	if parentID != model.RootParent {
		if err := s.checkParent(ctx, node.ID, parentID, scope); err != nil {
			return err
		}
	}

	node.ParentID = parentID
	node.Scope = scope
	node.Order = in.Order
	node.Title = title
	node.Kind = kind
	node.Icon = strings.TrimSpace(in.Icon)
	node.URI = strings.TrimSpace(in.URI)
	node.Target = strings.TrimSpace(in.Target)
	if in.Visible != nil {
		node.Visible = *in.Visible
	}
	node.Badge = in.Badge
	node.BadgeColor = in.BadgeColor
	node.Collapsed = in.Collapsed
	node.Permission = strings.TrimSpace(in.Permission)
	return nil
}

// checkParent rejects a missing parent, a parent the node's scope cannot
// see and a parent inside the node's own subtree. id is 0 for a node that
// does not exist yet.
func (s *NodeService) checkParent(ctx context.Context, id, parentID int64, scope string) error {
	if id != 0 && parentID == id {
		return ErrCyclicParent
	}
	seen := map[int64]bool{}
	cur := parentID
	for cur != model.RootParent {
		if seen[cur] {
			// existing cycle above the new parent, not introduced by us
			break
		}
		seen[cur] = true
		p, err := s.repo.Get(ctx, cur)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if cur == parentID {
				return fmt.Errorf("%w: parent %d does not exist", ErrInvalidNode, parentID)
			}
			break
		}
		if err != nil {
			return err
		}
		if cur == parentID && p.Scope != "" && p.Scope != scope {
			return fmt.Errorf("%w: parent %d belongs to scope %q", ErrInvalidNode, parentID, p.Scope)
		}
		if id != 0 && p.ParentID == id {
			return ErrCyclicParent
		}
		cur = model.NormalizeParent(p.ParentID)
	}
	return nil
}

// Delete removes the node and all its descendants. Children of a shared
// node may live in any scope, so the subtree is walked by parent id.
func (s *NodeService) Delete(ctx context.Context, id int64) error {
	node, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	ids, scopes, err := s.subtree(ctx, node)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ids...); err != nil {
		return err
	}
	for scope := range scopes {
		s.invalidate(ctx, scope)
	}
	return nil
}

func (s *NodeService) subtree(ctx context.Context, root *model.NavNode) ([]int64, map[string]bool, error) {
	seen := map[int64]bool{root.ID: true}
	scopes := map[string]bool{root.Scope: true}
	out := []int64{root.ID}
	level := []int64{root.ID}
	for len(level) > 0 {
		children, err := s.repo.ListByParents(ctx, level...)
		if err != nil {
			return nil, nil, err
		}
		level = level[:0]
		for _, c := range children {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			scopes[c.Scope] = true
			out = append(out, c.ID)
			level = append(level, c.ID)
		}
	}
	return out, scopes, nil
}

func (s *NodeService) SetVisible(ctx context.Context, id int64, visible bool) error {
	node, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetVisible(ctx, id, visible); err != nil {
		return err
	}
	s.invalidate(ctx, node.Scope)
	return nil
}

// Reorder commits new sibling orders from a drag-and-drop.
func (s *NodeService) Reorder(ctx context.Context, orders map[int64]int) error {
	scopes := map[string]bool{}
	for id := range orders {
		node, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		scopes[node.Scope] = true
	}
	if err := s.repo.UpdateOrders(ctx, orders); err != nil {
		return err
	}
	for scope := range scopes {
		s.invalidate(ctx, scope)
	}
	return nil
}

func (s *NodeService) invalidate(ctx context.Context, scope string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, scope); err != nil {
		log.Warnw("failed to invalidate navigation cache", "scope", scope, "error", err)
	}
}
