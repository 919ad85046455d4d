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

package model

import (
	"fmt"
	"strings"
)

// Kind 导航节点类型
type Kind string

const (
	KindGroup    Kind = "group"
	KindResource Kind = "resource"
	KindPage     Kind = "page"
	KindRoute    Kind = "route"
	KindUrl      Kind = "url"
)

var kinds = []Kind{KindGroup, KindResource, KindPage, KindRoute, KindUrl}

// ParseKind accepts any casing of a known kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown navigation kind %q", s)
	}
	return k, nil
}

func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Discoverable reports whether nodes of this kind point at a host entity.
func (k Kind) Discoverable() bool {
	return k == KindResource || k == KindPage
}

const (
	// RootParent 顶级节点的 parent_id
	RootParent int64 = 0
	// ExtensionDiscovery marks rows written by the synchronizer.
	ExtensionDiscovery = "discovery"
	// GroupURI 分组节点不可导航
	GroupURI = "#"
)

// NavNode 导航节点表
type NavNode struct {
	BaseModel
	ParentID   int64  `gorm:"column:parent_id;not null;default:0;index:idx_nav_parent" json:"parentId"` // 父节点ID（0 表示顶级）
	Scope      string `gorm:"column:panel;size:64;index:idx_nav_parent" json:"scope"`                   // 所属面板，为空表示全部面板
	Order      int    `gorm:"column:order;not null;default:0" json:"order"`                             // 同级排序（数值越小越靠前）
	Title      string `gorm:"column:title;size:255;not null" json:"title"`
	Kind       Kind   `gorm:"column:type;size:32;not null" json:"kind"`
	Icon       string `gorm:"column:icon;size:255" json:"icon"`
	URI        string `gorm:"column:uri;size:1024" json:"uri"`
	Target     string `gorm:"column:target;size:255;index" json:"target"` // 资源/页面标识或路由名
	Extension  string `gorm:"column:extension;size:64" json:"extension"`
	Visible    bool   `gorm:"column:show;not null" json:"visible"`
	Badge      string `gorm:"column:badge;size:64" json:"badge"`
	BadgeColor string `gorm:"column:badge_color;size:32" json:"badgeColor"`
	Collapsed  bool   `gorm:"column:is_collapsed;not null" json:"collapsed"`
	Permission string `gorm:"column:permission;size:255" json:"permission"` // 为空表示不限制
}

func (NavNode) TableName() string {
	return "t_nav_manager"
}

func (n NavNode) TreeKey() int64    { return n.ID }
func (n NavNode) TreeParent() int64 { return n.ParentID }
func (n NavNode) TreeOrder() int    { return n.Order }
func (n NavNode) TreeTitle() string { return n.Title }

// NormalizeParent maps every root sentinel onto RootParent.
func NormalizeParent(parentID int64) int64 {
	if parentID <= RootParent {
		return RootParent
	}
	return parentID
}

// TreeNode is the cached, pre-render shape of one visible node. It carries
// no closures so it can be serialized as-is.
type TreeNode struct {
	NavNode
	Children []TreeNode `json:"children,omitempty"`
}

// TreeData is the visible forest of one scope.
type TreeData struct {
	Scope string     `json:"scope"`
	Roots []TreeNode `json:"roots"`
}

// Count returns the number of nodes in the forest.
func (t TreeData) Count() int {
	var walk func([]TreeNode) int
	walk = func(nodes []TreeNode) int {
		n := len(nodes)
		for _, c := range nodes {
			n += walk(c.Children)
		}
		return n
	}
	return walk(t.Roots)
}
