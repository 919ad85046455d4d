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

import "context"

// ActivePredicate reports whether the current route name selects an item.
type ActivePredicate func(routeName string) bool

// VisiblePredicate decides at render time whether the caller may see an item.
type VisiblePredicate func(ctx context.Context) bool

// Element is either a *Group or an *Item.
type Element interface {
	ElementLabel() string
}

// Group 导航分组
type Group struct {
	Label       string
	Icon        string
	Collapsed   bool
	Collapsible bool
	Sort        int
	Items       []*Item
}

func (g *Group) ElementLabel() string { return g.Label }

// Item 导航项
type Item struct {
	NodeID        int64
	Label         string
	Icon          string
	Badge         string
	BadgeColor    string
	BadgeTooltip  string
	URL           string
	OpensInNewTab bool
	Sort          int
	// IsActive and Visible are evaluated by the consumer per request.
	IsActive ActivePredicate
	Visible  VisiblePredicate
}

func (i *Item) ElementLabel() string { return i.Label }

func (i *Item) Active(routeName string) bool {
	return i.IsActive != nil && i.IsActive(routeName)
}

func (i *Item) VisibleTo(ctx context.Context) bool {
	return i.Visible == nil || i.Visible(ctx)
}

// Entry is the JSON rendering of a resolved Group or Item.
type Entry struct {
	Type          string  `json:"type"`
	Label         string  `json:"label"`
	Icon          string  `json:"icon,omitempty"`
	Badge         string  `json:"badge,omitempty"`
	BadgeColor    string  `json:"badgeColor,omitempty"`
	BadgeTooltip  string  `json:"badgeTooltip,omitempty"`
	URL           string  `json:"url,omitempty"`
	OpensInNewTab bool    `json:"opensInNewTab,omitempty"`
	Sort          int     `json:"sort"`
	Active        bool    `json:"active,omitempty"`
	Collapsed     bool    `json:"collapsed,omitempty"`
	Collapsible   bool    `json:"collapsible,omitempty"`
	Items         []Entry `json:"items,omitempty"`
}

const (
	EntryGroup = "group"
	EntryItem  = "item"
)
