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

// Package host holds the contracts between the navigation engine and the
// application it serves: entity discovery, target lookup, named routes and
// permission checks.
package host

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/go-arcade/navmanager/internal/engine/model"
)

var (
	ErrTargetNotFound = errors.New("navigation target not found")
	ErrRouteNotFound  = errors.New("route not registered")
	// ErrUnsupported is returned by capability wrappers when the entity
	// does not implement the capability.
	ErrUnsupported = errors.New("capability not supported")
)

// Describable lets an entity override its navigation label and icon.
type Describable interface {
	NavigationLabel(scope string) (string, error)
	NavigationIcon(scope string) (string, error)
}

// Badge is a live navigation decoration. Tooltip is optional.
type Badge struct {
	Value   string
	Color   string
	Tooltip string
}

// BadgeProvider computes a badge on every build.
type BadgeProvider interface {
	NavigationBadge(ctx context.Context, scope string) (Badge, error)
}

// Linker resolves the canonical URL of an entity. scope "" asks for the
// scope-agnostic URL.
type Linker interface {
	URL(scope string) (string, error)
}

// Entity is one discoverable resource or page.
type Entity struct {
	Identity string
	Kind     model.Kind
	Label    string
	Group    string
	Sort     *int
	Icon     string
	Slug     string
	// Route is the route base name of a resource or the route name of a page.
	Route        string
	Discovered   bool
	ShouldAppear bool

	Describer Describable
	Badger    BadgeProvider
	Linker    Linker
}

// Bind records which optional capabilities impl provides. It is done once
// when the entity is registered.
func (e *Entity) Bind(impl any) {
	if impl == nil {
		return
	}
	if d, ok := impl.(Describable); ok {
		e.Describer = d
	}
	if b, ok := impl.(BadgeProvider); ok {
		e.Badger = b
	}
	if l, ok := impl.(Linker); ok {
		e.Linker = l
	}
}

// SortHint returns the sort hint, or ok=false when none was given.
func (e Entity) SortHint() (int, bool) {
	if e.Sort == nil {
		return 0, false
	}
	return *e.Sort, true
}

// Basename is the last segment of the identity, e.g. "UserResource" for
// "App\\Admin\\UserResource" or "app/admin/user-resource".
func (e Entity) Basename() string {
	id := strings.TrimRight(e.Identity, `\/.`)
	if i := strings.LastIndexAny(id, `\/.`); i >= 0 {
		return id[i+1:]
	}
	return id
}

// ActivePattern is the route pattern that marks the entity active.
func (e Entity) ActivePattern(scope string) string {
	route := e.Route
	if route == "" {
		segment := "pages"
		if e.Kind == model.KindResource {
			segment = "resources"
		}
		slug := e.Slug
		if slug == "" {
			slug = strings.ToLower(e.Basename())
		}
		route = strings.Trim(scope+"."+segment+"."+slug, ".")
	}
	if e.Kind == model.KindResource {
		return route + ".*"
	}
	return route
}

// MatchRoute reports whether routeName matches pattern. Patterns use
// path.Match syntax, so "users.*" matches "users.index".
func MatchRoute(pattern, routeName string) bool {
	if pattern == "" || routeName == "" {
		return false
	}
	if pattern == routeName {
		return true
	}
	ok, err := path.Match(pattern, routeName)
	return err == nil && ok
}

// Discoverer enumerates the entities of a scope.
type Discoverer interface {
	Discover(ctx context.Context, scope string) ([]Entity, error)
}

// TargetResolver finds the entity a persisted node points at.
type TargetResolver interface {
	Lookup(ctx context.Context, scope, identity string) (*Entity, error)
}

// RouteRegistry knows the application's named routes.
type RouteRegistry interface {
	Has(name string) bool
	URLFor(name string) (string, error)
}

// PermissionChecker answers "can the current caller do X".
type PermissionChecker interface {
	Can(ctx context.Context, permission string) bool
}
