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

package host

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/go-arcade/navmanager/internal/engine/model"
)

// Registry is the in-process list of entities, per scope. Entities
// registered under the empty scope appear in every scope.
type Registry struct {
	mu     sync.RWMutex
	scopes map[string][]Entity
}

func NewRegistry() *Registry {
	return &Registry{scopes: make(map[string][]Entity)}
}

// Register adds e to scope, binding the optional capabilities of impl.
// Registering the same identity again replaces it in place.
func (r *Registry) Register(scope string, e Entity, impl any) error {
	if e.Identity == "" {
		return fmt.Errorf("entity identity is required")
	}
	if e.Kind == "" {
		e.Kind = model.KindResource
	}
	if !e.Kind.Discoverable() {
		return fmt.Errorf("entity %s: kind %s cannot be discovered", e.Identity, e.Kind)
	}
	e.Bind(impl)

	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.scopes[scope]
	if i := slices.IndexFunc(list, func(x Entity) bool { return x.Identity == e.Identity }); i >= 0 {
		list[i] = e
		return nil
	}
	r.scopes[scope] = append(list, e)
	return nil
}

// RegisterConf registers declarative entities.
func (r *Registry) RegisterConf(scope string, confs ...EntityConf) error {
	for _, c := range confs {
		e, err := c.Entity()
		if err != nil {
			return err
		}
		if err := r.Register(scope, e, nil); err != nil {
			return err
		}
	}
	return nil
}

// Discover returns the scope's entities followed by the shared ones that
// the scope does not override.
func (r *Registry) Discover(_ context.Context, scope string) ([]Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := slices.Clone(r.scopes[scope])
	if scope == "" {
		return out, nil
	}
	return mergeEntities(out, r.scopes[""]), nil
}

func (r *Registry) Lookup(ctx context.Context, scope, identity string) (*Entity, error) {
	entities, _ := r.Discover(ctx, scope)
	return find(entities, identity)
}

func find(entities []Entity, identity string) (*Entity, error) {
	for i := range entities {
		if entities[i].Identity == identity {
			e := entities[i]
			return &e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, identity)
}

// mergeEntities keeps every entity of primary in order and appends the
// entities of secondary whose identity primary does not have.
func mergeEntities(primary, secondary []Entity) []Entity {
	seen := make(map[string]bool, len(primary))
	for _, e := range primary {
		seen[e.Identity] = true
	}
	for _, e := range secondary {
		if !seen[e.Identity] {
			seen[e.Identity] = true
			primary = append(primary, e)
		}
	}
	return primary
}
