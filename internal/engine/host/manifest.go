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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var ErrNoManifestDir = errors.New("no manifest directory configured")

type manifestFile struct {
	Entities []EntityConf `yaml:"entities"`
}

// ManifestDiscoverer reads entity manifests (*.yaml, *.yml) from one
// directory per scope. Files are read in name order; the first declaration
// of an identity wins.
type ManifestDiscoverer struct {
	dirs map[string]string

	mu     sync.RWMutex
	loaded map[string][]Entity
}

func NewManifestDiscoverer(dirs map[string]string) *ManifestDiscoverer {
	return &ManifestDiscoverer{
		dirs:   dirs,
		loaded: make(map[string][]Entity),
	}
}

func (d *ManifestDiscoverer) Discover(ctx context.Context, scope string) ([]Entity, error) {
	dir := d.dirs[scope]
	if dir == "" {
		return nil, fmt.Errorf("%w: scope %q", ErrNoManifestDir, scope)
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read manifest dir %s: %w", dir, err)
	}

	var entities []Entity
	seen := make(map[string]bool)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ext := strings.ToLower(filepath.Ext(f.Name()))
		if f.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		parsed, err := readManifest(filepath.Join(dir, f.Name()))
		if err != nil {
			return nil, err
		}
		for _, e := range parsed {
			if seen[e.Identity] {
				continue
			}
			seen[e.Identity] = true
			entities = append(entities, e)
		}
	}

	d.mu.Lock()
	d.loaded[scope] = entities
	d.mu.Unlock()
	return entities, nil
}

// Lookup answers from the last scan of the scope, scanning once if needed.
func (d *ManifestDiscoverer) Lookup(ctx context.Context, scope, identity string) (*Entity, error) {
	d.mu.RLock()
	entities, ok := d.loaded[scope]
	d.mu.RUnlock()
	if !ok {
		var err error
		if entities, err = d.Discover(ctx, scope); err != nil {
			return nil, err
		}
	}
	return find(entities, identity)
}

func readManifest(path string) ([]Entity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var mf manifestFile
	if err := yaml.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	out := make([]Entity, 0, len(mf.Entities))
	for _, c := range mf.Entities {
		e, err := c.Entity()
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", path, err)
		}
		out = append(out, e)
	}
	return out, nil
}
