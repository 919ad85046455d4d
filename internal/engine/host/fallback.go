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

	"github.com/go-arcade/navmanager/pkg/log"
)

// FallbackDiscoverer combines a directory scan with the in-process
// registry. Registered entities win over scanned ones with the same
// identity. When one source fails the other is used alone; only when both
// fail does Discover return an error.
type FallbackDiscoverer struct {
	Scanner  *ManifestDiscoverer
	Registry *Registry
}

func NewFallbackDiscoverer(scanner *ManifestDiscoverer, registry *Registry) *FallbackDiscoverer {
	return &FallbackDiscoverer{Scanner: scanner, Registry: registry}
}

func (d *FallbackDiscoverer) Discover(ctx context.Context, scope string) ([]Entity, error) {
	var (
		scanned, registered []Entity
		scanErr, regErr     = ErrNoManifestDir, errors.New("no registry")
	)
	if d.Scanner != nil {
		scanned, scanErr = d.Scanner.Discover(ctx, scope)
	}
	if d.Registry != nil {
		registered, regErr = d.Registry.Discover(ctx, scope)
	}

	switch {
	case scanErr == nil && regErr == nil:
		return mergeEntities(registered, scanned), nil
	case regErr == nil:
		if !errors.Is(scanErr, ErrNoManifestDir) {
			log.Warnw("entity scan failed, using registered entities", "scope", scope, "error", scanErr)
		}
		return registered, nil
	case scanErr == nil:
		return scanned, nil
	default:
		return nil, errors.Join(scanErr, regErr)
	}
}

func (d *FallbackDiscoverer) Lookup(ctx context.Context, scope, identity string) (*Entity, error) {
	if d.Registry != nil {
		if e, err := d.Registry.Lookup(ctx, scope, identity); err == nil {
			return e, nil
		}
	}
	if d.Scanner != nil {
		e, err := d.Scanner.Lookup(ctx, scope, identity)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, ErrTargetNotFound) && !errors.Is(err, ErrNoManifestDir) {
			return nil, err
		}
	}
	return nil, ErrTargetNotFound
}
