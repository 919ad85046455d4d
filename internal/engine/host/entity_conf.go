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
	"fmt"
	"strings"

	"github.com/go-arcade/navmanager/internal/engine/model"
)

// EntityConf is the declarative form of an Entity, used by the config file
// and by manifest files. Discovered and Navigation default to true.
type EntityConf struct {
	Identity   string `mapstructure:"identity" yaml:"identity"`
	Kind       string `mapstructure:"kind" yaml:"kind"`
	Label      string `mapstructure:"label" yaml:"label"`
	Group      string `mapstructure:"group" yaml:"group"`
	Sort       *int   `mapstructure:"sort" yaml:"sort"`
	Icon       string `mapstructure:"icon" yaml:"icon"`
	Slug       string `mapstructure:"slug" yaml:"slug"`
	Route      string `mapstructure:"route" yaml:"route"`
	URL        string `mapstructure:"url" yaml:"url"`
	Discovered *bool  `mapstructure:"discovered" yaml:"discovered"`
	Navigation *bool  `mapstructure:"navigation" yaml:"navigation"`
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// Entity converts the declaration. A fixed URL becomes a Linker.
func (c EntityConf) Entity() (Entity, error) {
	if strings.TrimSpace(c.Identity) == "" {
		return Entity{}, fmt.Errorf("entity identity is required")
	}
	kind := model.KindResource
	if c.Kind != "" {
		k, err := model.ParseKind(c.Kind)
		if err != nil {
			return Entity{}, err
		}
		if !k.Discoverable() {
			return Entity{}, fmt.Errorf("entity %s: kind %s cannot be discovered", c.Identity, k)
		}
		kind = k
	}
	e := Entity{
		Identity:     c.Identity,
		Kind:         kind,
		Label:        c.Label,
		Group:        c.Group,
		Sort:         c.Sort,
		Icon:         c.Icon,
		Slug:         c.Slug,
		Route:        c.Route,
		Discovered:   boolOr(c.Discovered, true),
		ShouldAppear: boolOr(c.Navigation, true),
	}
	if c.URL != "" {
		e.Linker = StaticURL(c.URL)
	}
	return e, nil
}

// StaticURL is a Linker that always answers the same URL.
type StaticURL string

func (u StaticURL) URL(string) (string, error) {
	return string(u), nil
}
