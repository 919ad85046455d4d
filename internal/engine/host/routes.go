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
	"net/url"
	"strings"
)

// StaticRoutes is a RouteRegistry backed by a name → path table. Relative
// paths are joined onto the base URL. Names are case-insensitive since
// viper lowercases config map keys.
type StaticRoutes struct {
	base   string
	routes map[string]string
}

func NewStaticRoutes(baseURL string, routes map[string]string) *StaticRoutes {
	copied := make(map[string]string, len(routes))
	for k, v := range routes {
		copied[strings.ToLower(k)] = v
	}
	return &StaticRoutes{base: strings.TrimRight(baseURL, "/"), routes: copied}
}

func (r *StaticRoutes) Has(name string) bool {
	_, ok := r.routes[strings.ToLower(name)]
	return ok
}

func (r *StaticRoutes) URLFor(name string) (string, error) {
	p, ok := r.routes[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}
	return JoinURL(r.base, p), nil
}

// IsExternal reports whether u is an absolute http(s) URL.
func IsExternal(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(parsed.Scheme)
	return (scheme == "http" || scheme == "https") && parsed.Host != ""
}

// JoinURL resolves an internal path against base; external URLs are
// returned verbatim.
func JoinURL(base, p string) string {
	if IsExternal(p) {
		return p
	}
	base = strings.TrimRight(base, "/")
	if p == "" {
		if base == "" {
			return "/"
		}
		return base
	}
	return base + "/" + strings.TrimLeft(p, "/")
}
