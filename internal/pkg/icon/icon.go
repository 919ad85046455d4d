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

// Package icon normalizes and validates icon identifiers of the form
// "{prefix}{variant}-{name}", e.g. "heroicon-o-users".
package icon

import (
	"strings"

	"github.com/go-arcade/navmanager/pkg/log"
)

const (
	DefaultPrefix = "heroicon-"
	// StackIcon is the fallback for a node with children and no icon anywhere in its subtree.
	StackIcon = "heroicon-o-rectangle-stack"
)

// DefaultVariants lists variant segments in lookup order: outline, mini, micro, solid.
var DefaultVariants = []string{"o", "m", "c", "s"}

// Exists reports whether a fully-qualified icon name can be rendered.
type Exists func(name string) bool

type Resolver struct {
	exists   Exists
	prefix   string
	variants []string
	debug    bool
}

type Option func(*Resolver)

func WithPrefix(prefix string) Option {
	return func(r *Resolver) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

func WithVariants(variants ...string) Option {
	return func(r *Resolver) {
		if len(variants) > 0 {
			r.variants = variants
		}
	}
}

// WithDebug logs every name that fails to resolve.
func WithDebug(debug bool) Option {
	return func(r *Resolver) {
		r.debug = debug
	}
}

// NewResolver returns a Resolver; a nil exists accepts every name.
func NewResolver(exists Exists, opts ...Option) *Resolver {
	if exists == nil {
		exists = func(string) bool { return true }
	}
	r := &Resolver{
		exists:   exists,
		prefix:   DefaultPrefix,
		variants: DefaultVariants,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the fully-qualified name for raw, or "" when raw is blank
// or resolves under no variant.
func (r *Resolver) Resolve(raw string) string {
	name, _ := r.resolve(raw)
	return name
}

// ResolveFor is Resolve with the owning node attached to the debug diagnostic.
func (r *Resolver) ResolveFor(raw string, nodeID int64, title string) string {
	name, reason := r.resolve(raw)
	if name == "" && reason != "" && r.debug {
		log.Warnw(reason, "icon", raw, "menu_id", nodeID, "menu_title", title)
	}
	return name
}

func (r *Resolver) resolve(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}

	rest, prefixed := strings.CutPrefix(raw, r.prefix)
	if prefixed && r.hasVariant(rest) {
		if r.exists(raw) {
			return raw, ""
		}
		return "", "navigation icon not found"
	}

	for _, v := range r.variants {
		candidate := r.prefix + v + "-" + rest
		if r.exists(candidate) {
			return candidate, ""
		}
	}
	if prefixed {
		return "", "navigation icon format invalid (missing variant)"
	}
	return "", "navigation icon not found (tried variants)"
}

func (r *Resolver) hasVariant(rest string) bool {
	for _, v := range r.variants {
		if strings.HasPrefix(rest, v+"-") {
			return true
		}
	}
	return false
}

// Normalize prefixes raw with prefix when missing. It does not validate.
func Normalize(raw, prefix string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if strings.HasPrefix(raw, prefix) {
		return raw
	}
	return prefix + raw
}
