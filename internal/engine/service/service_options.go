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
	"strings"
	"unicode"

	"github.com/go-arcade/navmanager/internal/engine/model"
	"github.com/go-arcade/navmanager/internal/pkg/treetable"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ScopeOptions 面板配置
type ScopeOptions struct {
	// Path is the URL prefix of the scope, "admin" by default for scope "admin".
	Path       string
	GroupIcons map[string]string
}

// Options 导航引擎配置
type Options struct {
	CacheSeconds int
	BaseURL      string
	IconPrefix   string
	RootValues   []int64
	// RootLabel labels the top-level entry of parent select options.
	RootLabel string
	Scopes    map[string]ScopeOptions
}

func (o Options) scope(name string) ScopeOptions {
	s := o.Scopes[name]
	if s.Path == "" {
		s.Path = name
	}
	return s
}

// GroupIcon looks the group up by exact name, then case-insensitively
// since config keys arrive lower-cased.
func (s ScopeOptions) GroupIcon(group string) string {
	if v, ok := s.GroupIcons[group]; ok {
		return v
	}
	for k, v := range s.GroupIcons {
		if strings.EqualFold(k, group) {
			return v
		}
	}
	return ""
}

func (o Options) treeOptions() treetable.Options {
	return treetable.Options{RootValues: o.RootValues}
}

// KnownScopes lists the configured scope names.
func (o Options) KnownScopes() []string {
	out := make([]string, 0, len(o.Scopes))
	for name := range o.Scopes {
		out = append(out, name)
	}
	return out
}

var titleCaser = cases.Title(language.Und)

// headline turns an identifier such as "UserResource" or "audit_log-page"
// into "User Resource" / "Audit Log Page".
func headline(s string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, titleCaser.String(strings.ToLower(string(cur))))
			cur = cur[:0]
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			flush()
			continue
		case unicode.IsUpper(r) && i > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return strings.Join(words, " ")
}

func scopeOf(node model.NavNode, requested string) string {
	if node.Scope != "" {
		return node.Scope
	}
	return requested
}
