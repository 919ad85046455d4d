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

package treetable

import (
	"strings"
)

const (
	glyphBranch = "├─"
	glyphLast   = "└─"
	glyphPipe   = "│"
	space       = "\u00a0" // nbsp keeps the indent in <option> text
)

// DefaultRootLabel is the label of the synthetic "no parent" option.
const DefaultRootLabel = "顶级"

// TitledNode is a Node with a display title.
type TitledNode interface {
	Node
	TreeTitle() string
}

// Option is one entry of a parent picker.
type Option struct {
	Value int64  `json:"value"`
	Label string `json:"label"`
}

// SelectOptions returns the parent picker entries: the root option first,
// then every node reachable from a root in depth-first order with tree
// glyphs. except and its whole subtree are left out so a node can never be
// re-parented under itself; pass Root to keep everything.
func SelectOptions[T TitledNode](records []T, except int64, rootLabel string, opts Options) []Option {
	if rootLabel == "" {
		rootLabel = DefaultRootLabel
	}
	grouped := groupByParent(records, opts)
	out := []Option{{Value: Root, Label: rootLabel}}
	visited := map[int64]bool{}

	var build func(parent int64, prefix string, depth int)
	build = func(parent int64, prefix string, depth int) {
		var children []T
		for _, c := range grouped[parent] {
			if k := c.TreeKey(); k != except && !visited[k] {
				children = append(children, c)
			}
		}
		for i, c := range children {
			key := c.TreeKey()
			visited[key] = true
			last := i == len(children)-1

			label := c.TreeTitle()
			childPrefix := strings.Repeat(space, 2)
			if depth > 0 {
				glyph := glyphBranch
				if last {
					glyph = glyphLast
				}
				label = prefix + glyph + space + label
				if last {
					childPrefix = prefix + strings.Repeat(space, 3)
				} else {
					childPrefix = prefix + glyphPipe + strings.Repeat(space, 2)
				}
			}
			out = append(out, Option{Value: key, Label: label})
			build(key, childPrefix, depth+1)
		}
	}
	build(Root, "", 0)
	return out
}
