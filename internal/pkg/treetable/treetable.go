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

// Package treetable linearizes a parent-linked record set into the
// depth-first row order used by the expandable admin tree table.
package treetable

import (
	"cmp"
	"fmt"
	"slices"
)

// Node is a record that can be placed in the tree table.
type Node interface {
	TreeKey() int64
	TreeParent() int64
	TreeOrder() int
}

// Root is the canonical "no parent" value after normalization.
const Root int64 = 0

// DefaultRootValues are the parent values treated as "no parent".
var DefaultRootValues = []int64{0, -1}

// HiddenClass marks rows that start collapsed under their parent.
const HiddenClass = "hidden"

type Options struct {
	RootValues []int64
}

func (o Options) isRoot(parent int64) bool {
	roots := o.RootValues
	if len(roots) == 0 {
		roots = DefaultRootValues
	}
	return slices.Contains(roots, parent)
}

// Normalize maps any configured root sentinel to Root.
func (o Options) Normalize(parent int64) int64 {
	if o.isRoot(parent) {
		return Root
	}
	return parent
}

// Row is a flattened record with its display annotations.
type Row[T Node] struct {
	Node        T
	Depth       int
	HasChildren bool
	// Orphan is set when the parent could not be reached from a root; the
	// row is then shown as a synthetic root.
	Orphan  bool
	Classes string
}

func byOrderThenKey[T Node](a, b T) int {
	if c := cmp.Compare(a.TreeOrder(), b.TreeOrder()); c != 0 {
		return c
	}
	return cmp.Compare(a.TreeKey(), b.TreeKey())
}

func groupByParent[T Node](records []T, opts Options) map[int64][]T {
	grouped := make(map[int64][]T)
	for _, r := range records {
		p := opts.Normalize(r.TreeParent())
		grouped[p] = append(grouped[p], r)
	}
	for _, children := range grouped {
		slices.SortStableFunc(children, byOrderThenKey[T])
	}
	return grouped
}

// Build returns every record exactly once: first the depth-first walk from
// the roots ordered by (order, key) at each level, then any unreachable
// record (missing parent, cycle, parent outside the set) ordered by
// (parent, order, key) and walked as a synthetic root.
func Build[T Node](records []T, opts Options) []Row[T] {
	grouped := groupByParent(records, opts)
	visited := make(map[int64]bool, len(records))
	rows := make([]Row[T], 0, len(records))

	type frame struct {
		node   T
		depth  int
		orphan bool
	}
	walk := func(start []frame) {
		stack := slices.Clone(start)
		slices.Reverse(stack)
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			key := f.node.TreeKey()
			if visited[key] {
				continue
			}
			visited[key] = true

			children := grouped[key]
			classes := ""
			if f.depth > 0 {
				classes = fmt.Sprintf("pr-%d %s", f.node.TreeParent(), HiddenClass)
			}
			rows = append(rows, Row[T]{
				Node:        f.node,
				Depth:       f.depth,
				HasChildren: len(children) > 0,
				Orphan:      f.orphan,
				Classes:     classes,
			})
			for i := len(children) - 1; i >= 0; i-- {
				if !visited[children[i].TreeKey()] {
					stack = append(stack, frame{node: children[i], depth: f.depth + 1})
				}
			}
		}
	}

	roots := make([]frame, 0, len(grouped[Root]))
	for _, r := range grouped[Root] {
		roots = append(roots, frame{node: r})
	}
	walk(roots)

	if len(visited) == len(records) {
		return rows
	}

	var leftovers []T
	for _, r := range records {
		if !visited[r.TreeKey()] {
			leftovers = append(leftovers, r)
		}
	}
	slices.SortStableFunc(leftovers, func(a, b T) int {
		if c := cmp.Compare(opts.Normalize(a.TreeParent()), opts.Normalize(b.TreeParent())); c != 0 {
			return c
		}
		return byOrderThenKey(a, b)
	})
	for _, r := range leftovers {
		walk([]frame{{node: r, orphan: true}})
	}
	return rows
}

// Flatten is Build without the annotations.
func Flatten[T Node](records []T, opts Options) []T {
	rows := Build(records, opts)
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.Node
	}
	return out
}

// Orphans returns the keys of records that were not reachable from a root.
func Orphans[T Node](rows []Row[T]) []int64 {
	var keys []int64
	for _, r := range rows {
		if r.Orphan {
			keys = append(keys, r.Node.TreeKey())
		}
	}
	return keys
}

// Depth counts the ancestors of key inside records. It stops at a root, a
// missing parent or a repeated ancestor; -1 means key is not in records.
func Depth[T Node](records []T, key int64, opts Options) int {
	byKey := make(map[int64]T, len(records))
	for _, r := range records {
		byKey[r.TreeKey()] = r
	}
	cur, ok := byKey[key]
	if !ok {
		return -1
	}
	seen := map[int64]bool{key: true}
	depth := 0
	for {
		parent := opts.Normalize(cur.TreeParent())
		if parent == Root || seen[parent] {
			return depth
		}
		next, ok := byKey[parent]
		if !ok {
			return depth
		}
		seen[parent] = true
		depth++
		cur = next
	}
}
