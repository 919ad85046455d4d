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

package icon

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SetExists accepts exactly the given names.
func SetExists(names ...string) Exists {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[name]
		return ok
	}
}

// DirExists accepts a name when "{dir}/{name}.svg" exists. Answers are
// memoized for the lifetime of the returned function.
func DirExists(dir string) Exists {
	var seen sync.Map
	return func(name string) bool {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return false
		}
		if v, ok := seen.Load(name); ok {
			return v.(bool)
		}
		_, err := os.Stat(filepath.Join(dir, name+".svg"))
		ok := err == nil
		seen.Store(name, ok)
		return ok
	}
}

// Any accepts a name when one of fns does. Nil entries are skipped; with
// no usable entry the result is nil, which NewResolver treats as accept-all.
func Any(fns ...Exists) Exists {
	var usable []Exists
	for _, fn := range fns {
		if fn != nil {
			usable = append(usable, fn)
		}
	}
	switch len(usable) {
	case 0:
		return nil
	case 1:
		return usable[0]
	}
	return func(name string) bool {
		for _, fn := range usable {
			if fn(name) {
				return true
			}
		}
		return false
	}
}
