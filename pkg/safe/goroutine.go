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

package safe

import (
	"fmt"
	"runtime/debug"

	"github.com/go-arcade/navmanager/pkg/log"
)

// Go starts a new goroutine to run the given function f safely.
func Go(f func()) {
	go func() {
		if err := Do(f); err != nil {
			log.Errorw("goroutine recovered from panic", "error", err)
		}
	}()
}

// Do runs f and converts a panic into an error carrying the recovered value.
func Do(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Debugw("recovered from panic", "panic", r, "stack", string(debug.Stack()))
			if e, ok := r.(error); ok {
				err = fmt.Errorf("recovered from panic: %w", e)
				return
			}
			err = fmt.Errorf("recovered from panic: %v", r)
		}
	}()
	f()
	return nil
}

// Call runs fn with panic isolation and returns its error or the recovered panic.
func Call[T any](fn func() (T, error)) (result T, err error) {
	perr := Do(func() {
		result, err = fn()
	})
	if perr != nil {
		var zero T
		return zero, perr
	}
	return result, err
}
