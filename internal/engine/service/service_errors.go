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

import "errors"

var (
	ErrDiscoveryFailed = errors.New("entity discovery failed")
	ErrNodeNotFound    = errors.New("navigation node not found")
	ErrCyclicParent    = errors.New("parent would create a cycle")
	ErrInvalidKind     = errors.New("invalid navigation node kind")
	ErrInvalidNode     = errors.New("invalid navigation node")
	ErrScopeRequired   = errors.New("scope is required")
)
