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

package database

import (
	"sync"

	"gorm.io/gorm"
)

var (
	registryMu       sync.Mutex
	registeredModels []any
)

// RegisterModels adds models to the AutoMigrate set. Packages call it from init.
func RegisterModels(models ...any) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registeredModels = append(registeredModels, models...)
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(GetRegisteredModels()...)
}

func GetRegisteredModels() []any {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]any, len(registeredModels))
	copy(out, registeredModels)
	return out
}
