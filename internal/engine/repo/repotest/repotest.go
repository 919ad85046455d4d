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

// Package repotest opens throwaway sqlite databases for tests.
package repotest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-arcade/navmanager/internal/engine/model"
	"github.com/go-arcade/navmanager/pkg/database"
	"github.com/stretchr/testify/require"
)

var seq atomic.Int64

// NewDB returns a migrated in-memory database private to t.
func NewDB(t testing.TB) database.IDatabase {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conf := database.Database{
		Driver: database.DriverSQLite,
		SQLite: database.SQLiteConfig{
			Path: fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1)),
		},
	}
	db, cleanup, err := database.NewDatabase(conf)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	require.NoError(t, db.AutoMigrate(&model.NavNode{}))
	return database.NewGormDB(db)
}
