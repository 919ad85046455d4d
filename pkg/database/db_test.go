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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID   int64 `gorm:"primaryKey"`
	Name string
}

func memoryConf(t *testing.T) Database {
	return Database{
		Driver: DriverSQLite,
		SQLite: SQLiteConfig{Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())},
	}
}

func TestDatabase_Validate(t *testing.T) {
	d := Database{Driver: DriverMySQL}
	d.SetDefaults()
	assert.Error(t, d.Validate())

	d.MySQL = MySQLConfig{Host: "h", User: "u", DBName: "n", Port: "3306"}
	assert.NoError(t, d.Validate())

	d.Driver = "oracle"
	assert.Error(t, d.Validate())
}

func TestDatabase_ConnectRetriesDefault(t *testing.T) {
	d := Database{Driver: DriverMySQL}
	d.SetDefaults()
	assert.Equal(t, 3, d.ConnectRetries)

	s := Database{Driver: DriverSQLite}
	s.SetDefaults()
	assert.Zero(t, s.ConnectRetries)
}

func TestNewDatabase_SQLiteOpenFailureNotRetried(t *testing.T) {
	conf := Database{Driver: DriverSQLite, SQLite: SQLiteConfig{Path: t.TempDir() + "/missing/dir/nav.db"}}

	_, _, err := NewDatabase(conf)
	assert.Error(t, err)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn := buildMySQLDSN(MySQLConfig{Host: "db", Port: "3306", User: "nav", Password: "pw", DBName: "admin"})
	assert.Equal(t, "nav:pw@tcp(db:3306)/admin?charset=utf8mb4&parseTime=True&loc=Local", dsn)
}

func TestNewDatabase_SQLite(t *testing.T) {
	conf := memoryConf(t)
	conf.OutPut = true

	db, cleanup, err := NewDatabase(conf)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, db.AutoMigrate(&sample{}))
	// naming strategy: prefix + singular
	assert.True(t, db.Migrator().HasTable("t_sample"))

	require.NoError(t, db.Create(&sample{Name: "a"}).Error)
	var got sample
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, "a", got.Name)
}

func TestProvideIDatabase_AutoMigrate(t *testing.T) {
	RegisterModels(&sample{})
	conf := memoryConf(t)
	conf.AutoMigrate = true

	idb, cleanup, err := ProvideIDatabase(conf)
	require.NoError(t, err)
	defer cleanup()

	assert.True(t, idb.Database().Migrator().HasTable("t_sample"))
	assert.Contains(t, GetRegisteredModels(), any(&sample{}))
}
