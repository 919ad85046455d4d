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
	"time"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type SQLiteConfig struct {
	// Path is a file path or a sqlite URI such as "file::memory:?cache=shared".
	Path string `mapstructure:"path"`
}

type Database struct {
	Driver       string `mapstructure:"driver"`
	OutPut       bool   `mapstructure:"output"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
	MaxIdleConns int    `mapstructure:"maxIdleConns"`
	MaxLifetime  int    `mapstructure:"maxLifeTime"`
	MaxIdleTime  int    `mapstructure:"maxIdleTime"`
	// AutoMigrate creates or alters registered tables on startup.
	AutoMigrate bool `mapstructure:"autoMigrate"`
	// ConnectRetries 连接失败后的重试次数（mysql 默认 3）
	ConnectRetries int          `mapstructure:"connectRetries"`
	MySQL          MySQLConfig  `mapstructure:"mysql"`
	SQLite         SQLiteConfig `mapstructure:"sqlite"`
}

func (d *Database) SetDefaults() {
	if d.Driver == "" {
		d.Driver = DriverMySQL
	}
	if d.MySQL.Port == "" {
		d.MySQL.Port = "3306"
	}
	if d.Driver == DriverMySQL && d.ConnectRetries == 0 {
		d.ConnectRetries = 3
	}
	if d.SQLite.Path == "" {
		d.SQLite.Path = "navmanager.db"
	}
}

func (d *Database) Validate() error {
	switch d.Driver {
	case DriverMySQL:
		if d.MySQL.Host == "" || d.MySQL.User == "" || d.MySQL.DBName == "" {
			return fmt.Errorf("incomplete mysql config: host, user, and dbname are required")
		}
	case DriverSQLite:
		if d.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", d.Driver)
	}
	return nil
}

func GetConnMaxLifetime(maxLifetime int) time.Duration {
	if maxLifetime > 0 {
		return time.Duration(maxLifetime) * time.Second
	}
	return 300 * time.Second // Default 5 minutes
}

func GetConnMaxIdleTime(maxIdleTime int) time.Duration {
	if maxIdleTime > 0 {
		return time.Duration(maxIdleTime) * time.Second
	}
	return 60 * time.Second // Default 1 minute
}

func buildMySQLDSN(c MySQLConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}
