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
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/go-arcade/navmanager/pkg/retry"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	defaultTablePrefix = "t_"
	defaultSlowSQL     = time.Second
)

// NewDatabase opens the configured driver, applies pool settings and pings.
// The returned cleanup closes the pool.
func NewDatabase(cfg Database) (*gorm.DB, func(), error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverMySQL:
		dialector = mysql.Open(buildMySQLDSN(cfg.MySQL))
	case DriverSQLite:
		dialector = sqlite.Open(cfg.SQLite.Path)
	}

	gormConf := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   defaultTablePrefix,
			SingularTable: true,
		},
	}
	if cfg.OutPut {
		gormConf.Logger = NewGormLoggerAdapter(logger.Config{
			SlowThreshold:             defaultSlowSQL,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}, logger.Info)
	}

	var (
		db    *gorm.DB
		sqlDB *sql.DB
	)
	err := retry.Do(context.Background(), func(context.Context) error {
		var err error
		db, sqlDB, err = open(dialector, gormConf, cfg)
		return err
	},
		retry.WithMaxAttempts(cfg.ConnectRetries+1),
		retry.WithBackoff(retry.Exponential(500*time.Millisecond, 8*time.Second)),
		retry.WithJitter(retry.FullJitter),
		retry.WithOnRetry(func(attempt int, err error) {
			log.Warnw("database not ready, retrying", "driver", cfg.Driver, "attempt", attempt, "error", err)
		}),
	)
	if err != nil {
		return nil, nil, err
	}

	if cfg.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	log.Infow("database connected", "driver", cfg.Driver)

	cleanup := func() {
		if err := sqlDB.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}
	return db, cleanup, nil
}

func open(dialector gorm.Dialector, gormConf *gorm.Config, cfg Database) (*gorm.DB, *sql.DB, error) {
	db, err := gorm.Open(dialector, gormConf)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get underlying sql.DB handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(GetConnMaxLifetime(cfg.MaxLifetime))
	sqlDB.SetConnMaxIdleTime(GetConnMaxIdleTime(cfg.MaxIdleTime))

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, sqlDB, nil
}
