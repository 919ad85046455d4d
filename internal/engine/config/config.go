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

package config

import (
	"fmt"
	"sync"

	"github.com/go-arcade/navmanager/internal/engine/host"
	"github.com/go-arcade/navmanager/internal/engine/job"
	"github.com/go-arcade/navmanager/pkg/cache"
	"github.com/go-arcade/navmanager/pkg/conf"
	"github.com/go-arcade/navmanager/pkg/database"
	"github.com/go-arcade/navmanager/pkg/http"
	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/go-arcade/navmanager/pkg/metrics"
	"github.com/go-arcade/navmanager/pkg/pprof"
	"github.com/go-arcade/navmanager/pkg/trace"
	"github.com/spf13/viper"
)

const EnvPrefix = "NAVMANAGER"

// NavigationConf 导航引擎配置
type NavigationConf struct {
	// CacheSeconds <= 0 disables the navigation cache.
	CacheSeconds int    `mapstructure:"cacheSeconds"`
	Debug        bool   `mapstructure:"debug"`
	BaseURL      string `mapstructure:"baseUrl"`
	// RootValues are the parent ids that mark a root row.
	RootValues   []int64  `mapstructure:"rootValues"`
	RootLabel    string   `mapstructure:"rootLabel"`
	IconPrefix   string   `mapstructure:"iconPrefix"`
	IconVariants []string `mapstructure:"iconVariants"`
	// IconDir holds "{name}.svg" files; Icons lists known names. With
	// neither set every syntactically valid icon is accepted.
	IconDir string   `mapstructure:"iconDir"`
	Icons   []string `mapstructure:"icons"`
}

// ScopeConf 面板配置
type ScopeConf struct {
	Path       string            `mapstructure:"path"`
	Manifests  string            `mapstructure:"manifests"`
	Entities   []host.EntityConf `mapstructure:"entities"`
	GroupIcons map[string]string `mapstructure:"groupIcons"`
}

type AppConfig struct {
	Log         log.Conf
	Http        http.Http
	Database    database.Database
	Cache       cache.Conf
	Navigation  NavigationConf
	Sync        job.SyncConf
	Scopes      map[string]ScopeConf
	Routes      map[string]string
	Permissions map[string]string
	Metrics     metrics.MetricsConfig
	Trace       trace.Conf
	Pprof       pprof.PprofConfig
}

func defaults() AppConfig {
	c := AppConfig{
		Log: *log.SetDefaults(),
		Navigation: NavigationConf{
			CacheSeconds: 300,
			RootValues:   []int64{0, -1},
			RootLabel:    "顶级",
			IconPrefix:   "heroicon-",
			IconVariants: []string{"o", "m", "c", "s"},
		},
		Database: database.Database{Driver: database.DriverSQLite, AutoMigrate: true},
	}
	c.SetDefaults()
	return c
}

// Default returns the configuration written by "config init": the
// defaults plus one sample scope.
func Default() AppConfig {
	c := defaults()
	c.Scopes = map[string]ScopeConf{
		"admin": {Path: "admin", GroupIcons: map[string]string{}},
	}
	c.Sync.Scopes = []string{"admin"}
	c.Routes = map[string]string{}
	c.Permissions = map[string]string{}
	return c
}

// SetDefaults fills every zero value a sub-config knows a default for.
func (c *AppConfig) SetDefaults() {
	c.Http.SetDefaults()
	c.Database.SetDefaults()
	c.Cache.SetDefaults()
	c.Sync.SetDefaults()
	c.Metrics.SetDefaults()
	c.Trace.SetDefaults()
	c.Pprof.SetDefaults()
	if c.Log.Output == "" {
		c.Log = *log.SetDefaults()
	}
	if c.Navigation.RootLabel == "" {
		c.Navigation.RootLabel = "顶级"
	}
	if c.Navigation.IconPrefix == "" {
		c.Navigation.IconPrefix = "heroicon-"
	}
	for name, s := range c.Scopes {
		if s.Path == "" {
			s.Path = name
			c.Scopes[name] = s
		}
	}
}

// Validate reports the first unusable setting.
func (c *AppConfig) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Trace.Validate(); err != nil {
		return err
	}
	for name, s := range c.Scopes {
		for i, e := range s.Entities {
			if _, err := e.Entity(); err != nil {
				return fmt.Errorf("scopes.%s.entities[%d]: %w", name, i, err)
			}
		}
	}
	if _, err := host.NewRuleChecker(c.Permissions); err != nil {
		return err
	}
	return nil
}

// ScopeNames lists the configured scopes.
func (c *AppConfig) ScopeNames() []string {
	out := make([]string, 0, len(c.Scopes))
	for name := range c.Scopes {
		out = append(out, name)
	}
	return out
}

var (
	mu        sync.Mutex
	listeners []func(AppConfig)
)

// OnChange registers fn to run with the reloaded configuration whenever
// the file changes.
func OnChange(fn func(AppConfig)) {
	mu.Lock()
	defer mu.Unlock()
	listeners = append(listeners, fn)
}

func notify(c AppConfig) {
	mu.Lock()
	fns := append([]func(AppConfig){}, listeners...)
	mu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

// LoadConfigFile loads path over the defaults with NAVMANAGER_* overrides
// and watches it for changes. An empty path yields the defaults.
func LoadConfigFile(path string) (AppConfig, error) {
	var cfg AppConfig
	_, err := conf.Load(path, &cfg, conf.Options{
		EnvPrefix: EnvPrefix,
		Defaults:  defaults(),
		OnChange: func(v *viper.Viper) {
			var next AppConfig
			if err := v.Unmarshal(&next); err != nil {
				log.Errorw("failed to unmarshal configuration file", "error", err)
				return
			}
			next.SetDefaults()
			if err := next.Validate(); err != nil {
				log.Errorw("reloaded configuration rejected", "error", err)
				return
			}
			notify(next)
		},
	})
	if err != nil {
		return AppConfig{}, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
