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
	"github.com/go-arcade/navmanager/internal/engine/host"
	"github.com/go-arcade/navmanager/internal/engine/job"
	"github.com/go-arcade/navmanager/internal/engine/service"
	"github.com/go-arcade/navmanager/internal/pkg/icon"
	"github.com/go-arcade/navmanager/pkg/cache"
	"github.com/go-arcade/navmanager/pkg/database"
	"github.com/go-arcade/navmanager/pkg/http"
	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/go-arcade/navmanager/pkg/metrics"
	"github.com/go-arcade/navmanager/pkg/pprof"
	"github.com/go-arcade/navmanager/pkg/trace"
	"github.com/google/wire"
)

// ProviderSet 提供配置层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideConf,
	ProvideHttpConfig,
	ProvideLogConfig,
	ProvideDatabaseConfig,
	ProvideCacheConfig,
	ProvideMetricsConfig,
	ProvidePprofConfig,
	ProvideTraceConfig,
	ProvideSyncConfig,
	ProvideServiceOptions,
	ProvideIconResolver,
	ProvideRegistry,
	ProvideDiscoverer,
	ProvideRoutes,
	ProvidePermissionChecker,
	wire.Bind(new(host.Discoverer), new(*host.FallbackDiscoverer)),
	wire.Bind(new(host.TargetResolver), new(*host.FallbackDiscoverer)),
	wire.Bind(new(host.RouteRegistry), new(*host.StaticRoutes)),
)

// ProvideConf 提供应用配置
func ProvideConf(configPath string) (*AppConfig, error) {
	c, err := LoadConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ProvideHttpConfig 提供 HTTP 配置
func ProvideHttpConfig(appConf *AppConfig) *http.Http {
	return &appConf.Http
}

// ProvideLogConfig 提供日志配置
func ProvideLogConfig(appConf *AppConfig) *log.Conf {
	return &appConf.Log
}

// ProvideDatabaseConfig 提供数据库配置
func ProvideDatabaseConfig(appConf *AppConfig) database.Database {
	return appConf.Database
}

// ProvideCacheConfig 提供缓存配置
func ProvideCacheConfig(appConf *AppConfig) cache.Conf {
	return appConf.Cache
}

// ProvideMetricsConfig 提供 Metrics 配置
func ProvideMetricsConfig(appConf *AppConfig) metrics.MetricsConfig {
	return appConf.Metrics
}

// ProvidePprofConfig 提供 Pprof 配置
func ProvidePprofConfig(appConf *AppConfig) pprof.PprofConfig {
	return appConf.Pprof
}

// ProvideTraceConfig 提供 Trace 配置
func ProvideTraceConfig(appConf *AppConfig) trace.Conf {
	return appConf.Trace
}

// ProvideSyncConfig 提供定时同步配置
func ProvideSyncConfig(appConf *AppConfig) job.SyncConf {
	return appConf.Sync
}

// ProvideServiceOptions maps the navigation settings onto the engine options.
func ProvideServiceOptions(appConf *AppConfig) service.Options {
	nav := appConf.Navigation
	opts := service.Options{
		CacheSeconds: nav.CacheSeconds,
		BaseURL:      nav.BaseURL,
		IconPrefix:   nav.IconPrefix,
		RootValues:   nav.RootValues,
		RootLabel:    nav.RootLabel,
		Scopes:       make(map[string]service.ScopeOptions, len(appConf.Scopes)),
	}
	for name, s := range appConf.Scopes {
		opts.Scopes[name] = service.ScopeOptions{Path: s.Path, GroupIcons: s.GroupIcons}
	}
	return opts
}

// ProvideIconResolver 提供图标解析器
func ProvideIconResolver(appConf *AppConfig) *icon.Resolver {
	nav := appConf.Navigation
	var dir, set icon.Exists
	if nav.IconDir != "" {
		dir = icon.DirExists(nav.IconDir)
	}
	if len(nav.Icons) > 0 {
		set = icon.SetExists(nav.Icons...)
	}
	return icon.NewResolver(icon.Any(dir, set),
		icon.WithPrefix(nav.IconPrefix),
		icon.WithVariants(nav.IconVariants...),
		icon.WithDebug(nav.Debug),
	)
}

// ProvideRegistry registers the entities declared per scope. Entities of
// the "" scope are shared by every scope.
func ProvideRegistry(appConf *AppConfig) (*host.Registry, error) {
	r := host.NewRegistry()
	for name, s := range appConf.Scopes {
		if err := r.RegisterConf(name, s.Entities...); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ProvideDiscoverer chains the manifest directories with the registry.
func ProvideDiscoverer(appConf *AppConfig, registry *host.Registry) *host.FallbackDiscoverer {
	dirs := map[string]string{}
	for name, s := range appConf.Scopes {
		if s.Manifests != "" {
			dirs[name] = s.Manifests
		}
	}
	var scanner *host.ManifestDiscoverer
	if len(dirs) > 0 {
		scanner = host.NewManifestDiscoverer(dirs)
	}
	return host.NewFallbackDiscoverer(scanner, registry)
}

// ProvideRoutes 提供路由表
func ProvideRoutes(appConf *AppConfig) *host.StaticRoutes {
	return host.NewStaticRoutes(appConf.Navigation.BaseURL, appConf.Routes)
}

// ProvidePermissionChecker grants everything when authentication is off;
// otherwise permission rules are compiled and reloaded with the file.
func ProvidePermissionChecker(appConf *AppConfig) (host.PermissionChecker, error) {
	if appConf.Http.Auth.SecretKey == "" {
		return host.AllowAll{}, nil
	}
	checker, err := host.NewRuleChecker(appConf.Permissions)
	if err != nil {
		return nil, err
	}
	OnChange(func(c AppConfig) {
		if err := checker.Reload(c.Permissions); err != nil {
			log.Errorw("permission rules not reloaded", "error", err)
			return
		}
		log.Infow("permission rules reloaded", "rules", len(c.Permissions))
	})
	return checker, nil
}
