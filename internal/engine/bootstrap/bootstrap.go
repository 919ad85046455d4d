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

package bootstrap

import (
	"context"

	"github.com/go-arcade/navmanager/internal/engine/config"
	"github.com/go-arcade/navmanager/internal/engine/job"
	"github.com/go-arcade/navmanager/internal/engine/router"
	"github.com/go-arcade/navmanager/internal/engine/service"
	"github.com/go-arcade/navmanager/pkg/cron"
	"github.com/go-arcade/navmanager/pkg/http"
	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/go-arcade/navmanager/pkg/metrics"
	"github.com/go-arcade/navmanager/pkg/safe"
	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ProviderSet 提供应用层相关的依赖
var ProviderSet = wire.NewSet(NewScheduler, NewApp)

// CommandProviderSet 提供命令行子命令的依赖
var CommandProviderSet = wire.NewSet(wire.Struct(new(Command), "*"))

// Command bundles what the one-shot subcommands (sync, tree) need.
type Command struct {
	Logger *log.Logger
	Conf   *config.AppConfig
	Runner *job.SyncRunner
	Nodes  *service.NodeService
}

type App struct {
	HttpApp   *fiber.App
	Scheduler *cron.Scheduler
	Runner    *job.SyncRunner
	Tracer    *sdktrace.TracerProvider
	Logger    *log.Logger
	AppConf   *config.AppConfig
}

// InitAppFunc init app function type
type InitAppFunc func(configPath string) (*App, func(), error)

// NewScheduler 创建定时任务调度器，运行数据写入 job 指标
func NewScheduler(m *metrics.JobMetrics) *cron.Scheduler {
	return cron.New(m)
}

func NewApp(
	logger *log.Logger,
	appConf *config.AppConfig,
	rt *router.Router,
	scheduler *cron.Scheduler,
	runner *job.SyncRunner,
	tracer *sdktrace.TracerProvider,
) (*App, func(), error) {
	app := &App{
		HttpApp:   rt.Router(),
		Scheduler: scheduler,
		Runner:    runner,
		Tracer:    tracer,
		Logger:    logger,
		AppConf:   appConf,
	}

	scopes := appConf.Sync.Scopes
	if len(scopes) == 0 {
		scopes = appConf.ScopeNames()
	}
	if err := runner.Schedule(scheduler, appConf.Sync.Cron, scopes); err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		// stop scheduled sync
		scheduler.Stop()
	}
	return app, cleanup, nil
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	// Wire build App (所有依赖都由 wire 自动注入)
	return initApp(configFile)
}

// Run start app and wait for exit signal, then gracefully shutdown
func Run(app *App, cleanup func()) {
	appConf := app.AppConf

	if app.Scheduler.Len() > 0 {
		app.Scheduler.Start()
		log.Infow("scheduled sync started", "jobs", app.Scheduler.Len(), "next", app.Scheduler.NextRun())
	}

	if appConf.Sync.OnStart {
		scopes := appConf.Sync.Scopes
		if len(scopes) == 0 {
			scopes = appConf.ScopeNames()
		}
		safe.Go(func() {
			counts, err := app.Runner.RunAll(context.Background(), scopes)
			if err != nil {
				log.Warnw("startup sync incomplete", "synced", counts, "error", err)
				return
			}
			log.Infow("startup sync finished", "synced", counts)
		})
	}

	// start HTTP server (async), block until signal
	shutdown := http.NewHttp(appConf.Http, app.HttpApp)
	shutdown()

	// close components in order
	cleanup()

	log.Info("Server shutdown complete")
	log.Sync()
}
