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

package router

import (
	"errors"
	"strconv"

	"github.com/go-arcade/navmanager/internal/engine/job"
	"github.com/go-arcade/navmanager/internal/engine/service"
	"github.com/go-arcade/navmanager/pkg/http"
	"github.com/go-arcade/navmanager/pkg/http/middleware"
	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/go-arcade/navmanager/pkg/metrics"
	"github.com/go-arcade/navmanager/pkg/pprof"
	"github.com/go-arcade/navmanager/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
)

// Services 路由依赖的业务服务
type Services struct {
	Builder *service.NavigationBuilder
	Nodes   *service.NodeService
	Sync    *job.SyncRunner
}

type Router struct {
	Http     *http.Http
	Metrics  metrics.MetricsConfig
	Pprof    pprof.PprofConfig
	Registry *prometheus.Registry
	Services *Services
}

func NewRouter(
	httpConf *http.Http,
	metricsConf metrics.MetricsConfig,
	pprofConf pprof.PprofConfig,
	registry *prometheus.Registry,
	services *Services,
) *Router {
	return &Router{
		Http:     httpConf,
		Metrics:  metricsConf,
		Pprof:    pprofConf,
		Registry: registry,
		Services: services,
	}
}

func (rt *Router) Router() *fiber.App {
	app := http.NewFiberApp(*rt.Http)

	// request id
	app.Use(middleware.RequestIdMiddleware())

	// panic recover
	app.Use(middleware.ExceptionMiddleware)

	// trace
	app.Use(middleware.TraceMiddleware())

	// access log
	app.Use(middleware.AccessLogMiddleware(*rt.Http))

	// cors
	app.Use(middleware.CorsMiddleware())

	// unified response
	app.Use(middleware.UnifiedResponseMiddleware())

	pprof.Register(app, rt.Pprof)

	if rt.Metrics.Enable && rt.Registry != nil {
		metricsConf := rt.Metrics
		metricsConf.SetDefaults()
		app.Get(metricsConf.Path, adaptor.HTTPHandler(metrics.Handler(rt.Registry)))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.Get())
	})

	// api router
	api := app.Group(rt.Http.ContextPath, middleware.AuthorizationMiddleware(rt.Http.Auth))
	{
		admin := middleware.RequireRoles(rt.Http.Auth)

		rt.navigationRouter(api)
		rt.nodeRouter(api, admin)
		rt.syncRouter(api, admin)
	}

	return app
}

// fail maps a service error onto the error envelope.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNodeNotFound):
		return http.WithRepErrMsg(c, fiber.StatusNotFound, http.NavNodeNotExist, c.Path())
	case errors.Is(err, service.ErrCyclicParent):
		return http.WithRepErrMsg(c, fiber.StatusBadRequest, http.NavNodeCyclicParent, c.Path())
	case errors.Is(err, service.ErrInvalidKind):
		return http.WithRepErrMsg(c, fiber.StatusBadRequest, http.NavNodeInvalidKind, c.Path())
	case errors.Is(err, service.ErrScopeRequired):
		return http.WithRepErrMsg(c, fiber.StatusBadRequest, http.NavScopeIsEmpty, c.Path())
	case errors.Is(err, service.ErrInvalidNode):
		c.Status(fiber.StatusBadRequest)
		return http.WithRepErr(c, http.BadRequest.Code, err.Error(), c.Path())
	case errors.Is(err, service.ErrDiscoveryFailed):
		c.Status(fiber.StatusBadGateway)
		return http.WithRepErr(c, http.NavDiscoveryFailed.Code, err.Error(), c.Path())
	case errors.Is(err, job.ErrBusy):
		return http.WithRepErrMsg(c, fiber.StatusConflict, http.Conflict, c.Path())
	}
	log.Errorw("request failed", "path", c.Path(), "error", err)
	return http.WithRepErrMsg(c, fiber.StatusInternalServerError, http.InternalError, c.Path())
}

func paramID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

func queryInt64(c *fiber.Ctx, key string) int64 {
	v, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
