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

package pprof

import (
	"net/http/pprof"
	"strings"

	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type PprofConfig struct {
	Enable bool
	Path   string
}

func (p *PprofConfig) SetDefaults() {
	if p.Path == "" {
		p.Path = "/debug/pprof"
	}
}

// Register 注册 pprof 路由，未启用时不做任何事
// 访问地址: {Path}/
func Register(app fiber.Router, config PprofConfig) {
	if !config.Enable {
		return
	}
	config.SetDefaults()

	r := app.Group(strings.TrimSuffix(config.Path, "/"))
	r.Get("/", adaptor.HTTPHandlerFunc(pprof.Index))
	r.Get("/cmdline", adaptor.HTTPHandlerFunc(pprof.Cmdline))
	r.Get("/profile", adaptor.HTTPHandlerFunc(pprof.Profile))
	r.Post("/symbol", adaptor.HTTPHandlerFunc(pprof.Symbol))
	r.Get("/symbol", adaptor.HTTPHandlerFunc(pprof.Symbol))
	r.Get("/trace", adaptor.HTTPHandlerFunc(pprof.Trace))
	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		r.Get("/"+name, adaptor.HTTPHandler(pprof.Handler(name)))
	}
	log.Infow("pprof routes registered", "path", config.Path)
}
