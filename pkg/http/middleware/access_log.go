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

package middleware

import (
	"strings"
	"time"

	"github.com/go-arcade/navmanager/pkg/http"
	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/go-arcade/navmanager/pkg/trace"
	"github.com/gofiber/fiber/v2"
)

// excluded from access log; a trailing /* matches by prefix
var excludedPaths = []string{
	"/health",
	"/metrics",
}

func skipAccessLog(path string) bool {
	for _, rule := range excludedPaths {
		if prefix, ok := strings.CutSuffix(rule, "/*"); ok {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		} else if path == rule {
			return true
		}
	}
	return false
}

func AccessLogMiddleware(cfg http.Http) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cfg.AccessLog || skipAccessLog(c.Path()) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		fields := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"ip", c.IP(),
			"latency", time.Since(start).String(),
			"user_agent", c.Get(fiber.HeaderUserAgent),
		}
		if rid, ok := c.Locals(http.LocalRequestID).(string); ok {
			fields = append(fields, "request_id", rid)
		}
		if tid := trace.TraceID(c.UserContext()); tid != "" {
			fields = append(fields, "trace_id", tid)
		}
		if q := string(c.Request().URI().QueryString()); q != "" {
			fields = append(fields, "query", q)
		}
		log.Infow("HTTP request", fields...)
		return err
	}
}
