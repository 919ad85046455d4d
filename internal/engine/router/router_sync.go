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
	"strings"

	"github.com/go-arcade/navmanager/pkg/http"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) syncRouter(r fiber.Router, admin fiber.Handler) {
	r.Post("/sync/:scope", admin, rt.syncScope) // POST /sync/:scope - merge discovered entities
}

type syncResult struct {
	Scope  string `json:"scope"`
	Synced int    `json:"synced"`
}

func (rt *Router) syncScope(c *fiber.Ctx) error {
	scope := strings.TrimSpace(c.Params("scope"))
	n, err := rt.Services.Sync.Run(c.UserContext(), scope)
	if err != nil {
		return fail(c, err)
	}
	return http.SetDetail(c, syncResult{Scope: scope, Synced: n})
}
