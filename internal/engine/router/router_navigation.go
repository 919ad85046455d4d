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
	"github.com/go-arcade/navmanager/pkg/http"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) navigationRouter(r fiber.Router) {
	r.Get("/navigation/:scope", rt.getNavigation) // GET /navigation/:scope?route=NAME
}

// getNavigation builds the navigation of a scope for the caller. Items the
// caller may not see are dropped; "route" marks the active item.
func (rt *Router) getNavigation(c *fiber.Ctx) error {
	scope := c.Params("scope")
	ctx := c.UserContext()

	elements, err := rt.Services.Builder.Build(ctx, scope)
	if err != nil {
		return fail(c, err)
	}
	return http.SetDetail(c, rt.Services.Builder.Resolve(ctx, elements, c.Query("route")))
}
