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
	"github.com/go-arcade/navmanager/internal/engine/model"
	"github.com/go-arcade/navmanager/internal/engine/service"
	"github.com/go-arcade/navmanager/pkg/http"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) nodeRouter(r fiber.Router, admin fiber.Handler) {
	nodeGroup := r.Group("/nodes", admin)
	{
		// static paths first, "/:id" would swallow them
		nodeGroup.Get("", rt.listNodes)                  // GET /nodes?scope=S - tree table rows
		nodeGroup.Get("/options", rt.nodeOptions)        // GET /nodes/options?scope=S&except=ID
		nodeGroup.Put("/reorder", rt.reorderNodes)       // PUT /nodes/reorder
		nodeGroup.Post("", rt.createNode)                // POST /nodes
		nodeGroup.Get("/:id", rt.getNode)                // GET /nodes/:id
		nodeGroup.Put("/:id", rt.updateNode)             // PUT /nodes/:id
		nodeGroup.Delete("/:id", rt.deleteNode)          // DELETE /nodes/:id - with its subtree
		nodeGroup.Put("/:id/visible", rt.setNodeVisible) // PUT /nodes/:id/visible
	}
}

type nodeDetail struct {
	*model.NavNode
	Depth int `json:"depth"`
}

type visibleReq struct {
	Visible *bool `json:"visible"`
}

type reorderReq struct {
	Orders map[int64]int `json:"orders"`
}

func (rt *Router) listNodes(c *fiber.Ctx) error {
	rows, err := rt.Services.Nodes.Tree(c.UserContext(), c.Query("scope"))
	if err != nil {
		return fail(c, err)
	}
	if rows == nil {
		rows = []service.TreeRow{}
	}
	return http.SetDetail(c, rows)
}

func (rt *Router) nodeOptions(c *fiber.Ctx) error {
	options, err := rt.Services.Nodes.SelectOptions(c.UserContext(), c.Query("scope"), queryInt64(c, "except"), c.Query("rootLabel"))
	if err != nil {
		return fail(c, err)
	}
	return http.SetDetail(c, options)
}

func (rt *Router) getNode(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return http.WithRepErrMsg(c, fiber.StatusBadRequest, http.BadRequest, c.Path())
	}
	ctx := c.UserContext()
	node, err := rt.Services.Nodes.Get(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	depth, err := rt.Services.Nodes.Depth(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return http.SetDetail(c, nodeDetail{NavNode: node, Depth: depth})
}

func (rt *Router) createNode(c *fiber.Ctx) error {
	var in service.NodeInput
	if err := c.BodyParser(&in); err != nil {
		return http.WithRepErrMsg(c, fiber.StatusBadRequest, http.RequestParameterParsingFailed, c.Path())
	}
	node, err := rt.Services.Nodes.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return http.SetDetail(c, node)
}

func (rt *Router) updateNode(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return http.WithRepErrMsg(c, fiber.StatusBadRequest, http.BadRequest, c.Path())
	}
	var in service.NodeInput
	if err := c.BodyParser(&in); err != nil {
		return http.WithRepErrMsg(c, fiber.StatusBadRequest, http.RequestParameterParsingFailed, c.Path())
	}
	node, err := rt.Services.Nodes.Update(c.UserContext(), id, in)
	if err != nil {
		return fail(c, err)
	}
	return http.SetDetail(c, node)
}

func (rt *Router) deleteNode(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return http.WithRepErrMsg(c, fiber.StatusBadRequest, http.BadRequest, c.Path())
	}
	if err := rt.Services.Nodes.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return http.SetOperation(c)
}

func (rt *Router) setNodeVisible(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return http.WithRepErrMsg(c, fiber.StatusBadRequest, http.BadRequest, c.Path())
	}
	var req visibleReq
	if err := c.BodyParser(&req); err != nil || req.Visible == nil {
		return http.WithRepErrMsg(c, fiber.StatusBadRequest, http.RequestParameterParsingFailed, c.Path())
	}
	if err := rt.Services.Nodes.SetVisible(c.UserContext(), id, *req.Visible); err != nil {
		return fail(c, err)
	}
	return http.SetOperation(c)
}

func (rt *Router) reorderNodes(c *fiber.Ctx) error {
	var req reorderReq
	if err := c.BodyParser(&req); err != nil || len(req.Orders) == 0 {
		return http.WithRepErrMsg(c, fiber.StatusBadRequest, http.RequestParameterParsingFailed, c.Path())
	}
	if err := rt.Services.Nodes.Reorder(c.UserContext(), req.Orders); err != nil {
		return fail(c, err)
	}
	return http.SetOperation(c)
}
