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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/navmanager/internal/engine/host"
	"github.com/go-arcade/navmanager/internal/engine/job"
	"github.com/go-arcade/navmanager/internal/engine/model"
	"github.com/go-arcade/navmanager/internal/engine/repo"
	"github.com/go-arcade/navmanager/internal/engine/repo/repotest"
	"github.com/go-arcade/navmanager/internal/engine/service"
	"github.com/go-arcade/navmanager/internal/pkg/treetable"
	"github.com/go-arcade/navmanager/pkg/cache"
	"github.com/go-arcade/navmanager/pkg/http"
	"github.com/go-arcade/navmanager/pkg/http/jwt"
	"github.com/go-arcade/navmanager/pkg/metrics"
	"github.com/go-arcade/navmanager/pkg/pprof"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type envelope struct {
	Code   int             `json:"code"`
	Msg    string          `json:"msg"`
	Detail json.RawMessage `json:"detail"`
	ErrMsg any             `json:"errMsg"`
}

func newTestApp(t *testing.T, auth http.Auth) (*fiber.App, *host.Registry) {
	t.Helper()
	r := repo.NewNavNodeRepo(repotest.NewDB(t))
	registry := host.NewRegistry()
	opts := service.Options{
		CacheSeconds: 60,
		Scopes:       map[string]service.ScopeOptions{"admin": {}},
	}
	nc := service.NewNavigationCache(r, cache.NewFastCache(cache.FastCacheConfig{}), nil, opts)

	var perms host.PermissionChecker = host.AllowAll{}
	if auth.SecretKey != "" {
		checker, err := host.NewRuleChecker(nil)
		require.NoError(t, err)
		perms = checker
	}

	syncer := service.NewTreeSynchronizer(r, registry, nc, nil, opts)
	services := ProvideServices(
		service.NewNavigationBuilder(nc, registry, host.NewStaticRoutes("", nil), perms, nil, nil, opts),
		service.NewNodeService(r, nc, nil, opts),
		job.NewSyncRunner(syncer, time.Minute),
	)

	httpConf := &http.Http{Auth: auth}
	httpConf.SetDefaults()
	rt := NewRouter(httpConf, metrics.MetricsConfig{Enable: true}, pprof.PprofConfig{}, metrics.NewRegistry(), services)
	return rt.Router(), registry
}

func token(t *testing.T, roles ...string) string {
	t.Helper()
	a, _, err := jwt.GenToken(jwt.AuthClaims{UserId: "1", Roles: roles}, []byte(testSecret), time.Hour, time.Hour)
	require.NoError(t, err)
	return a
}

func do(t *testing.T, app *fiber.App, method, path string, body any, bearer string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, sonic.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, sonic.Unmarshal(env.Detail, &out), string(env.Detail))
	return out
}

func TestHealthVersionMetrics(t *testing.T) {
	app, _ := newTestApp(t, http.Auth{})

	for _, path := range []string{"/health", "/version", "/metrics"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
}

func TestSyncThenNavigation(t *testing.T) {
	app, registry := newTestApp(t, http.Auth{})
	require.NoError(t, registry.Register("admin", host.Entity{
		Identity:     "UserResource",
		Kind:         model.KindResource,
		Label:        "Users",
		Group:        "System",
		Slug:         "users",
		Discovered:   true,
		ShouldAppear: true,
	}, nil))

	status, env := do(t, app, "POST", "/api/v1/sync/admin", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	result := decode[syncResult](t, env)
	assert.Equal(t, syncResult{Scope: "admin", Synced: 1}, result)

	status, env = do(t, app, "GET", "/api/v1/navigation/admin?route=admin.resources.users.index", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	entries := decode[[]model.Entry](t, env)
	require.Len(t, entries, 1)
	assert.Equal(t, model.EntryGroup, entries[0].Type)
	assert.Equal(t, "System", entries[0].Label)
	require.Len(t, entries[0].Items, 1)
	assert.Equal(t, "Users", entries[0].Items[0].Label)
	assert.Contains(t, entries[0].Items[0].URL, "users")
	assert.True(t, entries[0].Items[0].Active)
}

func TestNodeLifecycle(t *testing.T) {
	app, _ := newTestApp(t, http.Auth{})

	status, env := do(t, app, "POST", "/api/v1/nodes", map[string]any{
		"scope": "admin", "title": "Tools", "kind": "group",
	}, "")
	require.Equal(t, fiber.StatusOK, status)
	group := decode[model.NavNode](t, env)
	require.NotZero(t, group.ID)

	status, env = do(t, app, "POST", "/api/v1/nodes", map[string]any{
		"scope": "admin", "title": "Docs", "kind": "url", "target": "https://docs.example.com", "parentId": group.ID,
	}, "")
	require.Equal(t, fiber.StatusOK, status)
	child := decode[model.NavNode](t, env)

	status, env = do(t, app, "GET", fmt.Sprintf("/api/v1/nodes/%d", child.ID), nil, "")
	require.Equal(t, fiber.StatusOK, status)
	detail := decode[map[string]any](t, env)
	assert.EqualValues(t, 1, detail["depth"])
	assert.Equal(t, "Docs", detail["title"])

	status, env = do(t, app, "PUT", fmt.Sprintf("/api/v1/nodes/%d", group.ID), map[string]any{
		"scope": "admin", "title": "Tools", "kind": "group", "parentId": child.ID,
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, http.NavNodeCyclicParent.Code, env.Code)

	status, env = do(t, app, "POST", "/api/v1/nodes", map[string]any{"scope": "admin", "title": "X", "kind": "folder"}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, http.NavNodeInvalidKind.Code, env.Code)

	status, _ = do(t, app, "PUT", fmt.Sprintf("/api/v1/nodes/%d/visible", child.ID), map[string]any{"visible": false}, "")
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = do(t, app, "PUT", fmt.Sprintf("/api/v1/nodes/%d/visible", child.ID), map[string]any{}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, env = do(t, app, "GET", "/api/v1/nodes?scope=admin", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	rows := decode[[]service.TreeRow](t, env)
	require.Len(t, rows, 2)
	assert.Equal(t, group.ID, rows[0].ID)
	assert.True(t, rows[0].HasChildren)
	assert.Equal(t, 1, rows[1].Depth)
	assert.False(t, rows[1].Visible)

	status, env = do(t, app, "GET", fmt.Sprintf("/api/v1/nodes/options?scope=admin&except=%d", group.ID), nil, "")
	require.Equal(t, fiber.StatusOK, status)
	options := decode[[]treetable.Option](t, env)
	require.Len(t, options, 1)
	assert.Equal(t, treetable.DefaultRootLabel, options[0].Label)

	status, _ = do(t, app, "PUT", "/api/v1/nodes/reorder", map[string]any{
		"orders": map[string]int{strconv.FormatInt(group.ID, 10): 5},
	}, "")
	require.Equal(t, fiber.StatusOK, status)
	_, env = do(t, app, "GET", fmt.Sprintf("/api/v1/nodes/%d", group.ID), nil, "")
	assert.EqualValues(t, 5, decode[map[string]any](t, env)["order"])

	status, _ = do(t, app, "DELETE", fmt.Sprintf("/api/v1/nodes/%d", group.ID), nil, "")
	require.Equal(t, fiber.StatusOK, status)
	status, env = do(t, app, "GET", fmt.Sprintf("/api/v1/nodes/%d", child.ID), nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, http.NavNodeNotExist.Code, env.Code)

	status, _ = do(t, app, "GET", "/api/v1/nodes/abc", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestAdminRoutesRequireRole(t *testing.T) {
	app, _ := newTestApp(t, http.Auth{SecretKey: testSecret, AllowedRoles: []string{"admin"}})

	status, _ := do(t, app, "GET", "/api/v1/nodes?scope=admin", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = do(t, app, "GET", "/api/v1/nodes?scope=admin", nil, "not-a-token")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = do(t, app, "GET", "/api/v1/nodes?scope=admin", nil, token(t, "viewer"))
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = do(t, app, "GET", "/api/v1/nodes?scope=admin", nil, token(t, "admin"))
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = do(t, app, "POST", "/api/v1/sync/admin", nil, token(t, "viewer"))
	assert.Equal(t, fiber.StatusForbidden, status)

	// navigation is public, filtered per caller
	status, _ = do(t, app, "GET", "/api/v1/navigation/admin", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
}
