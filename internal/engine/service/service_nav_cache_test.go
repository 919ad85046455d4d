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

package service

import (
	"context"
	"testing"

	"github.com/go-arcade/navmanager/internal/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigationCache_TTL(t *testing.T) {
	e := newEnv(t, Options{})
	ctx := context.Background()

	add := func(title string) {
		// 直接写仓储，绕过 NodeService 的失效逻辑
		require.NoError(t, e.repo.Create(ctx, &model.NavNode{
			Scope: "admin", Title: title, Kind: model.KindUrl, URI: "/" + title, Visible: true,
		}))
	}

	add("a")
	data, err := e.cache.GetOrBuild(ctx, "admin", 60)
	require.NoError(t, err)
	assert.Equal(t, 1, data.Count())

	add("b")
	data, err = e.cache.GetOrBuild(ctx, "admin", 60)
	require.NoError(t, err)
	assert.Equal(t, 1, data.Count(), "served from cache until invalidated")

	data, err = e.cache.GetOrBuild(ctx, "admin", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, data.Count(), "ttl 0 reads the repository")

	require.NoError(t, e.cache.Invalidate(ctx, "admin"))
	data, err = e.cache.GetOrBuild(ctx, "admin", 60)
	require.NoError(t, err)
	assert.Equal(t, 2, data.Count())
}

func TestNavigationCache_InvalidateSharedScope(t *testing.T) {
	e := newEnv(t, Options{Scopes: map[string]ScopeOptions{"admin": {}}})
	ctx := context.Background()

	_, err := e.cache.GetOrBuild(ctx, "admin", 60)
	require.NoError(t, err)
	_, err = e.cache.GetOrBuild(ctx, "reports", 60)
	require.NoError(t, err)

	// 空 scope 的节点属于所有面板
	require.NoError(t, e.repo.Create(ctx, &model.NavNode{Title: "Docs", Kind: model.KindUrl, URI: "/docs", Visible: true}))
	require.NoError(t, e.cache.Invalidate(ctx, ""))

	for _, scope := range []string{"admin", "reports"} {
		data, err := e.cache.GetOrBuild(ctx, scope, 60)
		require.NoError(t, err)
		assert.Equal(t, 1, data.Count(), scope)
	}
}
