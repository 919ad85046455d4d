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

package host

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-arcade/navmanager/internal/engine/model"
	"github.com/go-arcade/navmanager/pkg/http/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userResource struct{}

func (userResource) NavigationLabel(string) (string, error) { return "Members", nil }
func (userResource) NavigationIcon(string) (string, error)  { return "users", nil }
func (userResource) NavigationBadge(context.Context, string) (Badge, error) {
	return Badge{Value: "3"}, nil
}

func identities(es []Entity) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Identity
	}
	return out
}

func TestEntity_Helpers(t *testing.T) {
	e := Entity{Identity: `App\Admin\UserResource`, Kind: model.KindResource, Slug: "users"}
	assert.Equal(t, "UserResource", e.Basename())
	assert.Equal(t, "admin.resources.users.*", e.ActivePattern("admin"))

	e = Entity{Identity: "dashboard", Kind: model.KindPage, Route: "admin.pages.dashboard"}
	assert.Equal(t, "admin.pages.dashboard", e.ActivePattern("admin"))

	_, ok := e.SortHint()
	assert.False(t, ok)
}

func TestMatchRoute(t *testing.T) {
	assert.True(t, MatchRoute("admin.resources.users.*", "admin.resources.users.edit"))
	assert.True(t, MatchRoute("admin.pages.dashboard", "admin.pages.dashboard"))
	assert.False(t, MatchRoute("admin.pages.dashboard", "admin.pages.settings"))
	assert.False(t, MatchRoute("", "x"))
}

func TestEntityConf_Defaults(t *testing.T) {
	e, err := EntityConf{Identity: "Reports", Kind: "Page", URL: "/reports"}.Entity()
	require.NoError(t, err)
	assert.Equal(t, model.KindPage, e.Kind)
	assert.True(t, e.Discovered)
	assert.True(t, e.ShouldAppear)
	u, err := e.Linker.URL("admin")
	require.NoError(t, err)
	assert.Equal(t, "/reports", u)

	_, err = EntityConf{Identity: "x", Kind: "group"}.Entity()
	assert.Error(t, err)
	_, err = EntityConf{}.Entity()
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	require.NoError(t, r.Register("admin", Entity{Identity: "UserResource"}, userResource{}))
	require.NoError(t, r.Register("", Entity{Identity: "Dashboard", Kind: model.KindPage}, nil))
	require.NoError(t, r.Register("", Entity{Identity: "UserResource", Label: "shared"}, nil))
	assert.Error(t, r.Register("admin", Entity{Identity: "bad", Kind: model.KindUrl}, nil))

	es, err := r.Discover(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, []string{"UserResource", "Dashboard"}, identities(es))
	assert.NotNil(t, es[0].Describer)
	assert.NotNil(t, es[0].Badger)
	assert.Nil(t, es[0].Linker)

	// replace in place
	require.NoError(t, r.Register("admin", Entity{Identity: "UserResource", Label: "Users"}, nil))
	e, err := r.Lookup(ctx, "admin", "UserResource")
	require.NoError(t, err)
	assert.Equal(t, "Users", e.Label)

	_, err = r.Lookup(ctx, "admin", "Missing")
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func writeManifest(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestManifestDiscoverer(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a.yaml", `
entities:
  - identity: UserResource
    label: Users
    group: System
    sort: 2
  - identity: Hidden
    discovered: false
`)
	writeManifest(t, dir, "b.yml", `
entities:
  - identity: UserResource
    label: Duplicate
  - identity: Settings
    kind: page
    navigation: false
`)
	writeManifest(t, dir, "notes.txt", "ignored")

	d := NewManifestDiscoverer(map[string]string{"admin": dir})
	es, err := d.Discover(context.Background(), "admin")
	require.NoError(t, err)
	require.Equal(t, []string{"UserResource", "Hidden", "Settings"}, identities(es))
	assert.Equal(t, "Users", es[0].Label)
	sort, ok := es[0].SortHint()
	assert.True(t, ok)
	assert.Equal(t, 2, sort)
	assert.False(t, es[1].Discovered)
	assert.False(t, es[2].ShouldAppear)

	e, err := d.Lookup(context.Background(), "admin", "Settings")
	require.NoError(t, err)
	assert.Equal(t, model.KindPage, e.Kind)

	_, err = d.Discover(context.Background(), "other")
	assert.ErrorIs(t, err, ErrNoManifestDir)
}

func TestManifestDiscoverer_BadFile(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "bad.yaml", "entities: [")
	_, err := NewManifestDiscoverer(map[string]string{"admin": dir}).Discover(context.Background(), "admin")
	assert.Error(t, err)
}

func TestFallbackDiscoverer(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a.yaml", `
entities:
  - identity: UserResource
    label: Scanned
  - identity: Settings
    kind: page
`)
	registry := NewRegistry()
	require.NoError(t, registry.Register("admin", Entity{Identity: "UserResource", Label: "Registered"}, nil))
	ctx := context.Background()

	d := NewFallbackDiscoverer(NewManifestDiscoverer(map[string]string{"admin": dir}), registry)
	es, err := d.Discover(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, []string{"UserResource", "Settings"}, identities(es))
	assert.Equal(t, "Registered", es[0].Label)

	e, err := d.Lookup(ctx, "admin", "Settings")
	require.NoError(t, err)
	assert.Equal(t, "Settings", e.Identity)

	// scan fails: registry alone
	broken := NewFallbackDiscoverer(NewManifestDiscoverer(map[string]string{"admin": filepath.Join(dir, "missing")}), registry)
	es, err = broken.Discover(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, []string{"UserResource"}, identities(es))

	// both fail
	none := NewFallbackDiscoverer(NewManifestDiscoverer(map[string]string{"admin": filepath.Join(dir, "missing")}), nil)
	_, err = none.Discover(ctx, "admin")
	assert.Error(t, err)

	_, err = d.Lookup(ctx, "admin", "Nope")
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestStaticRoutes(t *testing.T) {
	r := NewStaticRoutes("https://example.com/", map[string]string{
		"admin.dashboard": "/admin",
		"docs":            "https://docs.example.com",
	})
	assert.True(t, r.Has("admin.dashboard"))
	assert.True(t, r.Has("Admin.Dashboard"))
	u, err := r.URLFor("admin.dashboard")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/admin", u)

	u, err = r.URLFor("docs")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.example.com", u)

	_, err = r.URLFor("gone")
	assert.ErrorIs(t, err, ErrRouteNotFound)

	assert.True(t, IsExternal("HTTP://x.io/a"))
	assert.False(t, IsExternal("/admin"))
	assert.Equal(t, "/", JoinURL("", ""))
}

func TestRuleChecker(t *testing.T) {
	c, err := NewRuleChecker(map[string]string{
		"nav.reports": `"admin" in roles || hasPermission("reports.view")`,
	})
	require.NoError(t, err)

	anon := context.Background()
	assert.False(t, c.Can(anon, "nav.reports"))

	admin := jwt.NewContext(anon, &jwt.AuthClaims{UserId: "1", Roles: []string{"admin"}})
	assert.True(t, c.Can(admin, "nav.reports"))
	assert.True(t, c.Can(admin, "NAV.Reports"))
	assert.False(t, c.Can(admin, "nav.other"))

	viewer := jwt.NewContext(anon, &jwt.AuthClaims{UserId: "2", Permissions: []string{"reports.view", "nav.other"}})
	assert.True(t, c.Can(viewer, "nav.reports"))
	assert.True(t, c.Can(viewer, "nav.other"))

	_, err = NewRuleChecker(map[string]string{"bad": `roles +`})
	assert.Error(t, err)
	_, err = NewRuleChecker(map[string]string{"notbool": `user`})
	assert.Error(t, err)

	assert.True(t, AllowAll{}.Can(anon, "anything"))
}

func TestRuleChecker_Reload(t *testing.T) {
	c, err := NewRuleChecker(map[string]string{"nav.reports": `"admin" in roles`})
	require.NoError(t, err)
	editor := jwt.NewContext(context.Background(), &jwt.AuthClaims{UserId: "3", Roles: []string{"editor"}})
	assert.False(t, c.Can(editor, "nav.reports"))

	require.NoError(t, c.Reload(map[string]string{"nav.reports": `hasRole("editor")`}))
	assert.True(t, c.Can(editor, "nav.reports"))

	assert.Error(t, c.Reload(map[string]string{"nav.reports": `roles +`}))
	assert.True(t, c.Can(editor, "nav.reports"))
}
