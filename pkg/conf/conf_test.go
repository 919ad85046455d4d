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

package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	Host        string
	Port        int
	ContextPath string `mapstructure:"contextPath"`
}

type testConf struct {
	Http   testServer
	Routes map[string]string
	Tags   []string
}

func testDefaults() testConf {
	return testConf{
		Http: testServer{Host: "0.0.0.0", Port: 8080, ContextPath: "/api/v1"},
		Tags: []string{"a"},
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FileDefaultsAndEnv(t *testing.T) {
	path := writeFile(t, `
[http]
port = 9090

[routes]
"admin.reports" = "/admin/reports"
`)
	t.Setenv("TESTCONF_HTTP_HOST", "127.0.0.1")

	var c testConf
	_, err := Load(path, &c, Options{EnvPrefix: "TESTCONF", Defaults: testDefaults()})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", c.Http.Host)
	assert.Equal(t, 9090, c.Http.Port)
	assert.Equal(t, "/api/v1", c.Http.ContextPath)
	assert.Equal(t, "/admin/reports", c.Routes["admin.reports"])
	assert.Equal(t, []string{"a"}, c.Tags)
}

func TestLoad_DefaultsOnly(t *testing.T) {
	var c testConf
	_, err := Load("", &c, Options{Defaults: testDefaults()})
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Http.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	var c testConf
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"), &c, Options{})
	assert.Error(t, err)
}

func TestLoad_BrokenFile(t *testing.T) {
	var c testConf
	_, err := Load(writeFile(t, "[http\nport ="), &c, Options{})
	assert.Error(t, err)
}

func TestFlatten(t *testing.T) {
	flat, err := Flatten(testDefaults())
	require.NoError(t, err)
	assert.EqualValues(t, 8080, flat["http"+KeyDelimiter+"port"])
	assert.Equal(t, "/api/v1", flat["http"+KeyDelimiter+"contextpath"])
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.d", "config.toml")
	require.NoError(t, WriteFile(path, testDefaults(), false))
	assert.ErrorIs(t, WriteFile(path, testDefaults(), false), os.ErrExist)
	require.NoError(t, WriteFile(path, testDefaults(), true))

	var back testConf
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, Unmarshal(data, &back))
	assert.Equal(t, testDefaults().Http, back.Http)
}
