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

package log

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSetDefaults(t *testing.T) {
	conf := SetDefaults()
	assert.Equal(t, OutputStdout, conf.Output)
	assert.Equal(t, FormatConsole, conf.Format)
	assert.Equal(t, "INFO", conf.Level)
	assert.NoError(t, conf.Validate())
}

func TestConf_Validate(t *testing.T) {
	tests := []struct {
		name    string
		conf    Conf
		wantErr bool
	}{
		{name: "empty output means stdout", conf: Conf{}},
		{name: "json stdout", conf: Conf{Output: OutputStdout, Format: FormatJSON}},
		{name: "file without path", conf: Conf{Output: OutputFile}, wantErr: true},
		{name: "unknown output", conf: Conf{Output: "syslog"}, wantErr: true},
		{name: "unknown format", conf: Conf{Format: "xml"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conf.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConf_ValidateFillsRotation(t *testing.T) {
	conf := Conf{Output: OutputFile, Path: t.TempDir()}
	require.NoError(t, conf.Validate())
	assert.Equal(t, 100, conf.RotateSize)
	assert.Equal(t, 10, conf.RotateNum)
	assert.Equal(t, 7, conf.KeepHours)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		" Warn ":  zapcore.WarnLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"loud":    zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestNewLog_FileJSON(t *testing.T) {
	dir := t.TempDir()
	conf := &Conf{Output: OutputFile, Format: FormatJSON, Path: dir, Filename: "nav.log", Level: "info"}
	l, err := NewLog(conf)
	require.NoError(t, err)

	Debugw("dropped below level")
	Infow("navigation synced", "scope", "admin", "synced", 3)
	Warnf("orphan node %d", 7)
	require.NoError(t, l.Sync())

	lines := readLines(t, filepath.Join(dir, "nav.log"))
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, sonic.UnmarshalString(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "navigation synced", entry["msg"])
	assert.Equal(t, "admin", entry["scope"])
	assert.EqualValues(t, 3, entry["synced"])
	assert.Contains(t, entry["caller"], "log_test.go")

	require.NoError(t, sonic.UnmarshalString(lines[1], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "orphan node 7", entry["msg"])
}

func TestNewLog_Console(t *testing.T) {
	dir := t.TempDir()
	_, err := NewLog(&Conf{Output: OutputFile, Path: dir, Level: "debug"})
	require.NoError(t, err)

	Debug("cache miss")
	Sync()

	lines := readLines(t, filepath.Join(dir, defaultFilename))
	require.NotEmpty(t, lines)
	last := lines[len(lines)-1]
	assert.Contains(t, last, "DEBUG")
	assert.Contains(t, last, "cache miss")
}

func TestProvideLogger(t *testing.T) {
	l, err := ProvideLogger(&Conf{Output: OutputFile, Path: t.TempDir(), Format: FormatJSON})
	require.NoError(t, err)
	require.NotNil(t, l.Log)
	assert.Same(t, GetLogger(), l.Log)

	_, err = ProvideLogger(&Conf{Output: "kafka"})
	assert.Error(t, err)
}

func TestConcurrentLogging(t *testing.T) {
	dir := t.TempDir()
	_, err := NewLog(&Conf{Output: OutputFile, Format: FormatJSON, Path: dir})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				Infow("tick", "worker", n, "i", j)
			}
		}(i)
	}
	wg.Wait()
	Sync()

	assert.Len(t, readLines(t, filepath.Join(dir, defaultFilename)), 200)
}
