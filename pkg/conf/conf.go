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
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/spf13/viper"
)

// KeyDelimiter separates nested keys. Dots are left alone so that map keys
// such as route names ("admin.reports") survive decoding.
const KeyDelimiter = "::"

// Options controls Load.
type Options struct {
	// EnvPrefix enables environment overrides, e.g. NAVMANAGER_HTTP_PORT.
	EnvPrefix string
	// Defaults seeds every known key so env overrides apply to keys the
	// file does not mention.
	Defaults any
	// OnChange is called after the file changes, with the viper instance
	// already holding the new content. Nil disables watching.
	OnChange func(v *viper.Viper)
}

// Load decodes the TOML file at path into out. An empty path loads the
// defaults and the environment only.
func Load(path string, out any, opts Options) (*viper.Viper, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(KeyDelimiter))
	v.SetConfigType(Name)

	if opts.Defaults != nil {
		flat, err := Flatten(opts.Defaults)
		if err != nil {
			return nil, fmt.Errorf("failed to encode defaults: %w", err)
		}
		for k, val := range flat {
			v.SetDefault(k, val)
		}
	}

	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(KeyDelimiter, "_", ".", "_", "-", "_"))
		v.AutomaticEnv()
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	if err := v.Unmarshal(out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}

	if path != "" && opts.OnChange != nil {
		v.OnConfigChange(func(e fsnotify.Event) {
			log.Infow("configuration changed", "file", e.Name, "op", e.Op.String())
			opts.OnChange(v)
		})
		v.WatchConfig()
	}

	if path != "" {
		log.Infow("config file loaded", "path", path)
	}
	return v, nil
}
