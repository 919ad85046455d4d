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

package job

// SyncConf 定时同步配置
type SyncConf struct {
	// Cron spec, six fields (seconds first) or a descriptor like "@every 30m".
	// Empty disables scheduled sync.
	Cron    string   `mapstructure:"cron"`
	Scopes  []string `mapstructure:"scopes"`
	OnStart bool     `mapstructure:"onStart"`
	// Timeout of a single scope sync in seconds.
	Timeout int `mapstructure:"timeout"`
}

func (c *SyncConf) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 120
	}
}
