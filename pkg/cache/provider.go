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

package cache

import (
	"fmt"

	"github.com/google/wire"
)

// ProviderSet 提供缓存依赖
var ProviderSet = wire.NewSet(ProvideICache)

// ProvideICache 根据配置选择缓存后端；DriverNone 返回 nil，调用方直接回源
func ProvideICache(conf Conf) (ICache, func(), error) {
	conf.SetDefaults()
	noop := func() {}

	switch conf.Driver {
	case DriverNone:
		return nil, noop, nil
	case DriverMemory:
		return NewFastCache(FastCacheConfig{MaxBytes: conf.LocalMaxBytes}), noop, nil
	case DriverRedis:
		client, cleanup, err := NewRedisCmdable(conf.Redis)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisCache(client), cleanup, nil
	case DriverHybrid:
		client, cleanup, err := NewRedisCmdable(conf.Redis)
		if err != nil {
			return nil, nil, err
		}
		local := NewFastCache(FastCacheConfig{MaxBytes: conf.LocalMaxBytes})
		return NewHybridCache(local, NewRedisCache(client), conf.LocalTTLRatio), cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache driver %q", conf.Driver)
	}
}
