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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/go-arcade/navmanager/internal/engine/job"
	"github.com/go-arcade/navmanager/pkg/cache"
	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/spf13/cobra"
)

var syncAll bool

var syncCmd = &cobra.Command{
	Use:   "sync [scope...]",
	Short: "Merge discovered entities into the navigation tree of each scope",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !syncAll {
			return errors.New("requires at least one scope, or --all")
		}
		return nil
	},
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "sync every configured scope")
}

func runSync(cmd *cobra.Command, args []string) error {
	c, cleanup, err := initCommand(configFile)
	if err != nil {
		return err
	}
	defer cleanup()

	scopes := args
	if syncAll {
		scopes = append(scopes, c.Conf.ScopeNames()...)
	}
	warnLocalCache(c.Conf.Cache.Driver)
	return syncScopes(cmd.Context(), c.Runner, scopes, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// processLocalCache 本地缓存只失效当前进程，运行中的 serve 要等到过期才能看到结果
func processLocalCache(driver string) bool {
	return driver == cache.DriverMemory || driver == cache.DriverHybrid
}

func warnLocalCache(driver string) {
	if processLocalCache(driver) {
		log.Warnw("cache driver keeps entries in process memory, a running server serves the old navigation until its entries expire",
			"driver", driver)
	}
}

func syncScopes(ctx context.Context, runner *job.SyncRunner, scopes []string, out, errOut io.Writer) error {
	names := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if s = strings.TrimSpace(s); s != "" {
			names = append(names, s)
		}
	}
	slices.Sort(names)
	scopes = slices.Compact(names)

	counts, err := runner.RunAll(ctx, scopes)
	for _, scope := range scopes {
		n, ok := counts[scope]
		if !ok {
			continue
		}
		if len(scopes) > 1 {
			fmt.Fprintf(out, "%s: synced %d items\n", scope, n)
		} else {
			fmt.Fprintf(out, "synced %d items\n", n)
		}
	}
	if err != nil {
		fmt.Fprintf(errOut, "sync failed: %v\n", err)
	}
	return err
}
