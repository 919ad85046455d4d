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
	"fmt"
	"io"
	"strings"

	"github.com/go-arcade/navmanager/internal/engine/service"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree <scope>",
	Short: "Print the navigation tree of a scope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cleanup, err := initCommand(configFile)
		if err != nil {
			return err
		}
		defer cleanup()

		rows, err := c.Nodes.Tree(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printTree(cmd.OutOrStdout(), rows)
		return nil
	},
}

func printTree(w io.Writer, rows []service.TreeRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}
	for _, r := range rows {
		var flags []string
		if !r.Visible {
			flags = append(flags, "hidden")
		}
		if r.Orphan {
			flags = append(flags, "orphan")
		}
		line := fmt.Sprintf("%s%s [%s #%d order=%d]", strings.Repeat("  ", r.Depth), r.Title, r.Kind, r.ID, r.Order)
		if r.Target != "" {
			line += " -> " + r.Target
		}
		if len(flags) > 0 {
			line += " (" + strings.Join(flags, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}
}
