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
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/go-arcade/navmanager/pkg/http/jwt"
	"github.com/go-arcade/navmanager/pkg/log"
)

// AllowAll grants every permission. It is used when the API runs without
// authentication.
type AllowAll struct{}

func (AllowAll) Can(context.Context, string) bool { return true }

// RuleChecker evaluates permissions against the caller's jwt claims. A
// permission with a configured rule is decided by the rule expression;
// any other permission must be listed in the claims. Rule names match
// case-insensitively.
//
// Rule environment: user, roles, permissions, permission, hasRole(r),
// hasPermission(p). Example: `"admin" in roles || hasPermission("nav.view")`.
type RuleChecker struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
}

func ruleEnv(claims *jwt.AuthClaims, permission string) map[string]any {
	env := map[string]any{
		"user":          "",
		"roles":         []string{},
		"permissions":   []string{},
		"permission":    permission,
		"hasRole":       func(role string) bool { return claims.HasRole(role) },
		"hasPermission": func(p string) bool { return claims.HasPermission(p) },
	}
	if claims != nil {
		env["user"] = claims.UserId
		if claims.Roles != nil {
			env["roles"] = claims.Roles
		}
		if claims.Permissions != nil {
			env["permissions"] = claims.Permissions
		}
	}
	return env
}

// NewRuleChecker compiles rules up front so a bad rule fails at startup.
func NewRuleChecker(rules map[string]string) (*RuleChecker, error) {
	programs, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &RuleChecker{programs: programs}, nil
}

func compileRules(rules map[string]string) (map[string]*vm.Program, error) {
	programs := make(map[string]*vm.Program, len(rules))
	for name, rule := range rules {
		program, err := expr.Compile(rule, expr.Env(ruleEnv(nil, name)), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile permission rule %q: %w", name, err)
		}
		programs[strings.ToLower(name)] = program
	}
	return programs, nil
}

// Reload swaps the rule set. On a compile error the current rules stay.
func (r *RuleChecker) Reload(rules map[string]string) error {
	programs, err := compileRules(rules)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.programs = programs
	r.mu.Unlock()
	return nil
}

// Can is false for anonymous callers.
func (r *RuleChecker) Can(ctx context.Context, permission string) bool {
	claims := jwt.FromContext(ctx)
	if claims == nil {
		return false
	}
	r.mu.RLock()
	program, ok := r.programs[strings.ToLower(permission)]
	r.mu.RUnlock()
	if !ok {
		return slices.Contains(claims.Permissions, permission)
	}
	out, err := expr.Run(program, ruleEnv(claims, permission))
	if err != nil {
		log.Warnw("permission rule failed", "permission", permission, "error", err)
		return false
	}
	allowed, _ := out.(bool)
	return allowed
}
