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

package middleware

import (
	"errors"
	"strings"

	"github.com/go-arcade/navmanager/pkg/http"
	"github.com/go-arcade/navmanager/pkg/http/jwt"
	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/gofiber/fiber/v2"
	goJwt "github.com/golang-jwt/jwt/v5"
)

// AuthorizationMiddleware 认证中间件
// 无 Authorization 头的请求按匿名放行，由后续 RequireRoles 或权限判断决定能否访问；
// 携带的令牌无效时直接拒绝。SecretKey 为空时不做任何校验。
func AuthorizationMiddleware(auth http.Auth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if auth.SecretKey == "" {
			return c.Next()
		}

		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return http.WithRepErrMsg(c, fiber.StatusUnauthorized, http.TokenFormatIncorrect, c.Path())
		}

		claims, err := jwt.ParseToken(parts[1], auth.SecretKey)
		if err != nil {
			if errors.Is(err, goJwt.ErrTokenExpired) {
				return http.WithRepErrMsg(c, fiber.StatusUnauthorized, http.TokenExpired, c.Path())
			}
			log.Debugw("parse token failed", "error", err)
			return http.WithRepErrMsg(c, fiber.StatusUnauthorized, http.InvalidToken, c.Path())
		}

		c.Locals(http.LocalClaims, claims)
		c.SetUserContext(jwt.NewContext(c.UserContext(), claims))
		return c.Next()
	}
}

// RequireRoles rejects anonymous requests and, when auth.AllowedRoles is
// set, requests whose claims hold none of them. A disabled auth (empty
// SecretKey) lets everything through.
func RequireRoles(auth http.Auth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if auth.SecretKey == "" {
			return c.Next()
		}
		claims, _ := c.Locals(http.LocalClaims).(*jwt.AuthClaims)
		if claims == nil {
			return http.WithRepErrMsg(c, fiber.StatusUnauthorized, http.Unauthorized, c.Path())
		}
		if len(auth.AllowedRoles) > 0 && !claims.HasRole(auth.AllowedRoles...) {
			return http.WithRepErrMsg(c, fiber.StatusForbidden, http.PermissionDenied, c.Path())
		}
		return c.Next()
	}
}
