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

package jwt

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-arcade/navmanager/pkg/http"
	"github.com/go-arcade/navmanager/pkg/log"
	"github.com/golang-jwt/jwt/v5"
)

type AuthClaims struct {
	UserId      string   `json:"userId"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// HasRole reports whether any of roles is held.
func (a *AuthClaims) HasRole(roles ...string) bool {
	if a == nil {
		return false
	}
	for _, r := range roles {
		if slices.Contains(a.Roles, r) {
			return true
		}
	}
	return false
}

func (a *AuthClaims) HasPermission(perm string) bool {
	return a != nil && slices.Contains(a.Permissions, perm)
}

var issuer = "navmanager"

var ErrInvalidToken = errors.New("invalid token")

// GenToken 生成 access_token 和 refresh_token
func GenToken(claims AuthClaims, secretKey []byte, accessExpire, refreshExpire time.Duration) (aToken, rToken string, err error) {
	now := time.Now()

	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   claims.UserId,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(accessExpire)),
	}
	aToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString(secretKey)
	if err != nil {
		log.Errorw("sign access token failed", "error", err)
		return "", "", err
	}

	rClaims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   claims.UserId,
		ExpiresAt: jwt.NewNumericDate(now.Add(refreshExpire)),
	}
	rToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, rClaims).SignedString(secretKey)
	if err != nil {
		log.Errorw("sign refresh token failed", "error", err)
		return "", "", err
	}
	return aToken, rToken, nil
}

func keyFunc(secretKey string) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	}
}

// ParseToken 校验 access_token
func ParseToken(aToken, secretKey string) (*AuthClaims, error) {
	claims := new(AuthClaims)
	token, err := jwt.ParseWithClaims(aToken, claims, keyFunc(secretKey), jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, jwt.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshToken 用 refresh_token 换取新的令牌对，角色沿用 claims
func RefreshToken(auth http.Auth, claims AuthClaims, rToken string) (map[string]string, error) {
	var refreshClaims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(rToken, &refreshClaims, keyFunc(auth.SecretKey), jwt.WithIssuer(issuer))
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, jwt.ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if refreshClaims.Subject != claims.UserId {
		return nil, ErrInvalidToken
	}

	aToken, newRToken, err := GenToken(claims, []byte(auth.SecretKey), auth.AccessExpire, auth.RefreshExpire)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"accessToken":  aToken,
		"refreshToken": newRToken,
	}, nil
}

type claimsKey struct{}

// NewContext 将 claims 放入 ctx，供权限判断使用
func NewContext(ctx context.Context, claims *AuthClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// FromContext 返回 ctx 中的 claims，匿名请求返回 nil
func FromContext(ctx context.Context) *AuthClaims {
	if ctx == nil {
		return nil
	}
	claims, _ := ctx.Value(claimsKey{}).(*AuthClaims)
	return claims
}
