package apigw

import (
	"strings"

	"github.com/ogurasousui/philocom-backoffice/internal/core/access"
)

const (
	corsAllowMethods = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
	corsAllowHeaders = "Content-Type,Authorization,X-Amz-Date,X-Api-Key,X-Amz-Security-Token"
)

// CORS は許可リストに含まれる Origin だけを反射し、それ以外は既定の Origin を返します。
type CORS struct {
	allowed       map[string]struct{}
	defaultOrigin string
	allowHeaders  string
}

// NewCORS は CORS を生成します。identityHeader が空でなければ許可ヘッダに加えます。
func NewCORS(allowedOrigins []string, defaultOrigin, identityHeader string) CORS {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	headers := corsAllowHeaders
	if identityHeader == "" {
		identityHeader = access.DefaultEmployeeHeader
	}
	headers += "," + identityHeader

	return CORS{allowed: allowed, defaultOrigin: strings.TrimSpace(defaultOrigin), allowHeaders: headers}
}

// Origin は Access-Control-Allow-Origin に設定する値を返します。
func (c CORS) Origin(requestOrigin string) string {
	if _, ok := c.allowed[strings.TrimRight(strings.TrimSpace(requestOrigin), "/")]; ok {
		return strings.TrimSpace(requestOrigin)
	}
	if c.defaultOrigin != "" {
		return c.defaultOrigin
	}
	return "*"
}

// Headers はレスポンスに付与する CORS ヘッダを返します。
// ワイルドカードの Origin には Allow-Credentials を付けません。
func (c CORS) Headers(requestOrigin string) map[string]string {
	origin := c.Origin(requestOrigin)
	headers := map[string]string{
		"Access-Control-Allow-Origin":  origin,
		"Access-Control-Allow-Methods": corsAllowMethods,
		"Access-Control-Allow-Headers": c.allowHeaders,
		"Vary":                         "Origin",
	}
	if origin != "*" {
		headers["Access-Control-Allow-Credentials"] = "true"
	}
	return headers
}
