package access

import (
	"fmt"
	"strings"
)

// Claim names issued by the Cognito user pool authorizer.
const (
	ClaimGroups        = "cognito:groups"
	ClaimEmail         = "email"
	ClaimName          = "name"
	ClaimAssignedEmail = "custom:assigned_email"
	ClaimSubject       = "sub"
)

const (
	DefaultEmployeeHeader = "X-Employee-Email"
	DefaultEmployeeGroup  = "employees"
	DefaultAdminGroup     = "admins"
	DefaultEmployeeName   = "Employee"
)

// Request は認可判定に必要なリクエスト情報です。
type Request struct {
	Claims  map[string]any
	Headers map[string]string
}

// Header はヘッダ名の大文字小文字を区別せずに値を返します。
func (r Request) Header(name string) string {
	if v, ok := r.Headers[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Claim は文字列クレームを返します。存在しない場合は空文字です。
func (r Request) Claim(name string) string {
	if r.Claims == nil {
		return ""
	}
	switch v := r.Claims[name].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// HasClaims はクレームが一つ以上あるかどうかを返します。
func (r Request) HasClaims() bool {
	return len(r.Claims) > 0
}

// GroupSet は正規化済みのグループ集合です。
type GroupSet map[string]struct{}

// Has は集合にグループが含まれるかどうかを返します。
func (g GroupSet) Has(name string) bool {
	_, ok := g[name]
	return ok
}

// NormalizeGroups はグループクレームを集合に変換します。
// カンマ区切り文字列、[a b] 形式の文字列、文字列のスライスを受け付けます。
func NormalizeGroups(claim any) GroupSet {
	set := GroupSet{}
	add := func(raw string) {
		name := strings.TrimSpace(raw)
		if name != "" {
			set[name] = struct{}{}
		}
	}

	switch v := claim.(type) {
	case nil:
	case string:
		trimmed := strings.TrimSpace(v)
		trimmed = strings.TrimPrefix(trimmed, "[")
		trimmed = strings.TrimSuffix(trimmed, "]")
		sep := ","
		if !strings.Contains(trimmed, ",") {
			sep = " "
		}
		for _, part := range strings.Split(trimmed, sep) {
			add(part)
		}
	case []string:
		for _, part := range v {
			add(part)
		}
	case []any:
		for _, part := range v {
			if s, ok := part.(string); ok {
				add(s)
			}
		}
	}

	return set
}
