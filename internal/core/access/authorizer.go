package access

import (
	"strings"
)

// Options は Authorizer の設定です。
type Options struct {
	EmployeeGroup string
	AdminGroup    string
	// AllowHeaderIdentity が true の場合のみ InsecureHeaderProvider を有効にします。
	AllowHeaderIdentity bool
	HeaderName          string
}

// Decision は ValidateAccess の判定結果です。
type Decision struct {
	Authorized    bool
	EmployeeEmail string
	Source        Source
	Err           error
}

// Authorizer はリクエストが社員または管理者として振る舞えるかを判定します。
// 判定は入力のみに依存し、副作用を持ちません。
type Authorizer struct {
	claims        ClaimsProvider
	header        Provider
	employeeGroup string
	adminGroup    string
}

// NewAuthorizer は Authorizer を生成します。
func NewAuthorizer(opts Options) *Authorizer {
	employeeGroup := strings.TrimSpace(opts.EmployeeGroup)
	if employeeGroup == "" {
		employeeGroup = DefaultEmployeeGroup
	}
	adminGroup := strings.TrimSpace(opts.AdminGroup)
	if adminGroup == "" {
		adminGroup = DefaultAdminGroup
	}

	a := &Authorizer{employeeGroup: employeeGroup, adminGroup: adminGroup}
	if opts.AllowHeaderIdentity {
		a.header = InsecureHeaderProvider{HeaderName: strings.TrimSpace(opts.HeaderName)}
	}
	return a
}

// HeaderIdentityEnabled は署名なしヘッダ認証が有効かどうかを返します。
func (a *Authorizer) HeaderIdentityEnabled() bool {
	return a.header != nil
}

// ValidateAccess はリクエストを社員として認可できるか判定します。
// employees グループを持つクレームを優先し、次にフォールバックヘッダを使います。
func (a *Authorizer) ValidateAccess(req Request) Decision {
	if id, ok := a.claims.Identify(req); ok && id.Groups.Has(a.employeeGroup) && id.Email != "" {
		return Decision{Authorized: true, EmployeeEmail: id.Email, Source: SourceClaims}
	}

	if a.header != nil {
		if id, ok := a.header.Identify(req); ok {
			return Decision{Authorized: true, EmployeeEmail: id.Email, Source: SourceHeader}
		}
	}

	return Decision{Err: ErrNoAuthorization}
}

// ValidateAdmin は管理者グループを持つクレームを要求します。ヘッダによる代替はありません。
func (a *Authorizer) ValidateAdmin(req Request) (*Identity, error) {
	id, ok := a.claims.Identify(req)
	if !ok {
		return nil, ErrNoAuthorization
	}
	if !id.Groups.Has(a.adminGroup) {
		return nil, ErrNotAdmin
	}
	return id, nil
}

// identify は ResolveEmployee 用に識別子を導出します。
// ValidateAccess と同じ優先順位で、employees グループとメールを持つクレーム、次にフォールバックヘッダを使います。
// どちらにも当てはまらない場合のみグループのないクレームを使います。
func (a *Authorizer) identify(req Request) *Identity {
	claimsID, hasClaims := a.claims.Identify(req)
	if hasClaims && claimsID.Groups.Has(a.employeeGroup) && claimsID.Email != "" {
		return claimsID
	}

	if a.header != nil {
		if headerID, ok := a.header.Identify(req); ok {
			return headerID
		}
	}

	if !hasClaims || (claimsID.Subject == "" && claimsID.Email == "") {
		return nil
	}
	return claimsID
}
