package access

import (
	"strings"
)

// Source は識別情報の出所です。
type Source string

const (
	SourceClaims Source = "claims"
	SourceHeader Source = "header"
)

// Identity は認証プロバイダが取り出した事実のみを保持します。認可判定は含みません。
type Identity struct {
	Subject    string
	Email      string
	LoginEmail string
	Name       string
	Groups     GroupSet
	Source     Source
}

// Provider はリクエストから Identity を取り出す認証プロバイダです。
type Provider interface {
	Name() string
	Identify(req Request) (*Identity, bool)
}

// ClaimsProvider はトークン発行者のクレームから Identity を作ります。
type ClaimsProvider struct{}

func (ClaimsProvider) Name() string { return string(SourceClaims) }

// Identify はクレームが存在すれば Identity を返します。
// 識別用メールは custom:assigned_email を優先し、なければ email を使います。
func (ClaimsProvider) Identify(req Request) (*Identity, bool) {
	if !req.HasClaims() {
		return nil, false
	}

	loginEmail := req.Claim(ClaimEmail)
	email := req.Claim(ClaimAssignedEmail)
	if email == "" {
		email = loginEmail
	}

	return &Identity{
		Subject:    req.Claim(ClaimSubject),
		Email:      email,
		LoginEmail: loginEmail,
		Name:       req.Claim(ClaimName),
		Groups:     NormalizeGroups(req.Claims[ClaimGroups]),
		Source:     SourceClaims,
	}, true
}

// InsecureHeaderProvider は署名検証なしでヘッダのメールアドレスを信用します。
// ID プロバイダ未設定の環境向けで、設定で明示的に有効化した場合のみ使われます。
type InsecureHeaderProvider struct {
	HeaderName string
}

func (InsecureHeaderProvider) Name() string { return string(SourceHeader) }

func (p InsecureHeaderProvider) Identify(req Request) (*Identity, bool) {
	name := p.HeaderName
	if name == "" {
		name = DefaultEmployeeHeader
	}

	email := strings.ToLower(req.Header(name))
	if email == "" {
		return nil, false
	}

	return &Identity{
		Email:      email,
		LoginEmail: email,
		Groups:     GroupSet{},
		Source:     SourceHeader,
	}, true
}
