package access

import (
	"context"
	"errors"
	"strings"

	"github.com/ogurasousui/philocom-backoffice/internal/core/employee"
)

// EmployeeFinder は Resolver が利用する読み取り専用の社員ストアです。
type EmployeeFinder interface {
	FindByCognitoUserID(ctx context.Context, cognitoUserID string) (*employee.Employee, error)
	FindByEmail(ctx context.Context, email string) (*employee.Employee, error)
}

// Principal は解決済みの呼び出し元社員です。
// Synthesized が true の場合は永続化されていない仮の社員で、更新系操作には使えません。
type Principal struct {
	Employee    *employee.Employee
	Synthesized bool
	Source      Source
}

// Email は社員の割り当てメールアドレスを返します。
func (p *Principal) Email() string {
	if p == nil || p.Employee == nil {
		return ""
	}
	return p.Employee.Email
}

// Resolver はリクエストを社員レコードに対応付けます。
type Resolver struct {
	authz *Authorizer
	store EmployeeFinder
}

// NewResolver は Resolver を生成します。
func NewResolver(authz *Authorizer, store EmployeeFinder) *Resolver {
	if authz == nil {
		authz = NewAuthorizer(Options{})
	}
	return &Resolver{authz: authz, store: store}
}

// Authorizer は内部で使っている Authorizer を返します。
func (r *Resolver) Authorizer() *Authorizer {
	return r.authz
}

// ResolveEmployee は呼び出し元の社員を解決します。
// 識別子がなければストアを呼ばずに nil, nil を返します。
// 検索は cognitoUserId、次に小文字化したメールの順で行い、見つからなければ仮の社員を合成します。
// ストアの障害は *StoreError として返ります。
func (r *Resolver) ResolveEmployee(ctx context.Context, req Request) (*Principal, error) {
	id := r.authz.identify(req)
	if id == nil {
		return nil, nil
	}

	if id.Subject != "" {
		found, err := r.store.FindByCognitoUserID(ctx, id.Subject)
		switch {
		case err == nil && found != nil:
			return &Principal{Employee: found, Source: id.Source}, nil
		case err != nil && !errors.Is(err, employee.ErrEmployeeNotFound):
			return nil, &StoreError{Op: "find by cognito user id", Err: err}
		}
	}

	email := strings.ToLower(strings.TrimSpace(id.Email))
	if email != "" {
		found, err := r.store.FindByEmail(ctx, email)
		switch {
		case err == nil && found != nil:
			return &Principal{Employee: found, Source: id.Source}, nil
		case err != nil && !errors.Is(err, employee.ErrEmployeeNotFound):
			return nil, &StoreError{Op: "find by email", Err: err}
		}
	}

	return &Principal{Employee: synthesize(id), Synthesized: true, Source: id.Source}, nil
}

func synthesize(id *Identity) *employee.Employee {
	name := id.Name
	if name == "" {
		name = DefaultEmployeeName
	}
	loginEmail := id.LoginEmail
	if loginEmail == "" {
		loginEmail = id.Email
	}
	return &employee.Employee{
		Name:          name,
		Email:         id.Email,
		LoginEmail:    loginEmail,
		CognitoUserID: id.Subject,
	}
}

// RequireActive は更新系操作の前に必ず通す状態ゲートです。
// 未解決、合成された社員、active 以外の社員はすべて ErrAccessDenied になります。
func RequireActive(p *Principal) (*employee.Employee, error) {
	switch {
	case p == nil || p.Employee == nil:
		return nil, ErrNoAuthorization
	case p.Synthesized:
		return nil, ErrNotProvisioned
	case !employee.IsEmployeeActive(p.Employee):
		return nil, ErrEmployeeNotActive
	}
	return p.Employee, nil
}
