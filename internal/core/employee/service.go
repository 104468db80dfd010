package employee

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// LoginInput は ID プロバイダにログインを作成する際の入力です。
type LoginInput struct {
	LoginEmail    string
	AssignedEmail string
	Name          string
}

// IdentityProvisioner は ID プロバイダ上のログインを管理します。
type IdentityProvisioner interface {
	CreateLogin(ctx context.Context, in LoginInput) (string, error)
	SetLoginEnabled(ctx context.Context, loginEmail string, enabled bool) error
	DeleteLogin(ctx context.Context, loginEmail string) error
}

type noopProvisioner struct{}

func (noopProvisioner) CreateLogin(context.Context, LoginInput) (string, error) { return "", nil }

func (noopProvisioner) SetLoginEnabled(context.Context, string, bool) error { return nil }

func (noopProvisioner) DeleteLogin(context.Context, string) error { return nil }

const (
	maxNameLength       = 120
	maxDepartmentLength = 100
)

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
	idp   IdentityProvisioner
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (*Employee, error)
	DeactivateEmployee(ctx context.Context, in DeleteEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
}

// NewService は Service を生成します。clock, tx, idp は nil の場合に既定実装を使います。
func NewService(repo Repository, clock Clock, tx TransactionManager, idp IdentityProvisioner) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if idp == nil {
		idp = noopProvisioner{}
	}
	return &Service{repo: repo, clock: clock, tx: tx, idp: idp}
}

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	Name       string
	Email      string
	LoginEmail string
	Department string
	Status     *Status
}

// UpdateEmployeeInput は管理者による社員更新の入力です。name, status, department のみ更新できます。
type UpdateEmployeeInput struct {
	ID         string
	Name       *string
	Status     *Status
	Department *string
}

// UpdateProfileInput は社員本人によるプロフィール更新の入力です。
type UpdateProfileInput struct {
	ID         string
	Name       *string
	Department *string
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	PageSize  int
	PageToken string
	Status    *Status
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// CreateEmployee は新しい社員を作成し、設定されていればログインも払い出します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	loginEmail := email
	if strings.TrimSpace(in.LoginEmail) != "" {
		loginEmail, err = NormalizeEmail(in.LoginEmail)
		if err != nil {
			return nil, ErrInvalidLoginEmail
		}
	}

	department, err := normalizeDepartment(in.Department)
	if err != nil {
		return nil, err
	}

	status := StatusActive
	if in.Status != nil {
		if !IsValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status = *in.Status
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureEmailNotExists(txCtx, email); err != nil {
			return err
		}

		subject, err := s.idp.CreateLogin(txCtx, LoginInput{LoginEmail: loginEmail, AssignedEmail: email, Name: name})
		if err != nil {
			return fmt.Errorf("employee: create login: %w", err)
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Employee{
			Name:          name,
			Email:         email,
			LoginEmail:    loginEmail,
			Department:    department,
			Status:        status,
			CognitoUserID: subject,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			if subject != "" {
				if delErr := s.idp.DeleteLogin(txCtx, loginEmail); delErr != nil {
					return errors.Join(err, fmt.Errorf("employee: rollback login: %w", delErr))
				}
			}
			return err
		}

		if status != StatusActive && subject != "" {
			if err := s.idp.SetLoginEnabled(txCtx, loginEmail, false); err != nil {
				return fmt.Errorf("employee: disable login: %w", err)
			}
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateEmployee は許可リストに含まれるフィールドのみを更新します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	if in.Name == nil && in.Status == nil && in.Department == nil {
		return nil, record.NewValidationError("no valid fields to update (allowed: name, status, department)")
	}

	changes, err := buildChanges(in.Name, in.Department)
	if err != nil {
		return nil, err
	}
	if in.Status != nil {
		if !IsValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status := *in.Status
		changes.Status = &status
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if changes.Status != nil && *changes.Status != existing.Status && existing.CognitoUserID != "" {
			enabled := *changes.Status == StatusActive
			if err := s.idp.SetLoginEnabled(txCtx, existing.LoginEmail, enabled); err != nil {
				return fmt.Errorf("employee: sync login status: %w", err)
			}
		}

		changes.UpdatedAt = s.clock.Now()
		result, err := s.repo.Update(txCtx, existing.ID, changes)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// UpdateProfile は社員本人のプロフィールを更新します。active でない社員は拒否されます。
func (s *Service) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	if in.Name == nil && in.Department == nil {
		return nil, record.NewValidationError("no valid fields to update (allowed: name, department)")
	}

	changes, err := buildChanges(in.Name, in.Department)
	if err != nil {
		return nil, err
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		if !IsEmployeeActive(existing) {
			return ErrEmployeeInactive
		}

		changes.UpdatedAt = s.clock.Now()
		result, err := s.repo.Update(txCtx, existing.ID, changes)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeactivateEmployee は社員を論理削除します (status = inactive)。
func (s *Service) DeactivateEmployee(ctx context.Context, in DeleteEmployeeInput) (*Employee, error) {
	inactive := StatusInactive
	return s.UpdateEmployee(ctx, UpdateEmployeeInput{ID: in.ID, Status: &inactive})
}

// DeleteEmployee は社員を物理削除します。紐づくログインも削除します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if existing.CognitoUserID != "" {
			if err := s.idp.DeleteLogin(txCtx, existing.LoginEmail); err != nil {
				return fmt.Errorf("employee: delete login: %w", err)
			}
		}

		return s.repo.Delete(txCtx, existing.ID)
	})
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は社員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, err := record.NormalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	var statusPtr *Status
	if in.Status != nil {
		if !IsValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status := *in.Status
		statusPtr = &status
	}

	var (
		employees []*Employee
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		resultEmployees, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			Status:    statusPtr,
			Limit:     limit,
			PageToken: strings.TrimSpace(in.PageToken),
		})
		if err != nil {
			return err
		}
		employees = resultEmployees
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email string) error {
	emp, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil {
		return ErrEmailAlreadyExists
	}
	return nil
}

func buildChanges(name, department *string) (Changes, error) {
	var changes Changes

	if name != nil {
		normalized, err := normalizeName(*name)
		if err != nil {
			return Changes{}, err
		}
		changes.Name = &normalized
	}

	if department != nil {
		normalized, err := normalizeDepartment(*department)
		if err != nil {
			return Changes{}, err
		}
		changes.Department = &normalized
	}

	return changes, nil
}

// NormalizeEmail はメールアドレスを検証し小文字化します。
func NormalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len(trimmed) > maxNameLength {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func normalizeDepartment(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) > maxDepartmentLength {
		return "", ErrInvalidDepartment
	}
	return trimmed, nil
}
