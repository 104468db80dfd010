package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/philocom-backoffice/internal/core/employee"
	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
	pgdb "github.com/ogurasousui/philocom-backoffice/internal/platform/db/postgres"
)

const (
	uniqueViolationCode = "23505"
	checkViolationCode  = "23514"
)

var employeeColumns = []string{"id", "name", "email", "login_email", "department", "status", "cognito_user_id", "created_at", "updated_at"}

var employeeSelect = "SELECT " + strings.Join(employeeColumns, ", ") + " FROM employees"

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (name, email, login_email, department, status, cognito_user_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+strings.Join(employeeColumns, ", "),
		e.Name,
		strings.ToLower(e.Email),
		e.LoginEmail,
		e.Department,
		string(e.Status),
		nullableString(e.CognitoUserID),
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は変更のある列のみを汎用アップデータで更新します。
func (r *EmployeeRepository) Update(ctx context.Context, id string, changes employee.Changes) (*employee.Employee, error) {
	fields := record.Fields{}
	if changes.Name != nil {
		fields.Set("name", *changes.Name)
	}
	if changes.Department != nil {
		fields.Set("department", *changes.Department)
	}
	if changes.Status != nil {
		fields.Set("status", string(*changes.Status))
	}
	if changes.CognitoUserID != nil {
		fields.Set("cognito_user_id", nullableString(*changes.CognitoUserID))
	}
	if len(fields) > 0 {
		fields.Set("updated_at", changes.UpdatedAt)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row, err := UpdateRow(ctx, exec, "employees", record.Key{"id": id}, fields, employeeColumns)
	if err != nil {
		return nil, err
	}

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は社員を物理削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return r.findOne(ctx, employeeSelect+` WHERE id = $1 LIMIT 1`, id)
}

// FindByEmail は小文字化したメールアドレスで社員を取得します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	return r.findOne(ctx, employeeSelect+` WHERE email = $1 LIMIT 1`, strings.ToLower(strings.TrimSpace(email)))
}

// FindByCognitoUserID は ID プロバイダのサブジェクトで社員を取得します。
func (r *EmployeeRepository) FindByCognitoUserID(ctx context.Context, cognitoUserID string) (*employee.Employee, error) {
	return r.findOne(ctx, employeeSelect+` WHERE cognito_user_id = $1 LIMIT 1`, cognitoUserID)
}

func (r *EmployeeRepository) findOne(ctx context.Context, query string, arg any) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanEmployee(exec.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は社員の一覧を名前順に取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", record.ErrInvalidPageSize
	}

	var page listPage
	if filter.Status != nil {
		page.where("status", string(*filter.Status))
	}

	query, args, offset, err := page.build(employeeSelect, "name ASC, id ASC", filter.Limit, filter.PageToken)
	if err != nil {
		return nil, "", err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit+1)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeePgError(err)
	}

	next := nextToken(len(employees), filter.Limit, offset)
	if next != "" {
		employees = employees[:filter.Limit]
	}
	return employees, next, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		e             employee.Employee
		status        string
		cognitoUserID sql.NullString
	)

	if err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Email,
		&e.LoginEmail,
		&e.Department,
		&status,
		&cognitoUserID,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	e.Status = employee.Status(status)
	if cognitoUserID.Valid {
		e.CognitoUserID = cognitoUserID.String
	}
	return &e, nil
}

func translateEmployeePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return employee.ErrEmailAlreadyExists
		case checkViolationCode:
			return employee.ErrInvalidStatus
		}
	}
	return err
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
