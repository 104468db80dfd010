package dynamo

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ogurasousui/philocom-backoffice/internal/core/employee"
	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
	dynamoapi "github.com/ogurasousui/philocom-backoffice/internal/platform/db/dynamo"
)

const (
	EmployeeEmailIndex   = "email-index"
	EmployeeCognitoIndex = "cognitoUserId-index"
)

type employeeItem struct {
	ID            string    `dynamodbav:"id"`
	Name          string    `dynamodbav:"name"`
	Email         string    `dynamodbav:"email"`
	LoginEmail    string    `dynamodbav:"loginEmail"`
	Department    string    `dynamodbav:"department"`
	Status        string    `dynamodbav:"status"`
	CognitoUserID string    `dynamodbav:"cognitoUserId,omitempty"`
	CreatedAt     time.Time `dynamodbav:"createdAt"`
	UpdatedAt     time.Time `dynamodbav:"updatedAt"`
}

func (i employeeItem) toEntity() *employee.Employee {
	return &employee.Employee{
		ID:            i.ID,
		Name:          i.Name,
		Email:         i.Email,
		LoginEmail:    i.LoginEmail,
		Department:    i.Department,
		Status:        employee.Status(i.Status),
		CognitoUserID: i.CognitoUserID,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

// EmployeeRepository は DynamoDB を利用した社員永続化の実装です。
// email と cognitoUserId にはそれぞれ GSI が必要です。
type EmployeeRepository struct {
	table
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(client dynamoapi.API, tableName string) *EmployeeRepository {
	return &EmployeeRepository{table{client: client, name: tableName}}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	item := employeeItem{
		ID:            uuid.NewString(),
		Name:          e.Name,
		Email:         strings.ToLower(e.Email),
		LoginEmail:    e.LoginEmail,
		Department:    e.Department,
		Status:        string(e.Status),
		CognitoUserID: e.CognitoUserID,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	if err := r.putNew(ctx, item); err != nil {
		return nil, err
	}
	return item.toEntity(), nil
}

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
		fields.Set("cognitoUserId", *changes.CognitoUserID)
	}
	if len(fields) > 0 {
		fields.Set(attrUpdatedAt, changes.UpdatedAt)
	}

	var item employeeItem
	if err := r.update(ctx, id, fields, &item); err != nil {
		return nil, translate(err, employee.ErrEmployeeNotFound)
	}
	return item.toEntity(), nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	return translate(r.delete(ctx, id), employee.ErrEmployeeNotFound)
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	var item employeeItem
	if err := r.get(ctx, id, &item); err != nil {
		return nil, translate(err, employee.ErrEmployeeNotFound)
	}
	return item.toEntity(), nil
}

// FindByEmail は小文字化したメールアドレスで email-index を検索します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	var item employeeItem
	if err := r.queryOne(ctx, EmployeeEmailIndex, "email", strings.ToLower(strings.TrimSpace(email)), &item); err != nil {
		return nil, translate(err, employee.ErrEmployeeNotFound)
	}
	return item.toEntity(), nil
}

func (r *EmployeeRepository) FindByCognitoUserID(ctx context.Context, cognitoUserID string) (*employee.Employee, error) {
	var item employeeItem
	if err := r.queryOne(ctx, EmployeeCognitoIndex, "cognitoUserId", cognitoUserID, &item); err != nil {
		return nil, translate(err, employee.ErrEmployeeNotFound)
	}
	return item.toEntity(), nil
}

func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	var filters []eqFilter
	if filter.Status != nil {
		filters = append(filters, eqFilter{attr: "status", value: string(*filter.Status)})
	}

	var items []employeeItem
	next, err := r.scanPage(ctx, filters, filter.Limit, filter.PageToken, &items)
	if err != nil {
		return nil, "", err
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	employees := make([]*employee.Employee, 0, len(items))
	for _, item := range items {
		employees = append(employees, item.toEntity())
	}
	return employees, next, nil
}
