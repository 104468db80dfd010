package employee

import (
	"context"
	"time"
)

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, id string, changes Changes) (*Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	FindByCognitoUserID(ctx context.Context, cognitoUserID string) (*Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, string, error)
}

// Changes は部分更新の内容です。nil のフィールドは変更しません。
type Changes struct {
	Name          *string
	Department    *string
	Status        *Status
	CognitoUserID *string
	UpdatedAt     time.Time
}

// IsEmpty は UpdatedAt 以外に変更がないかどうかを返します。
func (c Changes) IsEmpty() bool {
	return c.Name == nil && c.Department == nil && c.Status == nil && c.CognitoUserID == nil
}

// ListEmployeesFilter は一覧取得用フィルタです。
type ListEmployeesFilter struct {
	Status    *Status
	Limit     int
	PageToken string
}
