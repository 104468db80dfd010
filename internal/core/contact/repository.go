package contact

import (
	"context"
	"time"
)

// Repository は問い合わせ永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, contact *Contact) (*Contact, error)
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) (*Contact, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Contact, error)
	List(ctx context.Context, filter ListFilter) ([]*Contact, string, error)
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	Status    *Status
	Limit     int
	PageToken string
}
