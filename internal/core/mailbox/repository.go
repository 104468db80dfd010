package mailbox

import (
	"context"
	"time"
)

// Repository はメール永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, email *Email) (*Email, error)
	Update(ctx context.Context, id string, changes Changes) (*Email, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Email, error)
	ListByOwner(ctx context.Context, filter ListFilter) ([]*Email, string, error)
}

// Changes は部分更新の内容です。
type Changes struct {
	Folder    *Folder
	Read      *bool
	UpdatedAt time.Time
}

// ListFilter は所有者とフォルダで絞り込みます。
type ListFilter struct {
	OwnerEmail string
	Folder     Folder
	Limit      int
	PageToken  string
}
