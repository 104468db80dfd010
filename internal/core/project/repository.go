package project

import (
	"context"
	"time"
)

// Repository は制作実績永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, project *Project) (*Project, error)
	Update(ctx context.Context, id string, changes Changes) (*Project, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, filter ListFilter) ([]*Project, string, error)
}

// Changes は部分更新の内容です。nil のフィールドは変更しません。
type Changes struct {
	Title       *string
	Client      *string
	Summary     *string
	Description *string
	Tags        *[]string
	ImageURL    *string
	Status      *Status
	UpdatedAt   time.Time
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	Status    *Status
	Limit     int
	PageToken string
}
