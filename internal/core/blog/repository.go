package blog

import (
	"context"
	"time"
)

// Repository はブログ記事永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, post *Post) (*Post, error)
	Update(ctx context.Context, id string, changes Changes) (*Post, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Post, error)
	FindBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context, filter ListFilter) ([]*Post, string, error)
}

// Changes は部分更新の内容です。nil のフィールドは変更しません。
type Changes struct {
	Slug        *string
	Title       *string
	Excerpt     *string
	Body        *string
	Author      *string
	Tags        *[]string
	Status      *Status
	PublishedAt *time.Time
	UpdatedAt   time.Time
}

type ListFilter struct {
	Status    *Status
	Limit     int
	PageToken string
}
