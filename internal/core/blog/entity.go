package blog

import "time"

// Status はブログ記事の公開状態です。
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Post はブログ記事です。Slug は一意で、公開 URL に使われます。
type Post struct {
	ID          string
	Slug        string
	Title       string
	Excerpt     string
	Body        string
	Author      string
	Tags        []string
	Status      Status
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPublished は公開済みかどうかを返します。
func (p *Post) IsPublished() bool {
	return p != nil && p.Status == StatusPublished
}

// IsValidStatus は既知のステータスかどうかを返します。
func IsValidStatus(status Status) bool {
	return status == StatusDraft || status == StatusPublished
}
