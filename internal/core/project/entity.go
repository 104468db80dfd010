package project

import "time"

// Status はポートフォリオ項目の公開状態です。
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Project はウェブサイトに掲載する制作実績です。
type Project struct {
	ID          string
	Title       string
	Client      string
	Summary     string
	Description string
	Tags        []string
	ImageURL    string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsValidStatus は既知のステータスかどうかを返します。
func IsValidStatus(status Status) bool {
	return status == StatusDraft || status == StatusPublished
}
