package contact

import "time"

// Status は問い合わせの対応状況です。
type Status string

const (
	StatusNew      Status = "new"
	StatusRead     Status = "read"
	StatusReplied  Status = "replied"
	StatusArchived Status = "archived"
)

// Contact はウェブサイトから送信された問い合わせです。
type Contact struct {
	ID        string
	Name      string
	Email     string
	Company   string
	Phone     string
	Subject   string
	Message   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsValidStatus は既知のステータスかどうかを返します。
func IsValidStatus(status Status) bool {
	switch status {
	case StatusNew, StatusRead, StatusReplied, StatusArchived:
		return true
	default:
		return false
	}
}
