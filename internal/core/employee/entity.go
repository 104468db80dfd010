package employee

import "time"

// Status は社員アカウントの状態を表します。
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// Employee は社員エンティティです。
// Email は社員が送受信に使う割り当てアドレス、LoginEmail は ID プロバイダへのログインアドレスです。
type Employee struct {
	ID            string
	Name          string
	Email         string
	LoginEmail    string
	Department    string
	Status        Status
	CognitoUserID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsEmployeeActive は更新系操作を許可できる状態かどうかを返します。
func IsEmployeeActive(e *Employee) bool {
	return e != nil && e.Status == StatusActive
}

// IsValidStatus は既知のステータスかどうかを返します。
func IsValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	default:
		return false
	}
}
