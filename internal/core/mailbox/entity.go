package mailbox

import "time"

// Folder はメールボックス内のフォルダです。
type Folder string

const (
	FolderInbox Folder = "inbox"
	FolderSent  Folder = "sent"
	FolderTrash Folder = "trash"
)

// Email は社員ごとのメールボックスに保存されるメールです。
// OwnerEmail は所有者である社員の割り当てメールアドレスです。
type Email struct {
	ID         string
	OwnerEmail string
	Folder     Folder
	From       string
	To         []string
	Cc         []string
	Subject    string
	BodyHTML   string
	Read       bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsValidFolder は既知のフォルダかどうかを返します。
func IsValidFolder(folder Folder) bool {
	switch folder {
	case FolderInbox, FolderSent, FolderTrash:
		return true
	default:
		return false
	}
}
