package record

import (
	"errors"
	"strings"
)

var (
	ErrEmptyUpdate      = errors.New("record: update requires at least one field")
	ErrInvalidTable     = errors.New("record: invalid table")
	ErrInvalidKey       = errors.New("record: invalid key")
	ErrInvalidField     = errors.New("record: invalid field")
	ErrNotFound         = errors.New("record: not found")
	ErrInvalidPageSize  = errors.New("record: invalid page size")
	ErrInvalidPageToken = errors.New("record: invalid page token")
)

// ValidationError は入力検証の失敗理由を列挙します。HTTP 層では 422 に変換されます。
type ValidationError struct {
	Errors []string
}

// NewValidationError は理由を指定して ValidationError を生成します。
func NewValidationError(reasons ...string) *ValidationError {
	return &ValidationError{Errors: reasons}
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Errors, "; ")
}
