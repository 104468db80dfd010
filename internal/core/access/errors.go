package access

import (
	"errors"
	"fmt"
)

var (
	ErrAccessDenied      = errors.New("access: denied")
	ErrNoAuthorization   = fmt.Errorf("%w: no authorization found", ErrAccessDenied)
	ErrNotAdmin          = fmt.Errorf("%w: admin group required", ErrAccessDenied)
	ErrNotProvisioned    = fmt.Errorf("%w: no employee record for identity", ErrAccessDenied)
	ErrEmployeeNotActive = fmt.Errorf("%w: employee is not active", ErrAccessDenied)
	ErrStoreUnavailable  = errors.New("access: employee store unavailable")
)

// StoreError は社員ストアの参照失敗を表します。「該当なし」とは区別されます。
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable.Error(), e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is により errors.Is(err, ErrStoreUnavailable) が成立します。
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}
