package employee

import "errors"

var (
	ErrInvalidID          = errors.New("employee: invalid id")
	ErrInvalidEmail       = errors.New("employee: invalid email")
	ErrInvalidLoginEmail  = errors.New("employee: invalid login email")
	ErrInvalidName        = errors.New("employee: invalid name")
	ErrInvalidDepartment  = errors.New("employee: invalid department")
	ErrInvalidStatus      = errors.New("employee: invalid status")
	ErrEmployeeNotFound   = errors.New("employee: not found")
	ErrEmailAlreadyExists = errors.New("employee: email already exists")
	ErrEmployeeInactive   = errors.New("employee: account is not active")
)
