package contact

import "errors"

var (
	ErrInvalidID      = errors.New("contact: invalid id")
	ErrInvalidName    = errors.New("contact: invalid name")
	ErrInvalidEmail   = errors.New("contact: invalid email")
	ErrInvalidMessage = errors.New("contact: invalid message")
	ErrInvalidStatus  = errors.New("contact: invalid status")
	ErrFieldTooLong   = errors.New("contact: field too long")
	ErrNotFound       = errors.New("contact: not found")
)
