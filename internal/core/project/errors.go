package project

import "errors"

var (
	ErrInvalidID     = errors.New("project: invalid id")
	ErrInvalidTitle  = errors.New("project: invalid title")
	ErrInvalidStatus = errors.New("project: invalid status")
	ErrInvalidTag    = errors.New("project: invalid tag")
	ErrNotFound      = errors.New("project: not found")
)
