package blog

import "errors"

var (
	ErrInvalidID         = errors.New("blog: invalid id")
	ErrInvalidTitle      = errors.New("blog: invalid title")
	ErrInvalidSlug       = errors.New("blog: invalid slug")
	ErrInvalidStatus     = errors.New("blog: invalid status")
	ErrSlugAlreadyExists = errors.New("blog: slug already exists")
	ErrPostNotFound      = errors.New("blog: post not found")
)
