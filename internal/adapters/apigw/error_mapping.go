package apigw

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ogurasousui/philocom-backoffice/internal/core/access"
	"github.com/ogurasousui/philocom-backoffice/internal/core/blog"
	"github.com/ogurasousui/philocom-backoffice/internal/core/contact"
	"github.com/ogurasousui/philocom-backoffice/internal/core/employee"
	"github.com/ogurasousui/philocom-backoffice/internal/core/mailbox"
	"github.com/ogurasousui/philocom-backoffice/internal/core/project"
	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
)

// Error はハンドラが HTTP ステータスを明示したい場合のエラーです。
type Error struct {
	Status  int
	Message string
	Err     error
}

// NewError は Error を生成します。
func NewError(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type problem struct {
	status  int
	message string
	details string
	errors  []string
}

func toProblem(err error) problem {
	var (
		httpErr       *Error
		validationErr *record.ValidationError
	)

	switch {
	case errors.As(err, &httpErr):
		p := problem{status: httpErr.Status, message: httpErr.Message}
		if httpErr.Err != nil {
			p.details = httpErr.Err.Error()
		}
		return p
	case errors.As(err, &validationErr):
		return problem{status: http.StatusUnprocessableEntity, errors: validationErr.Errors}
	case errors.Is(err, record.ErrEmptyUpdate):
		return problem{status: http.StatusUnprocessableEntity, errors: []string{err.Error()}}
	case errors.Is(err, access.ErrStoreUnavailable):
		return problem{status: http.StatusInternalServerError, message: "Employee lookup failed", details: err.Error()}
	case errors.Is(err, access.ErrAccessDenied),
		errors.Is(err, employee.ErrEmployeeInactive),
		errors.Is(err, mailbox.ErrNotOwner):
		return problem{status: http.StatusForbidden, message: err.Error()}
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, contact.ErrNotFound),
		errors.Is(err, project.ErrNotFound),
		errors.Is(err, blog.ErrPostNotFound),
		errors.Is(err, mailbox.ErrEmailNotFound),
		errors.Is(err, record.ErrNotFound):
		return problem{status: http.StatusNotFound, message: err.Error()}
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidEmail),
		errors.Is(err, employee.ErrInvalidLoginEmail),
		errors.Is(err, employee.ErrInvalidName),
		errors.Is(err, employee.ErrInvalidDepartment),
		errors.Is(err, employee.ErrInvalidStatus),
		errors.Is(err, employee.ErrEmailAlreadyExists),
		errors.Is(err, contact.ErrInvalidID),
		errors.Is(err, contact.ErrInvalidName),
		errors.Is(err, contact.ErrInvalidEmail),
		errors.Is(err, contact.ErrInvalidMessage),
		errors.Is(err, contact.ErrInvalidStatus),
		errors.Is(err, contact.ErrFieldTooLong),
		errors.Is(err, project.ErrInvalidID),
		errors.Is(err, project.ErrInvalidTitle),
		errors.Is(err, project.ErrInvalidStatus),
		errors.Is(err, project.ErrInvalidTag),
		errors.Is(err, blog.ErrInvalidID),
		errors.Is(err, blog.ErrInvalidTitle),
		errors.Is(err, blog.ErrInvalidSlug),
		errors.Is(err, blog.ErrInvalidStatus),
		errors.Is(err, blog.ErrSlugAlreadyExists),
		errors.Is(err, mailbox.ErrInvalidID),
		errors.Is(err, mailbox.ErrInvalidFolder),
		errors.Is(err, mailbox.ErrInvalidRecipient),
		errors.Is(err, mailbox.ErrNoRecipients),
		errors.Is(err, mailbox.ErrInvalidSubject),
		errors.Is(err, record.ErrInvalidPageSize),
		errors.Is(err, record.ErrInvalidPageToken):
		return problem{status: http.StatusBadRequest, message: err.Error()}
	case errors.Is(err, mailbox.ErrDeliveryFailed):
		return problem{status: http.StatusInternalServerError, message: "Email delivery failed", details: err.Error()}
	default:
		return problem{status: http.StatusInternalServerError, message: "Internal server error", details: err.Error()}
	}
}
