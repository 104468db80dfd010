package mailbox

import "errors"

var (
	ErrInvalidID        = errors.New("mailbox: invalid id")
	ErrInvalidFolder    = errors.New("mailbox: invalid folder")
	ErrInvalidRecipient = errors.New("mailbox: invalid recipient")
	ErrNoRecipients     = errors.New("mailbox: at least one recipient is required")
	ErrInvalidSubject   = errors.New("mailbox: invalid subject")
	ErrEmailNotFound    = errors.New("mailbox: email not found")
	ErrNotOwner         = errors.New("mailbox: email belongs to another owner")
	ErrDeliveryFailed   = errors.New("mailbox: delivery failed")
)
