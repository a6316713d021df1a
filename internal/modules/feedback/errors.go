package feedback

import "errors"

var (
	ErrValidation      = errors.New("invalid feedback input")
	ErrNotFound        = errors.New("feedback not found")
	ErrForbidden       = errors.New("feedback access denied")
	ErrOrderNotReady   = errors.New("order is not finished")
	ErrAlreadyExists   = errors.New("feedback already submitted for this order")
	ErrAlreadyAnswered = errors.New("feedback already has a response")
)
