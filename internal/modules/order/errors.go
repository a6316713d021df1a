package order

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("order not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
)
