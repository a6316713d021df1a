package appointment

import "errors"

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("appointment not found")
	ErrForbidden     = errors.New("forbidden")
	ErrSlotTaken     = errors.New("time slot already taken")
	ErrInvalidState  = errors.New("invalid appointment state for this action")
	ErrQueueConflict = errors.New("queue number assigned concurrently")
)
