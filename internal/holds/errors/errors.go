package errors

import "errors"

var (
	ErrNotFound     = errors.New("hold not found")
	ErrInvalidID    = errors.New("invalid hold ID format")
	ErrNoTransition = errors.New("hold is no longer pending")
)
