package errors

import "errors"

var (
	ErrNotFound  = errors.New("availability slot not found")
	ErrInvalidID = errors.New("invalid slot ID format")
)
