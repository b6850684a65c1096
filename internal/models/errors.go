package models

import "errors"

var (
	// ErrConflict is returned when a guarded upsert finds a newer row than the caller loaded.
	ErrConflict = errors.New("attendance override was changed by someone else")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden is returned when the operator's role does not allow the action.
	ErrForbidden = errors.New("operation not allowed for this role")
	// ErrInvalidInput is returned for malformed or out of range arguments.
	ErrInvalidInput = errors.New("invalid input")
)
