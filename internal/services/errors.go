package services

import "errors"

// Error kinds returned by the service layer. Handlers map these onto
// HTTP statuses in exactly one place; use errors.Is when checking.
var (
	ErrValidation   = errors.New("validation error")
	ErrPermission   = errors.New("permission denied")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrNotFound     = errors.New("not found")
)
