package service

import "errors"

// Domain errors returned by every service in this package. Callers test
// them with errors.Is; the wrapped message carries the detail.
var (
	ErrValidation       = errors.New("validation failed")
	ErrDuplicateContent = errors.New("duplicate content")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("concurrent modification")
)
