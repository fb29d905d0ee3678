package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrAccessDenied          = errors.New("access denied")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
