// Package apperr holds the sentinel errors shared across the service layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotDocument marks an operation on a file that is not a Markdown note.
	ErrNotDocument = errors.New("not a markdown document")

	// ErrAPIDisabled is returned by the legacy account API when it is switched off.
	ErrAPIDisabled = errors.New("account api disabled")
)
