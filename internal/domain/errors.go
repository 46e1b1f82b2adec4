package domain

import "errors"

// Error kinds. Every error returned by the service layer matches exactly one of them
// with errors.Is, and the API maps each kind to a status code.
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidOperation      = errors.New("invalid operation")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrValidation            = errors.New("validation failed")
)

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() error {
	return e.kind
}

// NewError creates a sentinel error with its own message that also matches kind.
func NewError(kind error, msg string) error {
	return &kindError{msg: msg, kind: kind}
}
