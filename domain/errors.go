package domain

import "errors"

// Error kinds. Match them with errors.Is; the concrete error carries the
// message shown to API callers.
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("unauthorized")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// NewError returns an error with the given message that unwraps to kind.
func NewError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func validationError(msg string) error { return NewError(ErrValidation, msg) }

var (
	errCredentialsRequired = validationError("Username and password required")
	errTextRequired        = validationError("Text is required")
	errUsernameTaken       = NewError(ErrConflict, "Username already taken")
	errInvalidCredentials  = NewError(ErrAuth, "Invalid credentials")
	errUnauthorized        = NewError(ErrAuth, "Unauthorized")
	errTaskNotFound        = NewError(ErrNotFound, "Task not found")
)
