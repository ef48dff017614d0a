package apperrors

import "errors"

// Sentinel errors for outcomes the handler layer must distinguish.
// Repositories and helpers wrap these with context; handlers check
// with errors.Is and translate to the response envelope.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateKeyword   = errors.New("keyword already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account disabled")
)
