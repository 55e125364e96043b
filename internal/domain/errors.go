package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage failure")

	ErrEmptyName       = fmt.Errorf("%w: empty name", ErrInvalidInput)
	ErrDuplicateName   = fmt.Errorf("%w: duplicate name", ErrInvalidInput)
	ErrMissingTitle    = fmt.Errorf("%w: missing title", ErrInvalidInput)
	ErrMissingCover    = fmt.Errorf("%w: missing cover image", ErrInvalidInput)
	ErrUnknownCategory = fmt.Errorf("%w: unknown category", ErrInvalidInput)
	ErrInvalidImage    = fmt.Errorf("%w: unsupported image", ErrInvalidInput)

	ErrDuplicateUser = fmt.Errorf("%w: username or email already registered", ErrInvalidInput)
	ErrSecretInvalid = fmt.Errorf("%w: registration key is invalid", ErrInvalidInput)
	ErrSecretUsed    = fmt.Errorf("%w: registration key has already been used", ErrInvalidInput)

	ErrDuplicateSecret = errors.New("registration key already exists")
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

// ValidationError collects every failed check of a validation pass, in the
// order the checks ran. errors.Is matches any of the underlying sentinels as
// well as ErrInvalidInput.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Fields)+1)
	for _, f := range e.Fields {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return append(errs, ErrInvalidInput)
}
