package domain

import (
	"errors"
	"fmt"
)

// Errors returned by core operations. The handler layer maps these to
// HTTP statuses; nothing below it speaks HTTP.
var (
	// ErrUnauthenticated means no requester identity was presented.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden means the requester is known but lacks permission.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound covers both an absent resource and a resource the
	// requester may not read. Read paths never confirm existence to a
	// caller who could not see the post anyway.
	ErrNotFound = errors.New("not found")

	// ErrSpaceUnbound marks a SPACE-visibility post whose space row is
	// missing. That is a data-integrity fault, not an ordinary denial,
	// and callers surface it distinctly from ErrNotFound.
	ErrSpaceUnbound = errors.New("space posts require space membership")
)

// ValidationError reports malformed input. It is returned before any
// authorization check or storage access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError for a field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
