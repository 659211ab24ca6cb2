// Package apperr holds the error taxonomy shared by the domain packages and
// the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthenticated")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Validation wraps ErrValidation with a human readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Forbidden wraps ErrForbidden with a human readable reason.
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// Conflict wraps ErrConflict with a human readable reason.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Message strips the sentinel prefix so the reason can be shown to a client.
func Message(err error) string {
	for _, base := range []error{ErrValidation, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrConflict} {
		if errors.Is(err, base) {
			msg := err.Error()
			prefix := base.Error() + ": "
			if i := strings.Index(msg, prefix); i >= 0 {
				return msg[i+len(prefix):]
			}
			return msg
		}
	}
	return err.Error()
}
