package core

import (
	"errors"
	"fmt"
	"strings"

	"reliefnet-backend-go/internal/db"
)

// Error taxonomy shared by every service. Services wrap one of these with a
// user-facing message: fmt.Errorf("%w: Disaster not found", ErrNotFound).
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidToken    = errors.New("invalid token")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

var sentinels = []error{ErrValidation, ErrUnauthenticated, ErrInvalidToken, ErrForbidden, ErrNotFound, ErrConflict}

// Message returns the user-facing text of a taxonomy error: whatever follows
// the sentinel. Errors outside the taxonomy return their full text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	text := err.Error()
	for _, s := range sentinels {
		if !errors.Is(err, s) {
			continue
		}
		prefix := s.Error() + ": "
		if i := strings.Index(text, prefix); i >= 0 {
			return text[i+len(prefix):]
		}
		return text
	}
	return text
}

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// translate maps repository sentinels into the taxonomy. Anything else is
// returned unchanged and becomes a 500.
func translate(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, notFoundMsg)
	}
	return err
}
