package service

import (
	"errors"
	"fmt"

	"github.com/farisali522/birojasaapp/internal/ports"
)

var (
	// ErrForbidden means the actor's role (or ownership) does not allow the
	// action. Handlers respond 403 without detail.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound mirrors the store error for handler mapping.
	ErrNotFound = ports.ErrNotFound

	// ErrConflict means the aggregate moved underneath the actor (stale
	// status CAS) or the action was already applied. Retryable.
	ErrConflict = errors.New("conflict: request state changed, reload and retry")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// ValidationError is a user-visible bad-input failure. No state change has
// happened when one is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a user-input failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// mapStoreErr converts CAS/store sentinels into the service taxonomy.
func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ports.ErrStaleStatus):
		return ErrConflict
	case errors.Is(err, ports.ErrNotFound):
		return ErrNotFound
	default:
		return err
	}
}
