package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means the endpoint URL or public key is missing.
	ErrNotConfigured       = errors.New("backend not configured")
	ErrNotFound            = errors.New("record not found")
	ErrMultipleRows        = errors.New("more than one record matched")
	ErrNoSession           = errors.New("no active session")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailTaken          = errors.New("email already registered")
	// ErrConfirmationPending is returned by SignUp when the address must be
	// confirmed before a session is issued.
	ErrConfirmationPending = errors.New("email confirmation pending")
)

// Error is a request, transport or authorization failure reported by the
// backend for one operation.
type Error struct {
	Op         string
	Collection Collection
	Status     int
	Code       string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	target := e.Op
	if e.Collection != "" {
		target = fmt.Sprintf("%s %s", e.Op, e.Collection)
	}
	switch {
	case e.Status != 0 && e.Code != "":
		return fmt.Sprintf("backend %s: status %d (%s): %s", target, e.Status, e.Code, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("backend %s: status %d: %s", target, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("backend %s: %v", target, e.Err)
	default:
		return fmt.Sprintf("backend %s: %s", target, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsBackendError reports whether err carries a backend *Error.
func IsBackendError(err error) bool {
	var backendErr *Error
	return errors.As(err, &backendErr)
}
