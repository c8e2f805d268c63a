package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure causes.
var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrRoomNotFound    = errors.New("room not found")
)

// ValidationError rejects an operation before any persistence call: an
// occupied relocation target, an invalid date or a bad price input. No
// state changes.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ConflictError means the persistence collaborator rejected a mutation
// because server-side state diverged, typically a relocation race. The
// server's word is final: the caller reverts and re-fetches, and the
// operation is retryable against the fresh state.
type ConflictError struct {
	Op  string
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict during %s: %v", e.Op, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// TransportError wraps a network or auth failure from a collaborator call.
// Retryable; the wrapped operation is idempotent on its identifier.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a local validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a server-side conflict rejection.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
