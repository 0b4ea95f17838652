package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. start date after end date, inactive horse).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when the caller's identity does not carry the
// role or ownership a transition requires. It deliberately says nothing
// about whether the target resource exists beyond "not permitted".
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("not permitted")

// ErrConflict is the sentinel wrapped by ConflictError. Use
// errors.Is(err, ErrConflict) to detect a guard refusal without caring
// about the detail.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("range conflict")

// ErrDependency is returned when the store or an external collaborator could
// not complete an operation. It must never be collapsed into ErrConflict:
// "those dates are taken" and "the database is unreachable" demand different
// user guidance, and only the latter is retryable as-is.
// Handlers should map this to HTTP 503.
var ErrDependency = errors.New("dependency failure")

// ConflictError carries enough detail for the UI to explain why a proposed
// range was refused: the range it collided with and whether that range is an
// owner block or another rider's approved booking. It never carries the
// other party's message contents.
type ConflictError struct {
	Proposed DateRange
	With     UnavailableRange
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: %s overlaps %s %s",
		ErrConflict, e.Proposed, e.With.Kind, e.With.Range)
}

// Unwrap makes errors.Is(err, ErrConflict) work on wrapped ConflictErrors.
func (e *ConflictError) Unwrap() error { return ErrConflict }
