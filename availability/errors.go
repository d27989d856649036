/*
errors.go - Error taxonomy for the availability engine

PURPOSE:
  Three categories, matching how callers must react:
  1. Validation errors - malformed input, rejected before any store call
  2. Invalid-state errors - one-shot approval violations (see approval pkg)
  3. Store errors - persistence failures, propagated unchanged

  Resolution itself is total over well-formed input: absence of data falls
  through to the default tier, so resolve never fails once the store reads
  succeed. There is no retry logic here; resolution is idempotent and safe
  for the caller to re-invoke.

SEE ALSO:
  - approval/workflow.go: InvalidStateError and its sentinel
*/
package availability

import (
	"errors"
	"fmt"

	"github.com/warp/availability-engine/approval"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all input validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced worker or exception
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable wraps persistence failures. The engine performs
	// no retries; callers may re-invoke safely.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError reports a single rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is the caller's fault and should
// map to a 4xx response rather than a retry.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, approval.ErrInvalidState) ||
		errors.Is(err, ErrNotFound)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
