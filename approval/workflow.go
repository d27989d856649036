/*
Package approval implements the shared admin-approval state machine.

PURPOSE:
  Overrides and time-off requests carry the same three-state approval
  lifecycle: created pending, decided exactly once by an admin, immutable
  afterwards. Rather than duplicating that shape per entity, this package
  owns it once and the availability package embeds a Record in each
  exception type, tagged with a Kind.

STATE MACHINE:

          submit
   (none) ------> pending --decide(approved)--> approved   [terminal]
                     |
                     +------decide(denied)----> denied     [terminal]

  The only way out of a terminal state is a brand-new submission, which
  creates a fresh record (the availability package decides what "fresh"
  means per entity kind).

SEE ALSO:
  - availability/exception.go: Embeds Record in Override and TimeOffRequest
*/
package approval

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// STATUS AND DECISION
// =============================================================================

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

// Decision is the admin verdict applied to a pending record.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionDenied   Decision = "denied"
)

// Valid reports whether d is one of the two allowed verdicts.
func (d Decision) Valid() bool {
	return d == DecisionApproved || d == DecisionDenied
}

// Kind tags which entity type a record belongs to.
type Kind string

const (
	KindOverride Kind = "override"
	KindTimeOff  Kind = "time_off"
)

// =============================================================================
// RECORD - Approval state embedded in each exception row
// =============================================================================

// Record holds the approval state for a single exception row.
// ApprovedAt denotes decision time and is set for denials too; the field
// name is kept for continuity with the rows it is persisted into.
type Record struct {
	Status     Status
	AdminNotes string
	ApprovedBy string
	ApprovedAt *time.Time
}

// NewPending returns a fresh pending record with no decision data.
// Resubmission resets to exactly this state, discarding any prior verdict.
func NewPending() Record {
	return Record{Status: StatusPending}
}

// Decide transitions a pending record to approved or denied.
// Returns InvalidStateError if the record is not pending: decisions are
// one-shot and terminal states cannot be re-decided.
func (r *Record) Decide(decision Decision, adminID, notes string, at time.Time) error {
	if !decision.Valid() {
		return fmt.Errorf("invalid decision %q", decision)
	}
	if r.Status != StatusPending {
		return &InvalidStateError{Status: r.Status, Attempted: decision}
	}
	r.Status = Status(decision)
	r.AdminNotes = notes
	r.ApprovedBy = adminID
	r.ApprovedAt = &at
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrInvalidState is the sentinel for decisions on non-pending records.
var ErrInvalidState = errors.New("exception is not pending")

// InvalidStateError reports a decision attempted against a record that has
// already left the pending state.
type InvalidStateError struct {
	Kind      Kind
	ID        string
	Status    Status
	Attempted Decision
}

func (e *InvalidStateError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("cannot mark %s %s as %s: status is %s", e.Kind, e.ID, e.Attempted, e.Status)
	}
	return fmt.Sprintf("cannot decide %s: status is %s", e.Attempted, e.Status)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }
