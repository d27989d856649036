/*
exception.go - Override and time-off lifecycle plus the decision path

PURPOSE:
  Both exception kinds share one lifecycle: submitted pending, decided
  exactly once, immutable after. The approval package owns the state
  machine; this service owns validation, the upsert-vs-insert difference
  between the two kinds, and the pending queues.

UPSERT SEMANTICS:
  Overrides are keyed on (worker, date): resubmitting for a date that
  already has a denied (or approved, or pending) override replaces the row
  with a fresh pending one and discards the prior verdict, admin notes
  included. Time-off requests have no key; every submission is a new row
  and overlapping ranges are allowed.
*/
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/warp/availability-engine/approval"
)

// =============================================================================
// EXCEPTION SERVICE
// =============================================================================

type ExceptionService struct {
	Store   ExceptionStore
	Signals *Signals // optional
	Clock   func() time.Time
}

func NewExceptionService(store ExceptionStore, signals *Signals) *ExceptionService {
	return &ExceptionService{Store: store, Signals: signals, Clock: time.Now}
}

// =============================================================================
// SUBMIT - Overrides
// =============================================================================

type SubmitOverrideInput struct {
	WorkerID    WorkerID
	Date        Date
	IsAvailable bool
	StartTime   *TimeOfDay
	EndTime     *TimeOfDay
	Reason      string
}

func (in SubmitOverrideInput) validate() error {
	if in.WorkerID == "" {
		return invalidField("worker_id", "required")
	}
	if in.Date.IsZero() {
		return invalidField("override_date", "required")
	}
	if (in.StartTime == nil) != (in.EndTime == nil) {
		return invalidField("start_time", "start_time and end_time must be set together")
	}
	if in.StartTime != nil && *in.StartTime >= *in.EndTime {
		return invalidField("end_time", "must be after start_time")
	}
	return nil
}

// SubmitOverride creates or replaces the override for (worker, date).
// The new row is always pending; any prior decision for that date is gone.
func (es *ExceptionService) SubmitOverride(ctx context.Context, in SubmitOverrideInput) (Override, error) {
	if err := in.validate(); err != nil {
		return Override{}, err
	}

	now := es.Clock()
	o := Override{
		ID:          uuid.NewString(),
		WorkerID:    in.WorkerID,
		Date:        in.Date,
		IsAvailable: in.IsAvailable,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Reason:      in.Reason,
		Record:      approval.NewPending(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	saved, err := es.Store.UpsertOverride(ctx, o)
	if err != nil {
		return Override{}, fmt.Errorf("upsert override: %w", err)
	}

	es.Signals.Publish(Change{Kind: ChangeOverride, WorkerID: in.WorkerID})
	return saved, nil
}

// =============================================================================
// SUBMIT - Time-off requests
// =============================================================================

type CreateTimeOffInput struct {
	WorkerID  WorkerID
	StartDate Date
	EndDate   Date
	Type      LeaveType
	Reason    string
}

func (in CreateTimeOffInput) validate() error {
	if in.WorkerID == "" {
		return invalidField("worker_id", "required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return invalidField("start_date", "start_date and end_date are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return invalidField("end_date", "must not be before start_date")
	}
	if !in.Type.Valid() {
		return invalidField("request_type", fmt.Sprintf("unknown type %q", in.Type))
	}
	return nil
}

// CreateTimeOff inserts a new pending request. DaysRequested is the
// inclusive day count of the range.
func (es *ExceptionService) CreateTimeOff(ctx context.Context, in CreateTimeOffInput) (TimeOffRequest, error) {
	if err := in.validate(); err != nil {
		return TimeOffRequest{}, err
	}

	now := es.Clock()
	r := TimeOffRequest{
		ID:            uuid.NewString(),
		WorkerID:      in.WorkerID,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Type:          in.Type,
		Reason:        in.Reason,
		DaysRequested: InclusiveDays(in.StartDate, in.EndDate),
		Record:        approval.NewPending(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	saved, err := es.Store.CreateTimeOff(ctx, r)
	if err != nil {
		return TimeOffRequest{}, fmt.Errorf("create time off: %w", err)
	}

	es.Signals.Publish(Change{Kind: ChangeTimeOff, WorkerID: in.WorkerID})
	return saved, nil
}

// =============================================================================
// DECIDE - One-shot approval, shared across kinds
// =============================================================================

// Decide transitions a pending exception of either kind to approved or
// denied, recording actor, decision time, and notes. Fails with
// approval.InvalidStateError when the exception has already been decided,
// regardless of which decision is attempted.
func (es *ExceptionService) Decide(ctx context.Context, kind approval.Kind, id string, decision approval.Decision, adminID, notes string) (Exception, error) {
	if adminID == "" {
		return nil, invalidField("admin_id", "required")
	}
	if !decision.Valid() {
		return nil, invalidField("decision", fmt.Sprintf("must be approved or denied, got %q", decision))
	}

	now := es.Clock()
	switch kind {
	case approval.KindOverride:
		o, err := es.Store.GetOverride(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get override: %w", err)
		}
		if o == nil {
			return nil, fmt.Errorf("override %s: %w", id, ErrNotFound)
		}
		if err := o.Record.Decide(decision, adminID, notes, now); err != nil {
			return nil, decorateStateErr(err, kind, id)
		}
		o.UpdatedAt = now
		if err := es.Store.SaveOverride(ctx, *o); err != nil {
			return nil, fmt.Errorf("save override: %w", err)
		}
		es.Signals.Publish(Change{Kind: ChangeOverride, WorkerID: o.WorkerID})
		return *o, nil

	case approval.KindTimeOff:
		r, err := es.Store.GetTimeOff(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get time off: %w", err)
		}
		if r == nil {
			return nil, fmt.Errorf("time-off request %s: %w", id, ErrNotFound)
		}
		if err := r.Record.Decide(decision, adminID, notes, now); err != nil {
			return nil, decorateStateErr(err, kind, id)
		}
		r.UpdatedAt = now
		if err := es.Store.SaveTimeOff(ctx, *r); err != nil {
			return nil, fmt.Errorf("save time off: %w", err)
		}
		es.Signals.Publish(Change{Kind: ChangeTimeOff, WorkerID: r.WorkerID})
		return *r, nil

	default:
		return nil, invalidField("kind", fmt.Sprintf("unknown exception kind %q", kind))
	}
}

// decorateStateErr fills in kind and id on invalid-state errors so queue
// UIs can report which row was stale.
func decorateStateErr(err error, kind approval.Kind, id string) error {
	if ise, ok := err.(*approval.InvalidStateError); ok {
		ise.Kind = kind
		ise.ID = id
	}
	return err
}

// =============================================================================
// PENDING QUEUES
// =============================================================================

// PendingScope selects whose pending exceptions to list. The zero value
// is the team-wide admin view; set WorkerID for the self view.
type PendingScope struct {
	WorkerID *WorkerID
}

func ScopeWorker(id WorkerID) PendingScope { return PendingScope{WorkerID: &id} }

func (es *ExceptionService) ListPendingOverrides(ctx context.Context, scope PendingScope) ([]Override, error) {
	out, err := es.Store.ListPendingOverrides(ctx, scope.WorkerID)
	if err != nil {
		return nil, fmt.Errorf("list pending overrides: %w", err)
	}
	return out, nil
}

func (es *ExceptionService) ListPendingTimeOff(ctx context.Context, scope PendingScope) ([]TimeOffRequest, error) {
	out, err := es.Store.ListPendingTimeOff(ctx, scope.WorkerID)
	if err != nil {
		return nil, fmt.Errorf("list pending time off: %w", err)
	}
	return out, nil
}

// PendingQueue returns both kinds in one call for the approval screen.
func (es *ExceptionService) PendingQueue(ctx context.Context, scope PendingScope) ([]Exception, error) {
	overrides, err := es.ListPendingOverrides(ctx, scope)
	if err != nil {
		return nil, err
	}
	requests, err := es.ListPendingTimeOff(ctx, scope)
	if err != nil {
		return nil, err
	}
	queue := make([]Exception, 0, len(overrides)+len(requests))
	for _, o := range overrides {
		queue = append(queue, o)
	}
	for _, r := range requests {
		queue = append(queue, r)
	}
	return queue, nil
}
