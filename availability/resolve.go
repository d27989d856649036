/*
resolve.go - The resolution engine

PURPOSE:
  Computes a single availability verdict for one (worker, date) pair by
  consulting the three data sources in strict precedence order. Pure reads
  over the store snapshot: no side effects, no caching, safe to call
  concurrently and repeatedly.

PRECEDENCE (first match wins):
  1. Approved time off          -> unavailable, source=time_off
  2. Approved override for date -> override's own verdict, source=override
  3. Weekly pattern for weekday -> pattern's own verdict, source=pattern
  4. Nothing recorded           -> available, source=default

  Tier 2 gates on status=approved. The per-day display path and the team
  counting path use the same rule; see DESIGN.md for the decision record.

  The default tier is a deliberate open-by-default policy: a worker with
  no pattern rows is schedulable every day, and resolve never fails for
  a well-formed (worker, date) once the store reads succeed.

WINDOWS:
  A caller-supplied time window is a conjunction, not a precedence tier:
  when the winning source carries explicit time bounds, a window outside
  those bounds downgrades an available verdict to unavailable for that
  window only.
*/
package availability

import (
	"context"
	"fmt"

	"github.com/warp/availability-engine/approval"
)

// =============================================================================
// RESOLVER
// =============================================================================

type Resolver struct {
	Store ReadStore
}

func NewResolver(store ReadStore) *Resolver {
	return &Resolver{Store: store}
}

// Resolve computes the availability verdict for one worker on one date.
// window is optional; see the package notes on conjunction semantics.
func (r *Resolver) Resolve(ctx context.Context, workerID WorkerID, date Date, window *TimeWindow) (AvailabilityStatus, error) {
	if workerID == "" {
		return AvailabilityStatus{}, invalidField("worker_id", "required")
	}
	if date.IsZero() {
		return AvailabilityStatus{}, invalidField("date", "required")
	}
	if window != nil && !window.Valid() {
		return AvailabilityStatus{}, invalidField("window", "end must be after start")
	}

	// Tier 1: approved time off covering the date.
	requests, err := r.Store.ListTimeOff(ctx, workerID, date, date)
	if err != nil {
		return AvailabilityStatus{}, fmt.Errorf("load time off: %w", err)
	}
	for _, req := range requests {
		if req.Status == approval.StatusApproved && req.Covers(date) {
			return AvailabilityStatus{
				Status: StatusTimeOff,
				Source: SourceTimeOff,
				Detail: string(req.Type),
			}, nil
		}
	}

	// Tier 2: approved override for the exact date.
	override, err := r.Store.FindOverride(ctx, workerID, date)
	if err != nil {
		return AvailabilityStatus{}, fmt.Errorf("load override: %w", err)
	}
	if override != nil && override.Status == approval.StatusApproved {
		return applyWindow(overrideStatus(*override), window), nil
	}

	// Tier 3: weekly pattern for the day-of-week.
	patterns, err := r.Store.ListPatterns(ctx, workerID)
	if err != nil {
		return AvailabilityStatus{}, fmt.Errorf("load patterns: %w", err)
	}
	for _, p := range patterns {
		if p.DayOfWeek == date.DayOfWeek() {
			return applyWindow(patternStatus(p), window), nil
		}
	}

	// Tier 4: open by default.
	return AvailabilityStatus{
		Status: StatusAvailable,
		Source: SourceDefault,
		Detail: "available (default)",
	}, nil
}

// =============================================================================
// PER-SOURCE VERDICTS
// =============================================================================

func overrideStatus(o Override) AvailabilityStatus {
	st := AvailabilityStatus{Source: SourceOverride}
	if o.IsAvailable {
		st.Status = StatusAvailable
	} else {
		st.Status = StatusUnavailable
	}
	if w := o.Window(); w != nil {
		st.Window = w
		st.Detail = w.String()
	} else {
		st.Detail = "all day"
	}
	return st
}

func patternStatus(p WeeklyPattern) AvailabilityStatus {
	st := AvailabilityStatus{Source: SourcePattern}
	if !p.IsAvailable {
		// No start/end needed: an unavailable pattern day is
		// unavailable all day.
		st.Status = StatusUnavailable
		st.Detail = "not available"
		return st
	}
	st.Status = StatusAvailable
	if w := p.Window(); w != nil {
		st.Window = w
		st.Detail = w.String()
	} else {
		st.Detail = "all day"
	}
	return st
}

// applyWindow downgrades an available verdict when the requested window
// falls outside the winning source's bounds. Sources without bounds
// (all-day availability) accept any window.
func applyWindow(st AvailabilityStatus, window *TimeWindow) AvailabilityStatus {
	if window == nil || st.Status != StatusAvailable || st.Window == nil {
		return st
	}
	if st.Window.Contains(*window) {
		return st
	}
	return AvailabilityStatus{
		Status: StatusUnavailable,
		Source: st.Source,
		Detail: fmt.Sprintf("requested %s outside %s", window, st.Window),
		Window: st.Window,
	}
}
