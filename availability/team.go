/*
team.go - Team aggregation over the resolution engine

PURPOSE:
  Runs resolve once per (worker, date) pair and folds the verdicts into
  the shapes calendars and assignment screens need: per-day counts, a
  per-worker status list, a week of snapshots, and "who can take this
  slot" filters.

COUNTING RULE:
  Counts are derived from the resolved statuses, so they obey the same
  approved-only override gating as the per-worker display path. The
  available count is total headcount minus workers resolved to time_off or
  unavailable.

  No conflict or double-booking detection happens here; this is a pure
  fold over resolve.
*/
package availability

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultShiftHours is credited to available workers whose winning source
// carries no time bounds.
var DefaultShiftHours = decimal.NewFromInt(8)

// =============================================================================
// AGGREGATOR
// =============================================================================

type Aggregator struct {
	Workers  WorkerStore
	Resolver *Resolver
}

func NewAggregator(workers WorkerStore, resolver *Resolver) *Aggregator {
	return &Aggregator{Workers: workers, Resolver: resolver}
}

// Snapshot resolves every active schedulable team member for one date and
// folds the results into counts.
func (a *Aggregator) Snapshot(ctx context.Context, date Date) (TeamSnapshot, error) {
	workers, err := a.Workers.ListWorkers(ctx, SchedulableRoles...)
	if err != nil {
		return TeamSnapshot{}, fmt.Errorf("list workers: %w", err)
	}

	snap := TeamSnapshot{
		Date:           date,
		TotalWorkers:   len(workers),
		ScheduledHours: decimal.Zero,
		Workers:        make([]WorkerStatus, 0, len(workers)),
	}

	for _, w := range workers {
		st, err := a.Resolver.Resolve(ctx, w.ID, date, nil)
		if err != nil {
			return TeamSnapshot{}, fmt.Errorf("resolve %s: %w", w.ID, err)
		}
		snap.Workers = append(snap.Workers, WorkerStatus{Worker: w, Status: st})

		switch st.Status {
		case StatusTimeOff:
			snap.TimeOffCount++
		case StatusUnavailable:
			snap.UnavailableCount++
		case StatusAvailable:
			snap.AvailableCount++
			if st.Window != nil {
				snap.ScheduledHours = snap.ScheduledHours.Add(st.Window.Hours())
			} else {
				snap.ScheduledHours = snap.ScheduledHours.Add(DefaultShiftHours)
			}
		}
		if st.Source == SourceOverride {
			snap.OverrideCount++
		}
	}
	return snap, nil
}

// WeekSnapshot returns seven snapshots for the week containing anchor,
// Sunday first.
func (a *Aggregator) WeekSnapshot(ctx context.Context, anchor Date) ([]TeamSnapshot, error) {
	start := anchor.StartOfWeek()
	week := make([]TeamSnapshot, 0, 7)
	for i := 0; i < 7; i++ {
		snap, err := a.Snapshot(ctx, start.AddDays(i))
		if err != nil {
			return nil, err
		}
		week = append(week, snap)
	}
	return week, nil
}

// AvailableWorkersFor filters the team to workers resolved available for
// the date, optionally within a time window. Used when assigning schedule
// items.
func (a *Aggregator) AvailableWorkersFor(ctx context.Context, date Date, window *TimeWindow) ([]Worker, error) {
	workers, err := a.Workers.ListWorkers(ctx, SchedulableRoles...)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}

	var available []Worker
	for _, w := range workers {
		st, err := a.Resolver.Resolve(ctx, w.ID, date, window)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", w.ID, err)
		}
		if st.Status == StatusAvailable {
			available = append(available, w)
		}
	}
	return available, nil
}
