package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PATTERN SERVICE - Recurring weekly availability
// =============================================================================

// PatternService owns the weekly-pattern lifecycle. Patterns are written
// by or on behalf of the worker, need no approval, and are superseded by
// later upserts rather than deleted.
type PatternService struct {
	Store   PatternStore
	Signals *Signals // optional
	Clock   func() time.Time
}

func NewPatternService(store PatternStore, signals *Signals) *PatternService {
	return &PatternService{Store: store, Signals: signals, Clock: time.Now}
}

type UpsertPatternInput struct {
	WorkerID      WorkerID
	DayOfWeek     int
	IsAvailable   bool
	StartTime     *TimeOfDay
	EndTime       *TimeOfDay
	MaxHours      *decimal.Decimal
	EffectiveFrom *Date
}

func (in UpsertPatternInput) validate() error {
	if in.WorkerID == "" {
		return invalidField("worker_id", "required")
	}
	if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
		return invalidField("day_of_week", fmt.Sprintf("must be in [0,6], got %d", in.DayOfWeek))
	}
	if in.StartTime != nil && in.EndTime != nil && *in.StartTime >= *in.EndTime {
		return invalidField("end_time", "must be after start_time")
	}
	if (in.StartTime == nil) != (in.EndTime == nil) {
		return invalidField("start_time", "start_time and end_time must be set together")
	}
	if in.MaxHours != nil && in.MaxHours.IsNegative() {
		return invalidField("max_hours", "must not be negative")
	}
	return nil
}

// UpsertPattern creates or replaces the pattern row for
// (worker, day-of-week). Calling twice with identical fields leaves one
// row, not two.
func (ps *PatternService) UpsertPattern(ctx context.Context, in UpsertPatternInput) (WeeklyPattern, error) {
	if err := in.validate(); err != nil {
		return WeeklyPattern{}, err
	}

	p := WeeklyPattern{
		WorkerID:      in.WorkerID,
		DayOfWeek:     in.DayOfWeek,
		IsAvailable:   in.IsAvailable,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		MaxHours:      in.MaxHours,
		EffectiveFrom: in.EffectiveFrom,
		UpdatedAt:     ps.Clock(),
	}

	saved, err := ps.Store.UpsertPattern(ctx, p)
	if err != nil {
		return WeeklyPattern{}, fmt.Errorf("upsert pattern: %w", err)
	}

	ps.Signals.Publish(Change{Kind: ChangePattern, WorkerID: in.WorkerID})
	return saved, nil
}

// ListPatterns returns the worker's current patterns ordered by
// day-of-week. Time bounds on unavailable days are suppressed: an
// unavailable day is unavailable all day no matter what was stored.
func (ps *PatternService) ListPatterns(ctx context.Context, workerID WorkerID) ([]WeeklyPattern, error) {
	if workerID == "" {
		return nil, invalidField("worker_id", "required")
	}
	patterns, err := ps.Store.ListPatterns(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}
	for i := range patterns {
		if !patterns[i].IsAvailable {
			patterns[i].StartTime = nil
			patterns[i].EndTime = nil
		}
	}
	return patterns, nil
}

// ApplyPreset expands a named quick pattern into seven upserts.
func (ps *PatternService) ApplyPreset(ctx context.Context, workerID WorkerID, preset Preset) ([]WeeklyPattern, error) {
	inputs, err := PresetWeek(workerID, preset)
	if err != nil {
		return nil, err
	}
	patterns := make([]WeeklyPattern, 0, len(inputs))
	for _, in := range inputs {
		p, err := ps.UpsertPattern(ctx, in)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}
