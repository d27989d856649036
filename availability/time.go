package availability

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - Day-granularity calendar date (all resolution is per-day)
// =============================================================================

// Date is a calendar date normalized to midnight UTC.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now().UTC())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic and properties
func (d Date) AddDays(n int) Date        { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Weekday() time.Weekday     { return d.t.Weekday() }
func (d Date) DayOfWeek() int            { return int(d.t.Weekday()) } // 0 = Sunday
func (d Date) Year() int                 { return d.t.Year() }
func (d Date) Month() time.Month         { return d.t.Month() }
func (d Date) Day() int                  { return d.t.Day() }
func (d Date) IsZero() bool              { return d.t.IsZero() }
func (d Date) Time() time.Time           { return d.t }
func (d Date) String() string            { return d.t.Format("2006-01-02") }

// StartOfWeek returns the Sunday on or before d.
func (d Date) StartOfWeek() Date {
	return d.AddDays(-d.DayOfWeek())
}

// InclusiveDays counts the days in [from, to], both ends included.
// Callers must ensure from <= to.
func InclusiveDays(from, to Date) int {
	return int(to.t.Sub(from.t).Hours()/24) + 1
}

// =============================================================================
// TIME OF DAY AND WINDOWS - Minute resolution within a single date
// =============================================================================

// TimeOfDay is minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses an HH:MM string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// MustTimeOfDay is for constants and tests; panics on malformed input.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// TimeWindow is a half-open-feeling but inclusive-bounds window within one
// day. Start must be strictly before End.
type TimeWindow struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (w TimeWindow) Valid() bool { return w.Start < w.End }

// Contains reports whether other fits entirely inside w.
func (w TimeWindow) Contains(other TimeWindow) bool {
	return w.Start <= other.Start && other.End <= w.End
}

// Hours returns the window length as fractional hours.
func (w TimeWindow) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(w.End - w.Start)).Div(decimal.NewFromInt(60))
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s-%s", w.Start, w.End)
}

// windowOf builds a TimeWindow from optional bounds. Returns nil unless
// both ends are present and ordered.
func windowOf(start, end *TimeOfDay) *TimeWindow {
	if start == nil || end == nil {
		return nil
	}
	w := TimeWindow{Start: *start, End: *end}
	if !w.Valid() {
		return nil
	}
	return &w
}
