/*
Package availability decides whether a worker can be scheduled on a date.

PURPOSE:
  Combines three independently maintained sources (a recurring weekly
  pattern, single-date overrides, and multi-day time-off requests) into one
  deterministic availability verdict per (worker, date), and aggregates
  those verdicts across a team for calendar and queue views.

KEY CONCEPTS IN THIS FILE (types.go):
  - Worker: A schedulable team member (workers, managers, admins alike)
  - WeeklyPattern: Recurring template, one row per day-of-week
  - Override: Admin-approvable exception for one specific date
  - TimeOffRequest: Admin-approvable exception spanning a date range
  - AvailabilityStatus: The derived verdict, never persisted
  - TeamSnapshot: Per-date aggregate over the whole team

PRECEDENCE (highest wins, see resolve.go):
  1. Approved time off
  2. Approved override for the exact date
  3. Weekly pattern for the day-of-week
  4. Default: available

SEE ALSO:
  - resolve.go:    Resolution engine
  - team.go:       Team aggregation
  - exception.go:  Override/time-off lifecycle
  - approval:      Shared approval state machine
*/
package availability

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/availability-engine/approval"
)

// =============================================================================
// WORKERS
// =============================================================================

type WorkerID string

type Role string

const (
	RoleWorker  Role = "worker"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// SchedulableRoles are the roles the team aggregator counts. All three
// roles can be put on the schedule.
var SchedulableRoles = []Role{RoleWorker, RoleManager, RoleAdmin}

type Worker struct {
	ID     WorkerID
	Name   string
	Role   Role
	Active bool
}

// =============================================================================
// WEEKLY PATTERN - Recurring template, upsert-keyed on (worker, day-of-week)
// =============================================================================

// WeeklyPattern is one worker's recurring availability for one day of the
// week. At most one current row exists per (WorkerID, DayOfWeek); writes
// are upserts on that pair. Patterns need no approval.
type WeeklyPattern struct {
	WorkerID      WorkerID
	DayOfWeek     int // 0 = Sunday .. 6 = Saturday
	IsAvailable   bool
	StartTime     *TimeOfDay
	EndTime       *TimeOfDay
	MaxHours      *decimal.Decimal
	EffectiveFrom *Date
	UpdatedAt     time.Time
}

// Window returns the pattern's bounded hours, or nil when the pattern is
// unbounded (no times, or an unavailable day where times are ignored).
func (p WeeklyPattern) Window() *TimeWindow {
	if !p.IsAvailable {
		return nil
	}
	return windowOf(p.StartTime, p.EndTime)
}

// =============================================================================
// OVERRIDE - Single-date exception, upsert-keyed on (worker, date)
// =============================================================================

// Override is an exception to availability for one specific date. At most
// one current row exists per (WorkerID, Date): resubmitting replaces the
// prior row and resets approval to pending regardless of the prior verdict.
type Override struct {
	ID          string
	WorkerID    WorkerID
	Date        Date
	IsAvailable bool
	StartTime   *TimeOfDay
	EndTime     *TimeOfDay // both nil means all day
	Reason      string
	approval.Record
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o Override) Window() *TimeWindow { return windowOf(o.StartTime, o.EndTime) }

func (o Override) ExceptionID() string             { return o.ID }
func (o Override) ExceptionKind() approval.Kind    { return approval.KindOverride }
func (o Override) ApprovalRecord() approval.Record { return o.Record }
func (o Override) WorkerRef() WorkerID             { return o.WorkerID }

// =============================================================================
// TIME-OFF REQUEST - Multi-day exception, no upsert key
// =============================================================================

type LeaveType string

const (
	LeaveVacation  LeaveType = "vacation"
	LeaveSickLeave LeaveType = "sick_leave"
	LeavePersonal  LeaveType = "personal"
	LeaveUnpaid    LeaveType = "unpaid"
)

func (lt LeaveType) Valid() bool {
	switch lt {
	case LeaveVacation, LeaveSickLeave, LeavePersonal, LeaveUnpaid:
		return true
	}
	return false
}

// TimeOffRequest is an exception spanning [StartDate, EndDate] inclusive.
// A worker may hold multiple, even overlapping, requests; only approved
// ones bind resolution. Duplicate ranges are the caller's problem.
type TimeOffRequest struct {
	ID            string
	WorkerID      WorkerID
	StartDate     Date
	EndDate       Date
	Type          LeaveType
	Reason        string
	DaysRequested int // always EndDate - StartDate + 1
	approval.Record
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Covers reports whether d falls inside the request's inclusive range.
func (r TimeOffRequest) Covers(d Date) bool {
	return r.StartDate.BeforeOrEqual(d) && d.BeforeOrEqual(r.EndDate)
}

func (r TimeOffRequest) ExceptionID() string             { return r.ID }
func (r TimeOffRequest) ExceptionKind() approval.Kind    { return approval.KindTimeOff }
func (r TimeOffRequest) ApprovalRecord() approval.Record { return r.Record }
func (r TimeOffRequest) WorkerRef() WorkerID             { return r.WorkerID }

// Exception is the common view over Override and TimeOffRequest, used by
// the decision path and the pending queues.
type Exception interface {
	ExceptionID() string
	ExceptionKind() approval.Kind
	ApprovalRecord() approval.Record
	WorkerRef() WorkerID
}

// =============================================================================
// AVAILABILITY STATUS - Derived verdict, produced fresh on every call
// =============================================================================

type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
	StatusTimeOff     Status = "time_off"
)

// Source names the precedence tier that produced a verdict.
type Source string

const (
	SourceOverride Source = "override"
	SourceTimeOff  Source = "time_off"
	SourcePattern  Source = "pattern"
	SourceDefault  Source = "default"
)

// AvailabilityStatus is the resolved verdict for one (worker, date) pair.
// Window carries the winning source's time bounds when it has any, for
// aggregation and display; it is nil for all-day verdicts.
type AvailabilityStatus struct {
	Status Status
	Source Source
	Detail string
	Window *TimeWindow
}

// =============================================================================
// TEAM SNAPSHOT - Aggregate over the whole team for one date
// =============================================================================

// WorkerStatus pairs a worker with their resolved status, for calendar cells.
type WorkerStatus struct {
	Worker Worker
	Status AvailabilityStatus
}

type TeamSnapshot struct {
	Date             Date
	TotalWorkers     int
	AvailableCount   int
	UnavailableCount int
	TimeOffCount     int
	OverrideCount    int
	// ScheduledHours sums the bounded window hours of available workers;
	// unbounded availability counts a default shift.
	ScheduledHours decimal.Decimal
	Workers        []WorkerStatus
}
