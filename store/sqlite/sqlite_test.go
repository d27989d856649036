package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/availability-engine/approval"
	"github.com/warp/availability-engine/availability"
	"github.com/warp/availability-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(y int, m time.Month, d int) availability.Date {
	return availability.NewDate(y, m, d)
}

func tod(s string) *availability.TimeOfDay {
	t := availability.MustTimeOfDay(s)
	return &t
}

var now = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

// =============================================================================
// WORKERS
// =============================================================================

func TestSQLite_WorkerRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	w := availability.Worker{ID: "w-1", Name: "Alice", Role: availability.RoleManager, Active: true}
	require.NoError(t, store.SaveWorker(ctx, w))

	got, err := store.GetWorker(ctx, "w-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, w, *got)

	missing, err := store.GetWorker(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLite_ListWorkersFiltersRoleAndActive(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveWorker(ctx, availability.Worker{ID: "w-1", Name: "Bea", Role: availability.RoleWorker, Active: true}))
	require.NoError(t, store.SaveWorker(ctx, availability.Worker{ID: "w-2", Name: "Al", Role: availability.RoleAdmin, Active: true}))
	require.NoError(t, store.SaveWorker(ctx, availability.Worker{ID: "w-3", Name: "Cy", Role: availability.RoleWorker, Active: false}))

	// No filter: active only, ordered by name.
	all, err := store.ListWorkers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, availability.WorkerID("w-2"), all[0].ID)
	assert.Equal(t, availability.WorkerID("w-1"), all[1].ID)

	workers, err := store.ListWorkers(ctx, availability.RoleWorker)
	require.NoError(t, err)
	require.Len(t, workers, 1)
	assert.Equal(t, availability.WorkerID("w-1"), workers[0].ID)
}

// =============================================================================
// WEEKLY PATTERNS
// =============================================================================

func TestSQLite_UpsertPatternReplacesRow(t *testing.T) {
	// GIVEN: A pattern row for (w-1, Monday)
	// WHEN: A second pattern for the same pair is written
	// THEN: Exactly one row survives, carrying the new values

	store := newStore(t)
	ctx := context.Background()

	first := availability.WeeklyPattern{
		WorkerID: "w-1", DayOfWeek: 1, IsAvailable: true,
		StartTime: tod("09:00"), EndTime: tod("17:00"),
		UpdatedAt: now,
	}
	_, err := store.UpsertPattern(ctx, first)
	require.NoError(t, err)

	maxHours := decimal.RequireFromString("7.5")
	effective := date(2025, time.April, 1)
	second := availability.WeeklyPattern{
		WorkerID: "w-1", DayOfWeek: 1, IsAvailable: true,
		StartTime: tod("10:00"), EndTime: tod("14:00"),
		MaxHours: &maxHours, EffectiveFrom: &effective,
		UpdatedAt: now.Add(time.Hour),
	}
	_, err = store.UpsertPattern(ctx, second)
	require.NoError(t, err)

	got, err := store.ListPatterns(ctx, "w-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "10:00", got[0].StartTime.String())
	assert.Equal(t, "14:00", got[0].EndTime.String())
	require.NotNil(t, got[0].MaxHours)
	assert.True(t, got[0].MaxHours.Equal(maxHours))
	require.NotNil(t, got[0].EffectiveFrom)
	assert.True(t, got[0].EffectiveFrom.Equal(effective))
}

func TestSQLite_ListPatternsOrderedByDay(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for _, dow := range []int{5, 0, 3} {
		_, err := store.UpsertPattern(ctx, availability.WeeklyPattern{
			WorkerID: "w-1", DayOfWeek: dow, IsAvailable: dow != 0, UpdatedAt: now,
		})
		require.NoError(t, err)
	}

	got, err := store.ListPatterns(ctx, "w-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{0, 3, 5}, []int{got[0].DayOfWeek, got[1].DayOfWeek, got[2].DayOfWeek})
	assert.Nil(t, got[0].StartTime)
	assert.Nil(t, got[0].MaxHours)
}

// =============================================================================
// OVERRIDES
// =============================================================================

func TestSQLite_OverrideRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	approvedAt := now.Add(time.Minute)
	o := availability.Override{
		ID: "ov-1", WorkerID: "w-1", Date: date(2025, time.March, 10),
		IsAvailable: true, StartTime: tod("10:00"), EndTime: tod("14:00"),
		Reason: "half day",
		Record: approval.Record{
			Status: approval.StatusApproved, AdminNotes: "ok",
			ApprovedBy: "adm-1", ApprovedAt: &approvedAt,
		},
		CreatedAt: now, UpdatedAt: now.Add(time.Minute),
	}
	_, err := store.UpsertOverride(ctx, o)
	require.NoError(t, err)

	got, err := store.FindOverride(ctx, "w-1", date(2025, time.March, 10))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ov-1", got.ID)
	assert.Equal(t, approval.StatusApproved, got.Status)
	assert.Equal(t, "adm-1", got.ApprovedBy)
	require.NotNil(t, got.ApprovedAt)
	assert.True(t, got.ApprovedAt.Equal(approvedAt))
	assert.Equal(t, "10:00-14:00", got.Window().String())

	byID, err := store.GetOverride(ctx, "ov-1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, got.Date, byID.Date)
}

func TestSQLite_UpsertOverrideReplacesSameDateRow(t *testing.T) {
	// GIVEN: A denied override for (w-1, 2025-03-10)
	// WHEN: A fresh override for the same date is upserted
	// THEN: The old id is gone and the key now resolves to the new row

	store := newStore(t)
	ctx := context.Background()
	day := date(2025, time.March, 10)

	old := availability.Override{
		ID: "ov-old", WorkerID: "w-1", Date: day, IsAvailable: false,
		Record:    approval.Record{Status: approval.StatusDenied, ApprovedBy: "adm-1"},
		CreatedAt: now, UpdatedAt: now,
	}
	_, err := store.UpsertOverride(ctx, old)
	require.NoError(t, err)

	fresh := availability.Override{
		ID: "ov-new", WorkerID: "w-1", Date: day, IsAvailable: true,
		Record:    approval.NewPending(),
		CreatedAt: now.Add(time.Hour), UpdatedAt: now.Add(time.Hour),
	}
	_, err = store.UpsertOverride(ctx, fresh)
	require.NoError(t, err)

	got, err := store.FindOverride(ctx, "w-1", day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ov-new", got.ID)
	assert.Equal(t, approval.StatusPending, got.Status)
	assert.Empty(t, got.ApprovedBy)

	gone, err := store.GetOverride(ctx, "ov-old")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSQLite_SaveOverridePersistsDecision(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	o := availability.Override{
		ID: "ov-1", WorkerID: "w-1", Date: date(2025, time.March, 10),
		Record: approval.NewPending(), CreatedAt: now, UpdatedAt: now,
	}
	_, err := store.UpsertOverride(ctx, o)
	require.NoError(t, err)

	require.NoError(t, o.Decide(approval.DecisionApproved, "adm-1", "fine", now.Add(time.Minute)))
	o.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, store.SaveOverride(ctx, o))

	got, err := store.GetOverride(ctx, "ov-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, approval.StatusApproved, got.Status)
	assert.Equal(t, "fine", got.AdminNotes)
}

func TestSQLite_ListPendingOverridesScoped(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	rows := []availability.Override{
		{ID: "ov-1", WorkerID: "w-1", Date: date(2025, time.March, 10), Record: approval.NewPending(), CreatedAt: now, UpdatedAt: now},
		{ID: "ov-2", WorkerID: "w-2", Date: date(2025, time.March, 11), Record: approval.NewPending(), CreatedAt: now.Add(time.Minute), UpdatedAt: now.Add(time.Minute)},
		{ID: "ov-3", WorkerID: "w-1", Date: date(2025, time.March, 12), Record: approval.Record{Status: approval.StatusApproved}, CreatedAt: now, UpdatedAt: now},
	}
	for _, o := range rows {
		_, err := store.UpsertOverride(ctx, o)
		require.NoError(t, err)
	}

	all, err := store.ListPendingOverrides(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ov-1", all[0].ID)
	assert.Equal(t, "ov-2", all[1].ID)

	worker := availability.WorkerID("w-2")
	scoped, err := store.ListPendingOverrides(ctx, &worker)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "ov-2", scoped[0].ID)
}

// =============================================================================
// TIME-OFF REQUESTS
// =============================================================================

func TestSQLite_TimeOffRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	r := availability.TimeOffRequest{
		ID: "to-1", WorkerID: "w-1",
		StartDate: date(2025, time.April, 1), EndDate: date(2025, time.April, 3),
		Type: availability.LeaveVacation, Reason: "trip", DaysRequested: 3,
		Record: approval.NewPending(), CreatedAt: now, UpdatedAt: now,
	}
	_, err := store.CreateTimeOff(ctx, r)
	require.NoError(t, err)

	got, err := store.GetTimeOff(ctx, "to-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, availability.LeaveVacation, got.Type)
	assert.Equal(t, 3, got.DaysRequested)
	assert.True(t, got.StartDate.Equal(r.StartDate))
	assert.True(t, got.EndDate.Equal(r.EndDate))
	assert.Nil(t, got.ApprovedAt)
}

func TestSQLite_ListTimeOffMatchesOverlappingRanges(t *testing.T) {
	// The inclusive overlap rule: a request matches when it touches any
	// day of the queried range, endpoints included.
	store := newStore(t)
	ctx := context.Background()

	ranges := []struct {
		id         string
		start, end availability.Date
	}{
		{"to-before", date(2025, time.March, 1), date(2025, time.March, 5)},
		{"to-edge", date(2025, time.March, 8), date(2025, time.March, 10)},
		{"to-inside", date(2025, time.March, 12), date(2025, time.March, 13)},
		{"to-after", date(2025, time.March, 21), date(2025, time.March, 25)},
	}
	for _, tr := range ranges {
		_, err := store.CreateTimeOff(ctx, availability.TimeOffRequest{
			ID: tr.id, WorkerID: "w-1", StartDate: tr.start, EndDate: tr.end,
			Type: availability.LeavePersonal, DaysRequested: 1,
			Record: approval.NewPending(), CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
	}

	got, err := store.ListTimeOff(ctx, "w-1", date(2025, time.March, 10), date(2025, time.March, 20))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "to-edge", got[0].ID)
	assert.Equal(t, "to-inside", got[1].ID)
}

func TestSQLite_SaveTimeOffPersistsDecision(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	r := availability.TimeOffRequest{
		ID: "to-1", WorkerID: "w-1",
		StartDate: date(2025, time.April, 1), EndDate: date(2025, time.April, 1),
		Type: availability.LeaveSickLeave, DaysRequested: 1,
		Record: approval.NewPending(), CreatedAt: now, UpdatedAt: now,
	}
	_, err := store.CreateTimeOff(ctx, r)
	require.NoError(t, err)

	require.NoError(t, r.Decide(approval.DecisionDenied, "adm-1", "coverage", now.Add(time.Minute)))
	r.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, store.SaveTimeOff(ctx, r))

	got, err := store.GetTimeOff(ctx, "to-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, approval.StatusDenied, got.Status)
	assert.Equal(t, "adm-1", got.ApprovedBy)
	require.NotNil(t, got.ApprovedAt)
}

func TestSQLite_ListPendingTimeOffScoped(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	pending := availability.TimeOffRequest{
		ID: "to-1", WorkerID: "w-1",
		StartDate: date(2025, time.April, 1), EndDate: date(2025, time.April, 2),
		Type: availability.LeaveVacation, DaysRequested: 2,
		Record: approval.NewPending(), CreatedAt: now, UpdatedAt: now,
	}
	_, err := store.CreateTimeOff(ctx, pending)
	require.NoError(t, err)

	decided := pending
	decided.ID = "to-2"
	decided.WorkerID = "w-2"
	decided.Status = approval.StatusApproved
	_, err = store.CreateTimeOff(ctx, decided)
	require.NoError(t, err)

	all, err := store.ListPendingTimeOff(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "to-1", all[0].ID)

	worker := availability.WorkerID("w-2")
	scoped, err := store.ListPendingTimeOff(ctx, &worker)
	require.NoError(t, err)
	assert.Empty(t, scoped)
}
