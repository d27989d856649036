package availability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/availability-engine/approval"
	"github.com/warp/availability-engine/availability"
)

func addWorker(t *testing.T, f *fixture, id, name string, role availability.Role) {
	t.Helper()
	require.NoError(t, f.store.SaveWorker(context.Background(), availability.Worker{
		ID: availability.WorkerID(id), Name: name, Role: role, Active: true,
	}))
}

func TestSnapshot_CountsByResolvedStatus(t *testing.T) {
	// GIVEN: Team of 5 - one on approved time off today, one with an
	//        approved unavailable override today, three untouched
	// WHEN: Taking today's snapshot
	// THEN: available=3, time_off=1, unavailable=1, override_count=1

	f := newFixture()
	ctx := context.Background()
	today := date(2025, time.March, 12)

	addWorker(t, f, "w-1", "Ana", availability.RoleWorker)
	addWorker(t, f, "w-2", "Boris", availability.RoleWorker)
	addWorker(t, f, "w-3", "Carla", availability.RoleWorker)
	addWorker(t, f, "w-4", "Dmitri", availability.RoleManager)
	addWorker(t, f, "w-5", "Elena", availability.RoleAdmin)

	req, err := f.exceptions.CreateTimeOff(ctx, availability.CreateTimeOffInput{
		WorkerID:  "w-1",
		StartDate: today,
		EndDate:   today.AddDays(2),
		Type:      availability.LeaveSickLeave,
	})
	require.NoError(t, err)
	approve(t, f, approval.KindTimeOff, req.ID)

	o, err := f.exceptions.SubmitOverride(ctx, availability.SubmitOverrideInput{
		WorkerID: "w-2",
		Date:     today,
	})
	require.NoError(t, err)
	approve(t, f, approval.KindOverride, o.ID)

	snap, err := f.aggregator.Snapshot(ctx, today)
	require.NoError(t, err)

	assert.Equal(t, 5, snap.TotalWorkers)
	assert.Equal(t, 3, snap.AvailableCount)
	assert.Equal(t, 1, snap.TimeOffCount)
	assert.Equal(t, 1, snap.UnavailableCount)
	assert.Equal(t, 1, snap.OverrideCount)
	assert.Len(t, snap.Workers, 5)
	assert.Equal(t, snap.TotalWorkers, snap.AvailableCount+snap.UnavailableCount+snap.TimeOffCount)
}

func TestSnapshot_ScheduledHours(t *testing.T) {
	// GIVEN: One worker with a bounded 09:00-17:00 Friday pattern, one
	//        default-available worker
	// WHEN: Snapshotting a Friday
	// THEN: 8 bounded hours + 8 default-shift hours

	f := newFixture()
	ctx := context.Background()

	addWorker(t, f, "w-1", "Ana", availability.RoleWorker)
	addWorker(t, f, "w-2", "Boris", availability.RoleWorker)

	_, err := f.patterns.UpsertPattern(ctx, availability.UpsertPatternInput{
		WorkerID:    "w-1",
		DayOfWeek:   5, // Friday
		IsAvailable: true,
		StartTime:   tod("09:00"),
		EndTime:     tod("17:00"),
	})
	require.NoError(t, err)

	friday := date(2025, time.March, 7)
	require.Equal(t, time.Friday, friday.Weekday())

	snap, err := f.aggregator.Snapshot(ctx, friday)
	require.NoError(t, err)
	assert.Equal(t, "16", snap.ScheduledHours.String())
}

func TestWeekSnapshot_SevenDaysSundayFirst(t *testing.T) {
	// GIVEN: Any anchor date mid-week
	// WHEN: Taking a week snapshot
	// THEN: Seven consecutive snapshots starting on Sunday

	f := newFixture()
	addWorker(t, f, "w-1", "Ana", availability.RoleWorker)

	anchor := date(2025, time.March, 12) // a Wednesday
	week, err := f.aggregator.WeekSnapshot(context.Background(), anchor)
	require.NoError(t, err)

	require.Len(t, week, 7)
	assert.Equal(t, time.Sunday, week[0].Date.Weekday())
	assert.Equal(t, date(2025, time.March, 9), week[0].Date)
	for i := 1; i < 7; i++ {
		assert.Equal(t, week[i-1].Date.AddDays(1), week[i].Date)
	}
}

func TestAvailableWorkersFor_FiltersOnResolvedStatus(t *testing.T) {
	// GIVEN: One worker bounded 09:00-13:00, one on approved time off,
	//        one default-available
	// WHEN: Asking who can take a 14:00-16:00 slot
	// THEN: Only the default-available worker qualifies

	f := newFixture()
	ctx := context.Background()
	day := date(2025, time.March, 11) // a Tuesday

	addWorker(t, f, "w-1", "Ana", availability.RoleWorker)
	addWorker(t, f, "w-2", "Boris", availability.RoleWorker)
	addWorker(t, f, "w-3", "Carla", availability.RoleWorker)

	_, err := f.patterns.UpsertPattern(ctx, availability.UpsertPatternInput{
		WorkerID:    "w-1",
		DayOfWeek:   2,
		IsAvailable: true,
		StartTime:   tod("09:00"),
		EndTime:     tod("13:00"),
	})
	require.NoError(t, err)

	req, err := f.exceptions.CreateTimeOff(ctx, availability.CreateTimeOffInput{
		WorkerID:  "w-2",
		StartDate: day,
		EndDate:   day,
		Type:      availability.LeaveUnpaid,
	})
	require.NoError(t, err)
	approve(t, f, approval.KindTimeOff, req.ID)

	workers, err := f.aggregator.AvailableWorkersFor(ctx, day, window("14:00", "16:00"))
	require.NoError(t, err)

	require.Len(t, workers, 1)
	assert.Equal(t, availability.WorkerID("w-3"), workers[0].ID)

	// Without a window the bounded worker is available too.
	workers, err = f.aggregator.AvailableWorkersFor(ctx, day, nil)
	require.NoError(t, err)
	assert.Len(t, workers, 2)
}

func TestSnapshot_InactiveWorkersExcluded(t *testing.T) {
	// GIVEN: One active and one inactive worker
	// WHEN: Snapshotting
	// THEN: Only the active worker is counted

	f := newFixture()
	ctx := context.Background()

	addWorker(t, f, "w-1", "Ana", availability.RoleWorker)
	require.NoError(t, f.store.SaveWorker(ctx, availability.Worker{
		ID: "w-gone", Name: "Zoe", Role: availability.RoleWorker, Active: false,
	}))

	snap, err := f.aggregator.Snapshot(ctx, date(2025, time.March, 12))
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalWorkers)
}
