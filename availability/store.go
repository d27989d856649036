/*
store.go - Persistence interfaces consumed by the engine

PURPOSE:
  The engine never talks to a database directly; it reads and writes
  through these interfaces. Writes are single-row upserts/updates and rely
  on the backing store's row-level atomicity; the engine holds no locks
  and no caches of its own.

UPSERT KEYS:
  weekly patterns:  (worker_id, day_of_week)
  overrides:        (worker_id, override_date)
  time-off requests have no natural key; every submission is a new row.

IMPLEMENTATIONS:
  - store/sqlite: database/sql + mattn/go-sqlite3, production-shaped
  - store/memory: in-memory maps, tests and dev
*/
package availability

import "context"

// =============================================================================
// READ SIDE - Everything resolution needs
// =============================================================================

// ReadStore is the read-only snapshot the resolution engine works from.
type ReadStore interface {
	// ListPatterns returns a worker's current patterns ordered by
	// day-of-week; between zero and seven rows.
	ListPatterns(ctx context.Context, workerID WorkerID) ([]WeeklyPattern, error)

	// FindOverride returns the current override for (worker, date), or
	// nil when none exists.
	FindOverride(ctx context.Context, workerID WorkerID, date Date) (*Override, error)

	// ListTimeOff returns a worker's requests overlapping [from, to],
	// any status.
	ListTimeOff(ctx context.Context, workerID WorkerID, from, to Date) ([]TimeOffRequest, error)
}

// =============================================================================
// WRITE SIDE
// =============================================================================

type PatternStore interface {
	// UpsertPattern inserts or replaces the row keyed on
	// (worker_id, day_of_week). Idempotent for identical input.
	UpsertPattern(ctx context.Context, p WeeklyPattern) (WeeklyPattern, error)

	ListPatterns(ctx context.Context, workerID WorkerID) ([]WeeklyPattern, error)
}

type ExceptionStore interface {
	// UpsertOverride inserts or replaces the row keyed on
	// (worker_id, override_date). The replacement row carries its own ID
	// and approval state; the prior row's decision is discarded.
	UpsertOverride(ctx context.Context, o Override) (Override, error)

	GetOverride(ctx context.Context, id string) (*Override, error)
	FindOverride(ctx context.Context, workerID WorkerID, date Date) (*Override, error)
	ListOverrides(ctx context.Context, workerID WorkerID, from, to Date) ([]Override, error)

	// SaveOverride persists a decision update to an existing row.
	SaveOverride(ctx context.Context, o Override) error

	CreateTimeOff(ctx context.Context, r TimeOffRequest) (TimeOffRequest, error)
	GetTimeOff(ctx context.Context, id string) (*TimeOffRequest, error)
	ListTimeOff(ctx context.Context, workerID WorkerID, from, to Date) ([]TimeOffRequest, error)
	SaveTimeOff(ctx context.Context, r TimeOffRequest) error

	// Pending queues. A nil worker means team-wide (admin view); non-nil
	// restricts to that worker (self view).
	ListPendingOverrides(ctx context.Context, workerID *WorkerID) ([]Override, error)
	ListPendingTimeOff(ctx context.Context, workerID *WorkerID) ([]TimeOffRequest, error)
}

type WorkerStore interface {
	SaveWorker(ctx context.Context, w Worker) error
	GetWorker(ctx context.Context, id WorkerID) (*Worker, error)

	// ListWorkers returns active workers holding any of the given roles,
	// ordered by name. Empty roles means all roles.
	ListWorkers(ctx context.Context, roles ...Role) ([]Worker, error)
}

// Store is the full surface a backing implementation provides.
type Store interface {
	PatternStore
	ExceptionStore
	WorkerStore
}
