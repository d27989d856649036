/*
Package sqlite provides a SQLite-backed implementation of availability.Store.

PURPOSE:
  Persists workers, weekly patterns, overrides, and time-off requests. The
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

UPSERT ENFORCEMENT:
  The uniqueness invariants live in the schema, not in application code:
  - weekly_patterns UNIQUE(worker_id, day_of_week)
  - overrides       UNIQUE(worker_id, override_date)
  Writes use INSERT ... ON CONFLICT DO UPDATE so a resubmission replaces
  the prior row atomically; the store needs no locking beyond what SQLite
  provides.

WAL MODE:
  Opened with WAL for better read concurrency; readers don't block while a
  write is in flight, which suits the read-mostly resolution workload.

TIME ENCODING:
  Dates are stored as YYYY-MM-DD text, times-of-day as minutes since
  midnight, timestamps as RFC3339 text, max_hours as decimal text.

USAGE:
  store, err := sqlite.New("./data/availability.db")
  if err != nil { ... }
  defer store.Close()

SEE ALSO:
  - availability/store.go: Interface definitions
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/availability-engine/approval"
	"github.com/warp/availability-engine/availability"
)

type Store struct {
	db *sql.DB
}

var _ availability.Store = (*Store)(nil)

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'worker',
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_workers_role ON workers(role);

	-- Weekly patterns: at most one current row per (worker, day-of-week).
	CREATE TABLE IF NOT EXISTS weekly_patterns (
		worker_id TEXT NOT NULL,
		day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
		is_available BOOLEAN NOT NULL,
		start_minutes INTEGER,
		end_minutes INTEGER,
		max_hours TEXT,
		effective_from TEXT,
		updated_at TEXT NOT NULL,
		UNIQUE(worker_id, day_of_week)
	);

	-- Overrides: at most one current row per (worker, date).
	CREATE TABLE IF NOT EXISTS overrides (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		override_date TEXT NOT NULL,
		is_available BOOLEAN NOT NULL,
		start_minutes INTEGER,
		end_minutes INTEGER,
		reason TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		admin_notes TEXT,
		approved_by TEXT,
		approved_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(worker_id, override_date)
	);

	CREATE INDEX IF NOT EXISTS idx_overrides_status ON overrides(status);
	CREATE INDEX IF NOT EXISTS idx_overrides_worker_date ON overrides(worker_id, override_date);

	CREATE TABLE IF NOT EXISTS time_off_requests (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		request_type TEXT NOT NULL,
		reason TEXT,
		days_requested INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		admin_notes TEXT,
		approved_by TEXT,
		approved_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_time_off_worker_range
		ON time_off_requests(worker_id, start_date, end_date);
	CREATE INDEX IF NOT EXISTS idx_time_off_status ON time_off_requests(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// storeErr tags persistence failures so callers can match the taxonomy
// sentinel while keeping the driver error in the chain.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(availability.ErrStoreUnavailable, err))
}

// =============================================================================
// ENCODING HELPERS
// =============================================================================

func encodeMinutes(t *availability.TimeOfDay) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*t), Valid: true}
}

func decodeMinutes(n sql.NullInt64) *availability.TimeOfDay {
	if !n.Valid {
		return nil
	}
	t := availability.TimeOfDay(n.Int64)
	return &t
}

func encodeDate(d availability.Date) string { return d.String() }

func decodeDate(s string) (availability.Date, error) { return availability.ParseDate(s) }

func encodeDatePtr(d *availability.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func encodeDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func encodeTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func decodeTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// =============================================================================
// WORKERS
// =============================================================================

func (s *Store) SaveWorker(ctx context.Context, w availability.Worker) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workers (id, name, role, active) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, role = excluded.role, active = excluded.active`,
		string(w.ID), w.Name, string(w.Role), w.Active)
	if err != nil {
		return storeErr("save worker", err)
	}
	return nil
}

func (s *Store) GetWorker(ctx context.Context, id availability.WorkerID) (*availability.Worker, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, active FROM workers WHERE id = ?`, string(id))
	var w availability.Worker
	err := row.Scan(&w.ID, &w.Name, &w.Role, &w.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get worker", err)
	}
	return &w, nil
}

func (s *Store) ListWorkers(ctx context.Context, roles ...availability.Role) ([]availability.Worker, error) {
	query := `SELECT id, name, role, active FROM workers WHERE active = TRUE`
	args := make([]any, 0, len(roles))
	if len(roles) > 0 {
		query += ` AND role IN (?` + repeat(",?", len(roles)-1) + `)`
		for _, r := range roles {
			args = append(args, string(r))
		}
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list workers", err)
	}
	defer rows.Close()

	var out []availability.Worker
	for rows.Next() {
		var w availability.Worker
		if err := rows.Scan(&w.ID, &w.Name, &w.Role, &w.Active); err != nil {
			return nil, storeErr("scan worker", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

// =============================================================================
// WEEKLY PATTERNS
// =============================================================================

func (s *Store) UpsertPattern(ctx context.Context, p availability.WeeklyPattern) (availability.WeeklyPattern, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO weekly_patterns
			(worker_id, day_of_week, is_available, start_minutes, end_minutes, max_hours, effective_from, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(worker_id, day_of_week) DO UPDATE SET
			is_available   = excluded.is_available,
			start_minutes  = excluded.start_minutes,
			end_minutes    = excluded.end_minutes,
			max_hours      = excluded.max_hours,
			effective_from = excluded.effective_from,
			updated_at     = excluded.updated_at`,
		string(p.WorkerID), p.DayOfWeek, p.IsAvailable,
		encodeMinutes(p.StartTime), encodeMinutes(p.EndTime),
		encodeDecimal(p.MaxHours), encodeDatePtr(p.EffectiveFrom),
		p.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return availability.WeeklyPattern{}, storeErr("upsert pattern", err)
	}
	return p, nil
}

func (s *Store) ListPatterns(ctx context.Context, workerID availability.WorkerID) ([]availability.WeeklyPattern, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT worker_id, day_of_week, is_available, start_minutes, end_minutes, max_hours, effective_from, updated_at
		FROM weekly_patterns WHERE worker_id = ? ORDER BY day_of_week`,
		string(workerID))
	if err != nil {
		return nil, storeErr("list patterns", err)
	}
	defer rows.Close()

	var out []availability.WeeklyPattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, storeErr("scan pattern", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPattern(rows *sql.Rows) (availability.WeeklyPattern, error) {
	var (
		p             availability.WeeklyPattern
		start, end    sql.NullInt64
		maxHours      sql.NullString
		effectiveFrom sql.NullString
		updatedAt     string
	)
	if err := rows.Scan(&p.WorkerID, &p.DayOfWeek, &p.IsAvailable, &start, &end, &maxHours, &effectiveFrom, &updatedAt); err != nil {
		return availability.WeeklyPattern{}, err
	}
	p.StartTime = decodeMinutes(start)
	p.EndTime = decodeMinutes(end)
	if maxHours.Valid {
		d, err := decimal.NewFromString(maxHours.String)
		if err != nil {
			return availability.WeeklyPattern{}, err
		}
		p.MaxHours = &d
	}
	if effectiveFrom.Valid {
		d, err := decodeDate(effectiveFrom.String)
		if err != nil {
			return availability.WeeklyPattern{}, err
		}
		p.EffectiveFrom = &d
	}
	t, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return availability.WeeklyPattern{}, err
	}
	p.UpdatedAt = t
	return p, nil
}

// =============================================================================
// OVERRIDES
// =============================================================================

const overrideCols = `id, worker_id, override_date, is_available, start_minutes, end_minutes,
	reason, status, admin_notes, approved_by, approved_at, created_at, updated_at`

func (s *Store) UpsertOverride(ctx context.Context, o availability.Override) (availability.Override, error) {
	// The conflict arm replaces the full row, id included: a resubmission
	// is a fresh exception superseding the key, not an edit.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO overrides (`+overrideCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(worker_id, override_date) DO UPDATE SET
			id            = excluded.id,
			is_available  = excluded.is_available,
			start_minutes = excluded.start_minutes,
			end_minutes   = excluded.end_minutes,
			reason        = excluded.reason,
			status        = excluded.status,
			admin_notes   = excluded.admin_notes,
			approved_by   = excluded.approved_by,
			approved_at   = excluded.approved_at,
			created_at    = excluded.created_at,
			updated_at    = excluded.updated_at`,
		o.ID, string(o.WorkerID), encodeDate(o.Date), o.IsAvailable,
		encodeMinutes(o.StartTime), encodeMinutes(o.EndTime),
		o.Reason, string(o.Status), o.AdminNotes, o.ApprovedBy, encodeTimePtr(o.ApprovedAt),
		o.CreatedAt.UTC().Format(time.RFC3339Nano), o.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return availability.Override{}, storeErr("upsert override", err)
	}
	return o, nil
}

func (s *Store) GetOverride(ctx context.Context, id string) (*availability.Override, error) {
	return s.queryOverride(ctx, `SELECT `+overrideCols+` FROM overrides WHERE id = ?`, id)
}

func (s *Store) FindOverride(ctx context.Context, workerID availability.WorkerID, date availability.Date) (*availability.Override, error) {
	return s.queryOverride(ctx,
		`SELECT `+overrideCols+` FROM overrides WHERE worker_id = ? AND override_date = ?`,
		string(workerID), encodeDate(date))
}

func (s *Store) queryOverride(ctx context.Context, query string, args ...any) (*availability.Override, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query override", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	o, err := scanOverride(rows)
	if err != nil {
		return nil, storeErr("scan override", err)
	}
	return &o, nil
}

func (s *Store) ListOverrides(ctx context.Context, workerID availability.WorkerID, from, to availability.Date) ([]availability.Override, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+overrideCols+` FROM overrides
		WHERE worker_id = ? AND override_date >= ? AND override_date <= ?
		ORDER BY override_date`,
		string(workerID), encodeDate(from), encodeDate(to))
	if err != nil {
		return nil, storeErr("list overrides", err)
	}
	defer rows.Close()
	return collectOverrides(rows)
}

func (s *Store) SaveOverride(ctx context.Context, o availability.Override) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE overrides SET
			status = ?, admin_notes = ?, approved_by = ?, approved_at = ?, updated_at = ?
		WHERE id = ?`,
		string(o.Status), o.AdminNotes, o.ApprovedBy, encodeTimePtr(o.ApprovedAt),
		o.UpdatedAt.UTC().Format(time.RFC3339Nano), o.ID)
	if err != nil {
		return storeErr("save override", err)
	}
	return nil
}

func (s *Store) ListPendingOverrides(ctx context.Context, workerID *availability.WorkerID) ([]availability.Override, error) {
	query := `SELECT ` + overrideCols + ` FROM overrides WHERE status = 'pending'`
	var args []any
	if workerID != nil {
		query += ` AND worker_id = ?`
		args = append(args, string(*workerID))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list pending overrides", err)
	}
	defer rows.Close()
	return collectOverrides(rows)
}

func collectOverrides(rows *sql.Rows) ([]availability.Override, error) {
	var out []availability.Override
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, storeErr("scan override", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOverride(rows *sql.Rows) (availability.Override, error) {
	var (
		o                    availability.Override
		date                 string
		start, end           sql.NullInt64
		reason, notes, by    sql.NullString
		approvedAt           sql.NullString
		createdAt, updatedAt string
		status               string
	)
	if err := rows.Scan(&o.ID, &o.WorkerID, &date, &o.IsAvailable, &start, &end,
		&reason, &status, &notes, &by, &approvedAt, &createdAt, &updatedAt); err != nil {
		return availability.Override{}, err
	}

	d, err := decodeDate(date)
	if err != nil {
		return availability.Override{}, err
	}
	o.Date = d
	o.StartTime = decodeMinutes(start)
	o.EndTime = decodeMinutes(end)
	o.Reason = reason.String
	o.Status = approval.Status(status)
	o.AdminNotes = notes.String
	o.ApprovedBy = by.String
	if o.ApprovedAt, err = decodeTimePtr(approvedAt); err != nil {
		return availability.Override{}, err
	}
	if o.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return availability.Override{}, err
	}
	if o.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return availability.Override{}, err
	}
	return o, nil
}

// =============================================================================
// TIME-OFF REQUESTS
// =============================================================================

const timeOffCols = `id, worker_id, start_date, end_date, request_type, reason, days_requested,
	status, admin_notes, approved_by, approved_at, created_at, updated_at`

func (s *Store) CreateTimeOff(ctx context.Context, r availability.TimeOffRequest) (availability.TimeOffRequest, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_off_requests (`+timeOffCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.WorkerID), encodeDate(r.StartDate), encodeDate(r.EndDate),
		string(r.Type), r.Reason, r.DaysRequested,
		string(r.Status), r.AdminNotes, r.ApprovedBy, encodeTimePtr(r.ApprovedAt),
		r.CreatedAt.UTC().Format(time.RFC3339Nano), r.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return availability.TimeOffRequest{}, storeErr("create time off", err)
	}
	return r, nil
}

func (s *Store) GetTimeOff(ctx context.Context, id string) (*availability.TimeOffRequest, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+timeOffCols+` FROM time_off_requests WHERE id = ?`, id)
	if err != nil {
		return nil, storeErr("get time off", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	r, err := scanTimeOff(rows)
	if err != nil {
		return nil, storeErr("scan time off", err)
	}
	return &r, nil
}

func (s *Store) ListTimeOff(ctx context.Context, workerID availability.WorkerID, from, to availability.Date) ([]availability.TimeOffRequest, error) {
	// Overlap on inclusive ranges: start <= to AND end >= from.
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+timeOffCols+` FROM time_off_requests
		WHERE worker_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date`,
		string(workerID), encodeDate(to), encodeDate(from))
	if err != nil {
		return nil, storeErr("list time off", err)
	}
	defer rows.Close()
	return collectTimeOff(rows)
}

func (s *Store) SaveTimeOff(ctx context.Context, r availability.TimeOffRequest) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE time_off_requests SET
			status = ?, admin_notes = ?, approved_by = ?, approved_at = ?, updated_at = ?
		WHERE id = ?`,
		string(r.Status), r.AdminNotes, r.ApprovedBy, encodeTimePtr(r.ApprovedAt),
		r.UpdatedAt.UTC().Format(time.RFC3339Nano), r.ID)
	if err != nil {
		return storeErr("save time off", err)
	}
	return nil
}

func (s *Store) ListPendingTimeOff(ctx context.Context, workerID *availability.WorkerID) ([]availability.TimeOffRequest, error) {
	query := `SELECT ` + timeOffCols + ` FROM time_off_requests WHERE status = 'pending'`
	var args []any
	if workerID != nil {
		query += ` AND worker_id = ?`
		args = append(args, string(*workerID))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list pending time off", err)
	}
	defer rows.Close()
	return collectTimeOff(rows)
}

func collectTimeOff(rows *sql.Rows) ([]availability.TimeOffRequest, error) {
	var out []availability.TimeOffRequest
	for rows.Next() {
		r, err := scanTimeOff(rows)
		if err != nil {
			return nil, storeErr("scan time off", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanTimeOff(rows *sql.Rows) (availability.TimeOffRequest, error) {
	var (
		r                    availability.TimeOffRequest
		startDate, endDate   string
		reason, notes, by    sql.NullString
		approvedAt           sql.NullString
		createdAt, updatedAt string
		status               string
	)
	if err := rows.Scan(&r.ID, &r.WorkerID, &startDate, &endDate, &r.Type, &reason,
		&r.DaysRequested, &status, &notes, &by, &approvedAt, &createdAt, &updatedAt); err != nil {
		return availability.TimeOffRequest{}, err
	}

	var err error
	if r.StartDate, err = decodeDate(startDate); err != nil {
		return availability.TimeOffRequest{}, err
	}
	if r.EndDate, err = decodeDate(endDate); err != nil {
		return availability.TimeOffRequest{}, err
	}
	r.Reason = reason.String
	r.Status = approval.Status(status)
	r.AdminNotes = notes.String
	r.ApprovedBy = by.String
	if r.ApprovedAt, err = decodeTimePtr(approvedAt); err != nil {
		return availability.TimeOffRequest{}, err
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return availability.TimeOffRequest{}, err
	}
	if r.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return availability.TimeOffRequest{}, err
	}
	return r, nil
}
