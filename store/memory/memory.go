// Package memory provides an in-memory Store implementation (tests/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/availability-engine/approval"
	"github.com/warp/availability-engine/availability"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	workers   map[availability.WorkerID]availability.Worker
	patterns  map[patternKey]availability.WeeklyPattern
	overrides map[string]availability.Override // by ID
	timeOff   map[string]availability.TimeOffRequest
}

type patternKey struct {
	WorkerID  availability.WorkerID
	DayOfWeek int
}

func New() *Store {
	return &Store{
		workers:   make(map[availability.WorkerID]availability.Worker),
		patterns:  make(map[patternKey]availability.WeeklyPattern),
		overrides: make(map[string]availability.Override),
		timeOff:   make(map[string]availability.TimeOffRequest),
	}
}

var _ availability.Store = (*Store)(nil)

// =============================================================================
// WORKERS
// =============================================================================

func (s *Store) SaveWorker(_ context.Context, w availability.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers[w.ID] = w
	return nil
}

func (s *Store) GetWorker(_ context.Context, id availability.WorkerID) (*availability.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if w, ok := s.workers[id]; ok {
		return &w, nil
	}
	return nil, nil
}

func (s *Store) ListWorkers(_ context.Context, roles ...availability.Role) ([]availability.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[availability.Role]bool, len(roles))
	for _, r := range roles {
		wanted[r] = true
	}

	var out []availability.Worker
	for _, w := range s.workers {
		if !w.Active {
			continue
		}
		if len(wanted) > 0 && !wanted[w.Role] {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// =============================================================================
// PATTERNS - Upsert on (worker, day-of-week)
// =============================================================================

func (s *Store) UpsertPattern(_ context.Context, p availability.WeeklyPattern) (availability.WeeklyPattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns[patternKey{WorkerID: p.WorkerID, DayOfWeek: p.DayOfWeek}] = p
	return p, nil
}

func (s *Store) ListPatterns(_ context.Context, workerID availability.WorkerID) ([]availability.WeeklyPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []availability.WeeklyPattern
	for k, p := range s.patterns {
		if k.WorkerID == workerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayOfWeek < out[j].DayOfWeek })
	return out, nil
}

// =============================================================================
// OVERRIDES - Upsert on (worker, date)
// =============================================================================

func (s *Store) UpsertOverride(_ context.Context, o availability.Override) (availability.Override, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Replace any existing row for the same (worker, date); the new row
	// supersedes it entirely.
	for id, existing := range s.overrides {
		if existing.WorkerID == o.WorkerID && existing.Date.Equal(o.Date) {
			delete(s.overrides, id)
		}
	}
	s.overrides[o.ID] = o
	return o, nil
}

func (s *Store) GetOverride(_ context.Context, id string) (*availability.Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.overrides[id]; ok {
		return &o, nil
	}
	return nil, nil
}

func (s *Store) FindOverride(_ context.Context, workerID availability.WorkerID, date availability.Date) (*availability.Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.overrides {
		if o.WorkerID == workerID && o.Date.Equal(date) {
			return &o, nil
		}
	}
	return nil, nil
}

func (s *Store) ListOverrides(_ context.Context, workerID availability.WorkerID, from, to availability.Date) ([]availability.Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []availability.Override
	for _, o := range s.overrides {
		if o.WorkerID == workerID && from.BeforeOrEqual(o.Date) && o.Date.BeforeOrEqual(to) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) SaveOverride(_ context.Context, o availability.Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[o.ID] = o
	return nil
}

func (s *Store) ListPendingOverrides(_ context.Context, workerID *availability.WorkerID) ([]availability.Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []availability.Override
	for _, o := range s.overrides {
		if o.Status != approval.StatusPending {
			continue
		}
		if workerID != nil && o.WorkerID != *workerID {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// =============================================================================
// TIME-OFF REQUESTS - Plain inserts, duplicates permitted
// =============================================================================

func (s *Store) CreateTimeOff(_ context.Context, r availability.TimeOffRequest) (availability.TimeOffRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeOff[r.ID] = r
	return r, nil
}

func (s *Store) GetTimeOff(_ context.Context, id string) (*availability.TimeOffRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.timeOff[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (s *Store) ListTimeOff(_ context.Context, workerID availability.WorkerID, from, to availability.Date) ([]availability.TimeOffRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []availability.TimeOffRequest
	for _, r := range s.timeOff {
		if r.WorkerID != workerID {
			continue
		}
		// Overlap test on inclusive ranges.
		if r.StartDate.BeforeOrEqual(to) && from.BeforeOrEqual(r.EndDate) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *Store) SaveTimeOff(_ context.Context, r availability.TimeOffRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeOff[r.ID] = r
	return nil
}

func (s *Store) ListPendingTimeOff(_ context.Context, workerID *availability.WorkerID) ([]availability.TimeOffRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []availability.TimeOffRequest
	for _, r := range s.timeOff {
		if r.Status != approval.StatusPending {
			continue
		}
		if workerID != nil && r.WorkerID != *workerID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
