package availability

import "sync"

// =============================================================================
// CHANGE SIGNALS - Recompute-on-signal contract
// =============================================================================
// The engine holds no cache of resolved statuses. Callers that do cache
// (a UI query layer, typically) subscribe here and invalidate whenever
// rows of a given kind change for a worker. Any transport can sit behind
// this; in-process fan-out is all the engine owns.

type ChangeKind string

const (
	ChangePattern  ChangeKind = "pattern"
	ChangeOverride ChangeKind = "override"
	ChangeTimeOff  ChangeKind = "time_off"
	ChangeWorker   ChangeKind = "worker"
)

// Change says "rows of this kind changed for this worker"; subscribers
// should re-run resolve/snapshot for affected views.
type Change struct {
	Kind     ChangeKind
	WorkerID WorkerID
}

// Signals is an in-process broadcast hub. Publish never blocks: slow
// subscribers miss changes rather than stalling writes, which is safe
// because a recompute picks up the current state anyway.
type Signals struct {
	mu   sync.RWMutex
	subs map[int]chan Change
	next int
}

func NewSignals() *Signals {
	return &Signals{subs: make(map[int]chan Change)}
}

// Subscribe returns a change channel and a cancel func. The channel is
// buffered; drop-on-full semantics apply.
func (s *Signals) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan Change, 16)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish fans out a change to all subscribers. Nil receivers are no-ops
// so services can treat the hub as optional.
func (s *Signals) Publish(c Change) {
	if s == nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
