package tasks

import (
	"context"
	"log"
	"sync"

	"taskpad/internal/metrics"
	"taskpad/internal/model"
)

// Status is the fetch lifecycle of the task collection. Transitions are
// monotonic per fetch cycle: idle -> loading -> succeeded|failed. There is no
// transition back to idle, so a fetch cycle runs at most once per process.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Filter selects tasks by completion state. Unknown values behave like
// FilterAll.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
)

// Fetcher is the read side of the remote task source.
type Fetcher interface {
	FetchTasks(ctx context.Context) ([]model.Task, error)
}

// Patch carries the fields a local edit may change. Nil fields are left
// untouched.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Snapshot is a point-in-time copy of the container state for view
// derivation and rendering. Items is a copy; mutating it does not affect the
// store.
type Snapshot struct {
	Items  []model.Task
	Status Status
	Err    string
	Query  string
	Filter Filter
}

// Store is the single source of truth for the task collection and its fetch
// lifecycle. All local mutations are synchronous; only FetchAll suspends its
// caller. Local edits never round-trip to the remote source.
type Store struct {
	mu      sync.Mutex
	items   []model.Task
	status  Status
	err     string
	query   string
	filter  Filter
	fetcher Fetcher
	logger  *log.Logger
	rec     *metrics.Recorder
}

func NewStore(fetcher Fetcher, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		status:  StatusIdle,
		filter:  FilterAll,
		fetcher: fetcher,
		logger:  logger,
	}
}

func (s *Store) SetMetrics(rec *metrics.Recorder) {
	s.rec = rec
}

// FetchAll runs one fetch cycle against the remote source. It is inert unless
// the status is idle, so invoking it during loading or after a completed
// cycle never re-issues the request. On success the collection is replaced
// wholesale, preserving the remote ordering; on failure the collection is
// left untouched and the error message is recorded. The failure is surfaced
// through the snapshot, not returned; there is no automatic retry.
func (s *Store) FetchAll(ctx context.Context) {
	s.mu.Lock()
	if s.status != StatusIdle {
		s.mu.Unlock()
		return
	}
	s.status = StatusLoading
	s.err = ""
	s.mu.Unlock()

	items, err := s.fetcher.FetchTasks(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = StatusFailed
		s.err = err.Error()
		s.rec.IncFetchCycle("failed")
		s.logger.Printf("task fetch failed: %v", err)
		return
	}
	s.status = StatusSucceeded
	s.items = items
	s.rec.IncFetchCycle("succeeded")
}

// SetQuery replaces the active search string. Empty means match all.
func (s *Store) SetQuery(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = text
}

// SetFilter replaces the active status filter.
func (s *Store) SetFilter(kind Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = kind
}

// Add prepends a new task. The new id is one past the highest id in the
// collection, keeping ids unique across any mix of adds and removes. A userID
// of zero or less defaults to 1. Title validation happens at the call
// boundary, not here.
func (s *Store) Add(title string, completed bool, userID int) model.Task {
	if userID <= 0 {
		userID = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := 1
	for _, t := range s.items {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	t := model.Task{ID: next, UserID: userID, Title: title, Completed: completed}
	s.items = append([]model.Task{t}, s.items...)
	return t
}

// Get looks up a task by id.
func (s *Store) Get(id int) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Update shallow-merges the patch into the matching task in place. Absent
// ids are a silent no-op.
func (s *Store) Update(id int, p Patch) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if p.Title != nil {
			s.items[i].Title = *p.Title
		}
		if p.Completed != nil {
			s.items[i].Completed = *p.Completed
		}
		return s.items[i], true
	}
	return model.Task{}, false
}

// Remove deletes the matching task. Absent ids are a silent no-op.
func (s *Store) Remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.Task, len(s.items))
	copy(items, s.items)
	return Snapshot{
		Items:  items,
		Status: s.status,
		Err:    s.err,
		Query:  s.query,
		Filter: s.filter,
	}
}
