package roster

import (
	"sync"

	"taskpad/internal/kvstore"
	"taskpad/internal/model"
)

const storeKey = "users"

// Entry is one row of the admin-managed user directory. The roster is a
// standalone data set: it has no link to the login credential table, so a
// roster entry does not grant login capability.
type Entry struct {
	ID       int        `json:"id"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

func seedEntries() []Entry {
	return []Entry{
		{ID: 1, Username: "admin", Role: model.RoleAdmin},
		{ID: 2, Username: "user", Role: model.RoleUser},
	}
}

// Service holds the roster and persists the full list under the "users" key
// after every mutation. The seed entries are defaults only; they are not
// written to the store until the first mutation.
type Service struct {
	mu      sync.Mutex
	store   *kvstore.Store
	entries []Entry
}

func NewService(store *kvstore.Store) (*Service, error) {
	s := &Service{store: store}
	ok, err := store.Get(storeKey, &s.entries)
	if err != nil {
		return nil, err
	}
	if !ok || len(s.entries) == 0 {
		s.entries = seedEntries()
	}
	return s, nil
}

func (s *Service) persistLocked() error {
	return s.store.Put(storeKey, s.entries)
}

func (s *Service) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// AddEntry appends a new entry, continuing the id sequence from the last one.
func (s *Service) AddEntry(username string, role model.Role) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := 1
	if n := len(s.entries); n > 0 {
		next = s.entries[n-1].ID + 1
	}
	e := Entry{ID: next, Username: username, Role: role}
	s.entries = append(s.entries, e)
	if err := s.persistLocked(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// DeleteEntry removes the matching entry; an absent id is a no-op. The list
// is re-persisted either way.
func (s *Service) DeleteEntry(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.entries[:0]
	for _, e := range s.entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	s.entries = out
	return s.persistLocked()
}

// SetRole updates the role of the matching entry; an absent id is a no-op.
func (s *Service) SetRole(id int, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Role = role
			break
		}
	}
	return s.persistLocked()
}
