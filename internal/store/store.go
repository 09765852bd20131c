// Package store is the in-memory state behind the item list screen.
// It keeps the canonical snapshot last fetched from the server and the
// filtered projection currently displayed, and computes row-level diffs
// between successive projections.
package store

import (
	"errors"
	"strings"

	"github.com/robby/lostfound/internal/domain"
)

var (
	// ErrItemNotFound indicates the requested item is not in the canonical snapshot.
	ErrItemNotFound = errors.New("item not found")
	// ErrNoRollback indicates there is no optimistic change to undo.
	ErrNoRollback = errors.New("no rollback state available")
)

// Store holds the canonical items and the displayed projection.
// It is not safe for concurrent use; the screen that owns it serializes access.
type Store struct {
	canonical []domain.Item
	displayed []domain.Item
	query     string

	// Completion flags from before the first unconfirmed toggle, by item id
	pending map[int]bool
}

// New creates an empty Store.
func New() *Store {
	return &Store{pending: map[int]bool{}}
}

// Load replaces the canonical snapshot with a copy of items, keeping server
// order, and re-applies the current query. Pending rollbacks are dropped.
func (s *Store) Load(items []domain.Item) []Change {
	prev := s.displayed
	s.canonical = domain.CloneItems(items)
	if s.canonical == nil {
		s.canonical = []domain.Item{}
	}
	s.pending = map[int]bool{}
	s.project()
	return Diff(prev, s.displayed)
}

// Filter sets the query and recomputes the displayed projection.
// Matching is a case-insensitive substring test on the title. An empty query
// shows everything. Returns the changes from the previous projection.
func (s *Store) Filter(query string) []Change {
	prev := s.displayed
	s.query = query
	s.project()
	return Diff(prev, s.displayed)
}

// SetCompletion flips an item's completion flag before the server confirms it.
// The value from before the first unconfirmed toggle of id is kept for
// RollbackCompletion, so overlapping toggles of the same item roll back to
// what the server last confirmed. Returns ErrItemNotFound for unknown ids.
func (s *Store) SetCompletion(id int, completed bool) ([]Change, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	if s.pending == nil {
		s.pending = map[int]bool{}
	}
	if _, ok := s.pending[id]; !ok {
		s.pending[id] = s.canonical[idx].Completed
	}

	prev := s.displayed
	s.canonical[idx].Completed = completed
	s.project()
	return Diff(prev, s.displayed), nil
}

// RollbackCompletion restores id's completion flag to its value before the
// pending toggles. Callers invoke it when the remote update fails. Returns
// ErrNoRollback when nothing is pending for id, which happens once another
// request for the same item has already settled.
func (s *Store) RollbackCompletion(id int) ([]Change, error) {
	completed, ok := s.pending[id]
	if !ok {
		return nil, ErrNoRollback
	}
	delete(s.pending, id)

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	prev := s.displayed
	s.canonical[idx].Completed = completed
	s.project()
	return Diff(prev, s.displayed), nil
}

// CommitCompletion forgets id's pending rollback once the server has confirmed.
func (s *Store) CommitCompletion(id int) {
	delete(s.pending, id)
}

// Pending reports whether id has an unconfirmed completion toggle.
func (s *Store) Pending(id int) bool {
	_, ok := s.pending[id]
	return ok
}

// Canonical returns a copy of the canonical snapshot.
func (s *Store) Canonical() []domain.Item {
	return domain.CloneItems(s.canonical)
}

// Displayed returns a copy of the displayed projection.
func (s *Store) Displayed() []domain.Item {
	return domain.CloneItems(s.displayed)
}

// Get returns the canonical item with id.
func (s *Store) Get(id int) (domain.Item, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Item{}, ErrItemNotFound
	}
	return s.canonical[idx], nil
}

// Len returns the number of displayed items.
func (s *Store) Len() int {
	return len(s.displayed)
}

// Query returns the active filter query.
func (s *Store) Query() string {
	return s.query
}

func (s *Store) indexOf(id int) int {
	for i := range s.canonical {
		if s.canonical[i].ID == id {
			return i
		}
	}
	return -1
}

// project rebuilds displayed from canonical. The result never aliases canonical.
func (s *Store) project() {
	q := strings.ToLower(s.query)
	out := make([]domain.Item, 0, len(s.canonical))
	for _, item := range s.canonical {
		if q == "" || strings.Contains(strings.ToLower(item.Title), q) {
			out = append(out, item)
		}
	}
	s.displayed = out
}
