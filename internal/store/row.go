package store

import "github.com/robby/lostfound/internal/domain"

// ToggleFunc is called when a row's completion checkbox is toggled.
type ToggleFunc func(item domain.Item, completed bool)

// Row is what a list row renders: the item's title and checkbox state plus
// the callback to fire when the checkbox is toggled.
type Row struct {
	Item     domain.Item
	Title    string
	Checked  bool
	onToggle ToggleFunc
}

// Toggle fires the row's callback with the inverted checkbox state and
// returns that state.
func (r Row) Toggle() bool {
	next := !r.Checked
	if r.onToggle != nil {
		r.onToggle(r.Item, next)
	}
	return next
}

// Bind returns the row for the displayed item at index. The callback is taken
// fresh on every call; the store keeps no per-row callbacks.
func (s *Store) Bind(index int, onToggle ToggleFunc) (Row, bool) {
	if index < 0 || index >= len(s.displayed) {
		return Row{}, false
	}
	item := s.displayed[index]
	return Row{
		Item:     item,
		Title:    item.Title,
		Checked:  item.Completed,
		onToggle: onToggle,
	}, true
}
