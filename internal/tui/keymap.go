package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the item list.
type KeyMap struct {
	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Actions
	Toggle       key.Binding
	Open         key.Binding
	Add          key.Binding
	Edit         key.Binding
	Delete       key.Binding
	Filter       key.Binding
	Completion   key.Binding
	Refresh      key.Binding
	Profile      key.Binding
	Help         key.Binding
	Quit         key.Binding
	ApplyFilter  key.Binding
	CancelFilter key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous item"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next item"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first item"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last item"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space/x", "toggle completed"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "view item"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "report item"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit item"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete item"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter by title"),
		),
		Completion: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "show all/pending/completed"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Profile: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "profile"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ApplyFilter: key.NewBinding(
			key.WithKeys("enter"),
		),
		CancelFilter: key.NewBinding(
			key.WithKeys("esc"),
		),
	}
}

// ShortHelp returns key bindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Open, k.Add, k.Filter, k.Help, k.Quit}
}

// FullHelp returns key bindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Toggle, k.Open, k.Add, k.Edit, k.Delete},
		{k.Filter, k.Completion, k.Refresh, k.Profile, k.Help, k.Quit},
	}
}

// DetailKeyMap defines the key bindings for the item detail view.
type DetailKeyMap struct {
	Back       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Toggle     key.Binding
	Edit       key.Binding
	Delete     key.Binding
	OpenCover  key.Binding
	OpenAuthor key.Binding
}

// DefaultDetailKeyMap returns the detail view bindings.
func DefaultDetailKeyMap() DetailKeyMap {
	return DetailKeyMap{
		Back:       key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("q", "back")),
		ScrollUp:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j", "scroll down")),
		Toggle:     key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("x", "toggle completed")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		OpenCover:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open cover")),
		OpenAuthor: key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "open author photo")),
	}
}

func (k DetailKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Toggle, k.Edit, k.Delete, k.OpenCover}
}

func (k DetailKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ScrollUp, k.ScrollDown, k.Back},
		{k.Toggle, k.Edit, k.Delete, k.OpenCover, k.OpenAuthor},
	}
}

// FormKeyMap defines the key bindings shared by the input forms.
type FormKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

// DefaultFormKeyMap returns the form bindings.
func DefaultFormKeyMap() FormKeyMap {
	return FormKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k FormKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Submit, k.Cancel}
}

func (k FormKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
