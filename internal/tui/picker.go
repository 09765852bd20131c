package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/robby/lostfound/internal/domain"
)

// pickerKind identifies what a picker is choosing.
type pickerKind int

const (
	pickStatus pickerKind = iota
	pickCompletion
)

// Completion filter keys, mapped to the list endpoint's is_completed filter.
const (
	completionAll       = "all"
	completionPending   = "pending"
	completionCompleted = "completed"
)

// choiceItem is one option in a picker.
type choiceItem struct {
	key   string
	title string
	desc  string
}

func (i choiceItem) FilterValue() string { return i.title }
func (i choiceItem) Title() string       { return i.title }
func (i choiceItem) Description() string { return i.desc }

// choiceDelegate renders choice items.
type choiceDelegate struct{}

func (d choiceDelegate) Height() int                             { return 2 }
func (d choiceDelegate) Spacing() int                            { return 0 }
func (d choiceDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d choiceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(choiceItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())
	desc := i.Description()

	if index == m.Index() {
		// Selected item
		fmt.Fprint(w, SelectedItemStyle.Render("> "+str))
		fmt.Fprint(w, "\n  "+NormalItemStyle.Render(desc))
	} else {
		// Normal item
		fmt.Fprint(w, NormalItemStyle.Render("  "+str))
		fmt.Fprint(w, "\n  "+lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(desc))
	}
}

// choicePickedMsg is emitted when the user confirms a choice.
type choicePickedMsg struct {
	kind pickerKind
	key  string
}

// choiceCancelledMsg is emitted when the user dismisses the picker.
type choiceCancelledMsg struct {
	kind pickerKind
}

// PickerModel shows a short list of options in a popup.
type PickerModel struct {
	kind pickerKind
	list list.Model
}

func newPicker(kind pickerKind, title string, items []choiceItem, selected string) PickerModel {
	listItems := make([]list.Item, len(items))
	cursor := 0
	for i, it := range items {
		listItems[i] = it
		if it.key == selected {
			cursor = i
		}
	}

	l := list.New(listItems, choiceDelegate{}, 40, len(items)*2+4)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle
	l.Select(cursor)

	return PickerModel{kind: kind, list: l}
}

// NewStatusPicker picks between lost and found.
func NewStatusPicker(current domain.Status) PickerModel {
	items := []choiceItem{
		{key: string(domain.StatusLost), title: "Lost", desc: "I lost this item"},
		{key: string(domain.StatusFound), title: "Found", desc: "I found this item"},
	}
	return newPicker(pickStatus, "Status", items, string(current))
}

// NewCompletionPicker picks which items the list shows.
func NewCompletionPicker(current string) PickerModel {
	items := []choiceItem{
		{key: completionAll, title: "All", desc: "Every reported item"},
		{key: completionPending, title: "Pending", desc: "Items not yet returned"},
		{key: completionCompleted, title: "Completed", desc: "Items already returned"},
	}
	return newPicker(pickCompletion, "Show", items, current)
}

// Init initializes the model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m PickerModel) Update(msg tea.Msg) (PickerModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "q":
			kind := m.kind
			return m, func() tea.Msg { return choiceCancelledMsg{kind: kind} }
		case "enter":
			if item, ok := m.list.SelectedItem().(choiceItem); ok {
				kind := m.kind
				return m, func() tea.Msg { return choicePickedMsg{kind: kind, key: item.key} }
			}
			return m, nil
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			idx := int(msg.Runes[0] - '1')
			if idx < len(m.list.Items()) {
				m.list.Select(idx)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Selected returns the key under the cursor.
func (m PickerModel) Selected() string {
	if item, ok := m.list.SelectedItem().(choiceItem); ok {
		return item.key
	}
	return ""
}

// View renders the model.
func (m PickerModel) View() string {
	return focusedPanelBorderStyle.Padding(0, 1).Render(m.list.View())
}

// completionFilter maps a completion key to the list endpoint filter.
func completionFilter(key string) *bool {
	switch key {
	case completionPending:
		v := false
		return &v
	case completionCompleted:
		v := true
		return &v
	}
	return nil
}
