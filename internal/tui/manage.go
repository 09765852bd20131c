package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/robby/lostfound/internal/api"
	"github.com/robby/lostfound/internal/domain"
	"github.com/robby/lostfound/internal/viewmodel"
)

// Form fields in focus order.
const (
	fieldTitle = iota
	fieldDescription
	fieldStatus
	fieldCompleted // edit only
)

// ManageModel is the form for reporting a new item or editing an existing one.
type ManageModel struct {
	// Dependencies
	items *viewmodel.Items
	ctx   context.Context

	// Item being edited; nil when creating
	editing *domain.Item

	// UI components
	keymap      FormKeyMap
	help        HelpModel
	spinner     spinner.Model
	title       textinput.Model
	description textarea.Model
	picker      *PickerModel

	// Form state
	focus     int
	status    domain.Status
	completed bool

	// View state
	saving   bool
	errorMsg string
	width    int
	height   int
}

// NewManageModel creates the form. Pass nil to report a new item.
func NewManageModel(items *viewmodel.Items, ctx context.Context, editing *domain.Item) ManageModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "What was lost or found?"
	ti.Prompt = ""
	ti.CharLimit = 255
	ti.Width = 50
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "Where, when, what it looks like..."
	ta.CharLimit = 65535
	ta.SetHeight(6)
	ta.SetWidth(50)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle() // No highlight on cursor line

	m := ManageModel{
		items:       items,
		ctx:         ctx,
		keymap:      DefaultFormKeyMap(),
		help:        NewHelpModel("Form", DefaultFormKeyMap()),
		spinner:     sp,
		title:       ti,
		description: ta,
		status:      domain.StatusLost,
	}

	if editing != nil {
		it := *editing
		m.editing = &it
		m.title.SetValue(it.Title)
		m.description.SetValue(it.Description)
		if s, ok := domain.ParseStatus(string(it.Status)); ok {
			m.status = s
		}
		m.completed = it.Completed
	}
	return m
}

// Init initializes the form
func (m ManageModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.WindowSize())
}

func (m ManageModel) fieldCount() int {
	if m.editing != nil {
		return 4
	}
	return 3
}

// Update handles messages
func (m ManageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := msg.Width - 6
		if w > 80 {
			w = 80
		}
		if w < 20 {
			w = 20
		}
		m.title.Width = w
		m.description.SetWidth(w)
		return m, nil

	case spinner.TickMsg:
		if !m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case choicePickedMsg:
		m.picker = nil
		if msg.kind == pickStatus {
			if s, ok := domain.ParseStatus(msg.key); ok {
				m.status = s
			}
		}
		return m, nil

	case choiceCancelledMsg:
		m.picker = nil
		return m, nil

	case pipeMsg[int]:
		if msg.result.IsLoading() {
			return m, msg.next
		}
		m.saving = false
		if msg.result.IsError() {
			m.errorMsg = msg.result.Message
			return m, nil
		}
		notice := fmt.Sprintf("Item #%d reported", msg.result.Value)
		return m, func() tea.Msg { return backToListMsg{refresh: true, notice: notice} }

	case pipeMsg[api.Ack]:
		if msg.result.IsLoading() {
			return m, msg.next
		}
		m.saving = false
		if msg.result.IsError() {
			m.errorMsg = msg.result.Message
			return m, nil
		}
		notice := ackNotice(msg.result.Value, "Item updated")
		return m, func() tea.Msg { return backToListMsg{refresh: true, notice: notice} }

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m.updateFocused(msg)
}

func (m ManageModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.saving {
		return m, nil
	}

	if m.picker != nil {
		p, cmd := m.picker.Update(msg)
		m.picker = &p
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keymap.Cancel):
		return m, func() tea.Msg { return backToListMsg{} }
	case key.Matches(msg, m.keymap.Submit):
		return m.submit()
	case key.Matches(msg, m.keymap.Next):
		return m.setFocus((m.focus + 1) % m.fieldCount())
	case key.Matches(msg, m.keymap.Prev):
		return m.setFocus((m.focus + m.fieldCount() - 1) % m.fieldCount())
	}

	switch m.focus {
	case fieldTitle:
		if msg.String() == "enter" {
			return m.setFocus(fieldDescription)
		}
	case fieldStatus:
		switch msg.String() {
		case "enter", " ":
			p := NewStatusPicker(m.status)
			m.picker = &p
		case "left", "right", "h", "l":
			if m.status == domain.StatusLost {
				m.status = domain.StatusFound
			} else {
				m.status = domain.StatusLost
			}
		}
		return m, nil
	case fieldCompleted:
		switch msg.String() {
		case "enter", " ", "x":
			m.completed = !m.completed
		}
		return m, nil
	}

	return m.updateFocused(msg)
}

// updateFocused forwards msg to the focused text component
func (m ManageModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
	case fieldDescription:
		m.description, cmd = m.description.Update(msg)
	}
	return m, cmd
}

func (m ManageModel) setFocus(field int) (tea.Model, tea.Cmd) {
	m.focus = field
	m.title.Blur()
	m.description.Blur()
	switch field {
	case fieldTitle:
		m.title.Focus()
		return m, textinput.Blink
	case fieldDescription:
		m.description.Focus()
		return m, textarea.Blink
	}
	return m, nil
}

// submit validates the form and sends it. Invalid forms never reach the server.
func (m ManageModel) submit() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.title.Value())
	description := strings.TrimSpace(m.description.Value())
	if err := validateItemForm(title, description, m.status); err != nil {
		m.errorMsg = err.Error()
		return m, nil
	}

	m.errorMsg = ""
	m.saving = true
	if m.editing == nil {
		return m, tea.Batch(m.spinner.Tick, subscribe(m.ctx, m.items.Create(title, description, m.status), opCreate, 0))
	}
	id := m.editing.ID
	return m, tea.Batch(m.spinner.Tick, subscribe(m.ctx, m.items.Update(id, title, description, m.status, m.completed), opUpdate, id))
}

// View renders the form
func (m ManageModel) View() string {
	var b strings.Builder

	heading := "Report an item"
	if m.editing != nil {
		heading = fmt.Sprintf("Edit item #%d", m.editing.ID)
	}
	b.WriteString(TitleStyle.Render(heading))
	b.WriteString("\n")

	b.WriteString(m.label("Title", fieldTitle))
	b.WriteString("\n")
	b.WriteString(m.title.View())
	b.WriteString("\n\n")

	b.WriteString(m.label("Description", fieldDescription))
	b.WriteString("\n")
	b.WriteString(m.description.View())
	b.WriteString("\n\n")

	b.WriteString(m.label("Status", fieldStatus))
	b.WriteString(" ")
	b.WriteString(statusBadge(string(m.status)))
	if m.focus == fieldStatus {
		b.WriteString(dimStyle.Render("  enter to choose, ←/→ to switch"))
	}
	b.WriteString("\n")

	if m.editing != nil {
		b.WriteString(m.label("Completed", fieldCompleted))
		b.WriteString(" ")
		b.WriteString(checkbox(m.completed))
		b.WriteString("\n")
	}

	if m.picker != nil {
		b.WriteString("\n")
		b.WriteString(m.picker.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.saving:
		b.WriteString(m.spinner.View() + " Saving...")
	case m.errorMsg != "":
		b.WriteString(ErrorStyle.Render("✗ " + m.errorMsg))
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortView(m.width))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m ManageModel) label(text string, field int) string {
	if m.focus == field {
		return SelectedItemStyle.Render("> " + text)
	}
	return labelStyle.Render("  " + text)
}
