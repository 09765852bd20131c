package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/robby/lostfound/internal/api"
	"github.com/robby/lostfound/internal/domain"
	"github.com/robby/lostfound/internal/logging"
	"github.com/robby/lostfound/internal/store"
	"github.com/robby/lostfound/internal/viewmodel"
)

// Layout constants
const (
	listChromeLines = 3  // header + hints + footer
	pageJumpSize    = 10 // Number of items to jump with Ctrl+D/U
)

// ListModel is the main screen: every reported item with its completion checkbox.
type ListModel struct {
	// Dependencies
	items *viewmodel.Items
	store *store.Store
	ctx   context.Context

	// UI components
	keymap      KeyMap
	help        HelpModel
	spinner     spinner.Model
	filterInput textinput.Model
	picker      *PickerModel

	// List state
	selected     int
	scrollOffset int
	completion   string // completionAll, completionPending or completionCompleted
	userName     string

	// View state
	width         int
	height        int
	showHelp      bool
	filterMode    bool
	loading       bool
	confirmDelete *domain.Item
	errorToast    string
	notice        string
}

// NewListModel creates the list screen. The store is shared with the app so
// the loaded items survive visits to other screens.
func NewListModel(items *viewmodel.Items, s *store.Store, ctx context.Context, userName string) ListModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Filter by title..."
	ti.Prompt = "/ "

	return ListModel{
		items:       items,
		store:       s,
		ctx:         ctx,
		keymap:      DefaultKeyMap(),
		help:        NewHelpModel("List", DefaultKeyMap()),
		spinner:     sp,
		filterInput: ti,
		completion:  completionAll,
		userName:    userName,
	}
}

// Init initializes the list and starts loading
func (m ListModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.WindowSize(),
		m.refresh(),
	)
}

// refresh re-fetches the list with the current completion filter.
func (m ListModel) refresh() tea.Cmd {
	return subscribe(m.ctx, m.items.List(completionFilter(m.completion)), opList, 0)
}

// Update handles messages
func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		(&m).adjustScroll()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pipeMsg[[]domain.Item]:
		return m.handleList(msg)

	case pipeMsg[api.Ack]:
		return m.handleAck(msg)

	case choicePickedMsg:
		m.picker = nil
		if msg.kind == pickCompletion && msg.key != m.completion {
			m.completion = msg.key
			return m, m.refresh()
		}
		return m, nil

	case choiceCancelledMsg:
		m.picker = nil
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m ListModel) handleList(msg pipeMsg[[]domain.Item]) (tea.Model, tea.Cmd) {
	if msg.result.IsLoading() {
		m.loading = true
		return m, msg.next
	}
	m.loading = false
	if msg.result.IsError() {
		m.errorToast = msg.result.Message
		return m, nil
	}
	current, _ := m.selectedItem()
	changes := m.store.Load(msg.result.Value)
	logging.Debug("list loaded", "items", len(msg.result.Value), "changes", len(changes))
	m.errorToast = ""
	(&m).followSelection(current.ID, changes)
	return m, nil
}

func (m ListModel) handleAck(msg pipeMsg[api.Ack]) (tea.Model, tea.Cmd) {
	if msg.result.IsLoading() {
		return m, msg.next
	}

	switch msg.op {
	case opToggle:
		if msg.result.IsSuccess() {
			m.store.CommitCompletion(msg.id)
			return m, nil
		}
		m.errorToast = msg.result.Message
		current, _ := m.selectedItem()
		changes, err := m.store.RollbackCompletion(msg.id)
		if err != nil {
			// an earlier request for this item already settled; resync from the server
			logging.Warn("rollback unavailable, refreshing", "item", msg.id, "err", err)
			return m, m.refresh()
		}
		(&m).followSelection(current.ID, changes)
		return m, nil

	case opDelete:
		if msg.result.IsError() {
			m.errorToast = msg.result.Message
			return m, nil
		}
		m.notice = ackNotice(msg.result.Value, "Item deleted")
		return m, m.refresh()
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m ListModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.picker != nil {
		p, cmd := m.picker.Update(msg)
		m.picker = &p
		return m, cmd
	}

	// Help overlay
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "q" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// Delete confirmation
	if m.confirmDelete != nil {
		item := *m.confirmDelete
		m.confirmDelete = nil
		switch msg.String() {
		case "y", "Y":
			return m, subscribe(m.ctx, m.items.Delete(item.ID), opDelete, item.ID)
		}
		return m, nil
	}

	// Filter mode: the list follows every keystroke
	if m.filterMode {
		switch {
		case key.Matches(msg, m.keymap.ApplyFilter):
			m.filterMode = false
			m.filterInput.Blur()
			return m, nil
		case key.Matches(msg, m.keymap.CancelFilter):
			m.filterMode = false
			m.filterInput.Blur()
			m.filterInput.SetValue("")
			current, _ := m.selectedItem()
			(&m).followSelection(current.ID, m.store.Filter(""))
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			current, _ := m.selectedItem()
			(&m).followSelection(current.ID, m.store.Filter(m.filterInput.Value()))
			return m, cmd
		}
	}

	m.notice = ""

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
	case key.Matches(msg, m.keymap.Filter):
		m.filterMode = true
		m.filterInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keymap.Up):
		(&m).moveSelection(-1)
	case key.Matches(msg, m.keymap.Down):
		(&m).moveSelection(1)
	case key.Matches(msg, m.keymap.Top):
		(&m).jumpTo(0)
	case key.Matches(msg, m.keymap.Bottom):
		(&m).jumpTo(-1)
	case msg.String() == "ctrl+d":
		(&m).moveSelection(pageJumpSize)
	case msg.String() == "ctrl+u":
		(&m).moveSelection(-pageJumpSize)
	case key.Matches(msg, m.keymap.Toggle):
		return m, m.toggleSelected()
	case key.Matches(msg, m.keymap.Open):
		if item, ok := m.selectedItem(); ok {
			return m, func() tea.Msg { return openDetailMsg{id: item.ID} }
		}
	case key.Matches(msg, m.keymap.Add):
		return m, func() tea.Msg { return openManageMsg{} }
	case key.Matches(msg, m.keymap.Edit):
		if item, ok := m.selectedItem(); ok {
			return m, func() tea.Msg { return openManageMsg{item: &item} }
		}
	case key.Matches(msg, m.keymap.Delete):
		if item, ok := m.selectedItem(); ok {
			m.confirmDelete = &item
		}
	case key.Matches(msg, m.keymap.Completion):
		p := NewCompletionPicker(m.completion)
		m.picker = &p
	case key.Matches(msg, m.keymap.Refresh):
		m.errorToast = ""
		return m, m.refresh()
	case key.Matches(msg, m.keymap.Profile):
		return m, func() tea.Msg { return showProfileMsg{} }
	}

	return m, nil
}

// toggleSelected flips the selected row's checkbox. The store changes
// immediately; the update request runs in the background.
func (m ListModel) toggleSelected() tea.Cmd {
	var cmd tea.Cmd
	row, ok := m.store.Bind(m.selected, func(item domain.Item, completed bool) {
		if _, err := m.store.SetCompletion(item.ID, completed); err != nil {
			logging.Warn("toggle on unknown item", "item", item.ID, "err", err)
			return
		}
		cmd = subscribe(m.ctx,
			m.items.Update(item.ID, item.Title, item.Description, item.Status, completed),
			opToggle, item.ID)
	})
	if !ok {
		return nil
	}
	row.Toggle()
	return cmd
}

// View renders the list, filling the terminal
func (m ListModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	var sections []string
	sections = append(sections, m.renderHeader(width))
	sections = append(sections, m.renderHints(width))

	if m.filterMode {
		sections = append(sections, m.filterInput.View())
	}

	bodyHeight := m.bodyHeight(height)

	var body string
	switch {
	case m.showHelp:
		helpLines := strings.Split(m.help.View(width), "\n")
		if len(helpLines) > bodyHeight {
			helpLines = helpLines[:bodyHeight]
		}
		body = strings.Join(helpLines, "\n")
	case m.picker != nil:
		body = lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, m.picker.View())
	case m.loading && len(m.store.Canonical()) == 0:
		body = lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Loading...")
	case m.store.Len() == 0:
		empty := "No items yet. Press 'a' to report one."
		if m.store.Query() != "" {
			empty = fmt.Sprintf("No items match %q.", m.store.Query())
		}
		body = lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, dimStyle.Render(empty))
	default:
		body = m.renderRows(width, bodyHeight)
	}
	sections = append(sections, lipgloss.NewStyle().Height(bodyHeight).Render(body))
	sections = append(sections, m.renderFooter(width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ListModel) bodyHeight(height int) int {
	h := height - listChromeLines
	if m.filterMode {
		h--
	}
	if h < 3 {
		h = 3
	}
	return h
}

// renderHeader renders the title line with counts and active filters
func (m ListModel) renderHeader(width int) string {
	title := "Lost & Found"
	if m.userName != "" {
		title = fmt.Sprintf("Lost & Found (%s)", m.userName)
	}

	var statusParts []string
	if m.loading {
		statusParts = append(statusParts, m.spinner.View()+"loading")
	}
	statusParts = append(statusParts, fmt.Sprintf("%d/%d items", m.store.Len(), len(m.store.Canonical())))
	if m.completion != completionAll {
		statusParts = append(statusParts, m.completion)
	}
	if q := m.store.Query(); q != "" {
		statusParts = append(statusParts, "/"+q)
	}
	statusParts = append(statusParts, "[?]help")
	status := strings.Join(statusParts, " | ")

	padding := width - lipgloss.Width(title) - lipgloss.Width(status) - 2
	if padding < 1 {
		padding = 1
	}
	return TitleStyle.UnsetMarginBottom().Render(title) + strings.Repeat(" ", padding) + dimStyle.Render(status)
}

// renderHints renders key hints, or the delete prompt when one is pending
func (m ListModel) renderHints(width int) string {
	if m.confirmDelete != nil {
		return warningStyle.Render(fmt.Sprintf("Delete %q? [y]es [n]o", m.confirmDelete.Title))
	}
	return m.help.ShortView(width)
}

// renderFooter renders the toast line
func (m ListModel) renderFooter(width int) string {
	switch {
	case m.errorToast != "":
		return ErrorStyle.Render("✗ " + m.errorToast)
	case m.notice != "":
		return SuccessStyle.Render("✓ " + m.notice)
	case m.store.Len() > 0:
		return dimStyle.Render(fmt.Sprintf("item %d/%d", m.selected+1, m.store.Len()))
	}
	return ""
}

// renderRows renders the visible window of rows
func (m ListModel) renderRows(width, height int) string {
	end := m.scrollOffset + height
	if end > m.store.Len() {
		end = m.store.Len()
	}

	lines := make([]string, 0, height)
	for i := m.scrollOffset; i < end; i++ {
		row, ok := m.store.Bind(i, nil)
		if !ok {
			continue
		}
		lines = append(lines, m.formatRow(row, i == m.selected, width))
	}
	return strings.Join(lines, "\n")
}

// formatRow renders one row: cursor, checkbox, title, and a right-aligned status badge
func (m ListModel) formatRow(row store.Row, selected bool, width int) string {
	badge := statusBadge(string(row.Item.Status))
	prefix := "  "
	if selected {
		prefix = "> "
	}
	lead := prefix + checkbox(row.Checked) + " "

	available := width - lipgloss.Width(lead) - lipgloss.Width(badge) - 2
	if available < 5 {
		available = 5
	}
	title := truncate(row.Title, available)
	if selected {
		title = SelectedItemStyle.Render(title)
	} else if row.Checked {
		title = dimStyle.Render(title)
	} else {
		title = NormalItemStyle.Render(title)
	}

	if m.store.Pending(row.Item.ID) {
		badge = dimStyle.Render("saving ") + badge
	}

	padding := width - lipgloss.Width(lead) - lipgloss.Width(title) - lipgloss.Width(badge) - 1
	if padding < 1 {
		padding = 1
	}
	return lead + title + strings.Repeat(" ", padding) + badge
}

// moveSelection moves the selection up or down by delta
func (m *ListModel) moveSelection(delta int) {
	if m.store.Len() == 0 {
		return
	}
	m.selected += delta
	m.clampSelection()
}

// jumpTo jumps to a row index. Use -1 to jump to the last row.
func (m *ListModel) jumpTo(idx int) {
	if m.store.Len() == 0 {
		return
	}
	if idx < 0 {
		idx = m.store.Len() - 1
	}
	m.selected = idx
	m.clampSelection()
}

// followSelection keeps the cursor on item id after the projection changed.
// When the item left the projection the cursor stays at its index.
func (m *ListModel) followSelection(id int, changes []store.Change) {
	if len(changes) > 0 {
		for i, item := range m.store.Displayed() {
			if item.ID == id {
				m.selected = i
				break
			}
		}
	}
	m.clampSelection()
}

// clampSelection keeps the selection on a displayed row and in view
func (m *ListModel) clampSelection() {
	n := m.store.Len()
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.adjustScroll()
}

// adjustScroll ensures the selected row is visible
func (m *ListModel) adjustScroll() {
	height := m.height
	if height == 0 {
		height = 24
	}
	visible := m.bodyHeight(height)

	if m.selected < m.scrollOffset {
		m.scrollOffset = m.selected
	}
	if m.selected >= m.scrollOffset+visible {
		m.scrollOffset = m.selected - visible + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

// selectedItem returns the displayed item under the cursor
func (m ListModel) selectedItem() (domain.Item, bool) {
	row, ok := m.store.Bind(m.selected, nil)
	return row.Item, ok
}

// ackNotice prefers the server's message over a fixed text.
func ackNotice(ack api.Ack, fallback string) string {
	if strings.TrimSpace(ack.Message) != "" {
		return ack.Message
	}
	return fallback
}

// truncate shortens s to at most width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
