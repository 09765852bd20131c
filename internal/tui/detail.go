package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/pkg/browser"
	"github.com/robby/lostfound/internal/api"
	"github.com/robby/lostfound/internal/domain"
	"github.com/robby/lostfound/internal/viewmodel"
)

// Layout constants
const (
	leftPanelRatio = 0.35 // Left panel takes 35% of width
	minLeftWidth   = 30
	maxLeftWidth   = 50
	headerHeight   = 1
	footerHeight   = 1
	borderSize     = 2 // Top + bottom border
)

// Detail view styles
var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	authorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	scrollIndicatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205"))
)

// openURL is swapped out in tests.
var openURL = browser.OpenURL

// DetailModel shows one item: metadata on the left, description on the right.
type DetailModel struct {
	// Dependencies
	items *viewmodel.Items
	ctx   context.Context

	// Item data
	id   int
	item *domain.Item

	// UI components
	keymap   DetailKeyMap
	help     HelpModel
	spinner  spinner.Model
	viewport viewport.Model

	// State
	loading       bool
	loadingAction string
	confirmDelete bool
	toggling      bool // a completion update is in flight
	confirmed     bool // completion flag before the in-flight update
	changed       bool // the list must refresh on the way back
	errorMsg      string
	successMsg    string

	// View dimensions
	width  int
	height int
}

// NewDetailModel creates a detail view for item id.
func NewDetailModel(items *viewmodel.Items, ctx context.Context, id int) DetailModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	vp := viewport.New(40, 10) // Will be resized in WindowSizeMsg
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	return DetailModel{
		items:         items,
		ctx:           ctx,
		id:            id,
		keymap:        DefaultDetailKeyMap(),
		help:          NewHelpModel("Item", DefaultDetailKeyMap()),
		spinner:       sp,
		viewport:      vp,
		loading:       true,
		loadingAction: "Loading item...",
	}
}

// Init fetches the item
func (m DetailModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.WindowSize(),
		subscribe(m.ctx, m.items.Get(m.id), opGet, m.id),
	)
}

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeComponents()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pipeMsg[domain.Item]:
		if msg.result.IsLoading() {
			m.loading = true
			return m, msg.next
		}
		m.loading = false
		if msg.result.IsError() {
			m.errorMsg = msg.result.Message
			return m, nil
		}
		item := msg.result.Value
		m.item = &item
		m.updateViewportContent()
		return m, nil

	case pipeMsg[api.Ack]:
		return m.handleAck(msg)

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m DetailModel) handleAck(msg pipeMsg[api.Ack]) (tea.Model, tea.Cmd) {
	if msg.result.IsLoading() {
		return m, msg.next
	}
	m.loading = false

	switch msg.op {
	case opToggle:
		m.toggling = false
		if msg.result.IsError() {
			if m.item != nil {
				m.item.Completed = m.confirmed
			}
			m.errorMsg = msg.result.Message
			return m, nil
		}
		m.changed = true
		m.successMsg = ackNotice(msg.result.Value, "Item updated")
		return m, nil

	case opDelete:
		if msg.result.IsError() {
			m.errorMsg = msg.result.Message
			return m, nil
		}
		notice := ackNotice(msg.result.Value, "Item deleted")
		return m, func() tea.Msg { return backToListMsg{refresh: true, notice: notice} }
	}
	return m, nil
}

// resizeComponents calculates and sets component dimensions
func (m *DetailModel) resizeComponents() {
	leftWidth := m.leftWidth(m.width)

	rightWidth := m.width - leftWidth - 3 // 3 = gap between panels
	if rightWidth < 30 {
		rightWidth = 30
	}

	contentHeight := m.height - headerHeight - footerHeight - borderSize
	if contentHeight < 10 {
		contentHeight = 10
	}

	m.viewport.Width = rightWidth - borderSize - 2 // -2 for padding
	m.viewport.Height = contentHeight - 2          // panel title line + gap

	if m.item != nil {
		m.updateViewportContent()
	}
}

func (m DetailModel) leftWidth(width int) int {
	leftWidth := int(float64(width) * leftPanelRatio)
	if leftWidth < minLeftWidth {
		leftWidth = minLeftWidth
	}
	if leftWidth > maxLeftWidth {
		leftWidth = maxLeftWidth
	}
	return leftWidth
}

// handleKeyPress processes keyboard input
func (m DetailModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.confirmDelete {
		m.confirmDelete = false
		if (msg.String() == "y" || msg.String() == "Y") && m.item != nil {
			m.loading = true
			m.loadingAction = "Deleting..."
			return m, subscribe(m.ctx, m.items.Delete(m.item.ID), opDelete, m.item.ID)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Back):
		changed := m.changed
		return m, func() tea.Msg { return backToListMsg{refresh: changed} }
	case key.Matches(msg, m.keymap.ScrollDown):
		m.viewport.LineDown(1)
	case key.Matches(msg, m.keymap.ScrollUp):
		m.viewport.LineUp(1)
	case msg.String() == "ctrl+d":
		m.viewport.HalfViewDown()
	case msg.String() == "ctrl+u":
		m.viewport.HalfViewUp()
	case msg.String() == "g":
		m.viewport.GotoTop()
	case msg.String() == "G":
		m.viewport.GotoBottom()
	}

	if m.item == nil {
		return m, nil
	}
	m.errorMsg = ""
	m.successMsg = ""

	switch {
	case key.Matches(msg, m.keymap.Toggle):
		// one update at a time, so a failure restores what the server last accepted
		if m.toggling {
			return m, nil
		}
		m.toggling = true
		m.confirmed = m.item.Completed
		m.item.Completed = !m.item.Completed
		it := *m.item
		m.loading = true
		m.loadingAction = "Saving..."
		return m, subscribe(m.ctx,
			m.items.Update(it.ID, it.Title, it.Description, it.Status, it.Completed),
			opToggle, it.ID)
	case key.Matches(msg, m.keymap.Edit):
		it := *m.item
		return m, func() tea.Msg { return openManageMsg{item: &it} }
	case key.Matches(msg, m.keymap.Delete):
		m.confirmDelete = true
	case key.Matches(msg, m.keymap.OpenCover):
		if m.item.Cover == "" {
			m.errorMsg = "This item has no cover image"
		} else if err := openURL(m.item.Cover); err != nil {
			m.errorMsg = fmt.Sprintf("Open failed: %v", err)
		}
	case key.Matches(msg, m.keymap.OpenAuthor):
		if m.item.Author.Photo == "" {
			m.errorMsg = "The author has no photo"
		} else if err := openURL(m.item.Author.Photo); err != nil {
			m.errorMsg = fmt.Sprintf("Open failed: %v", err)
		}
	}

	return m, nil
}

// View renders the split-screen detail view
func (m DetailModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 100
	}
	if height == 0 {
		height = 30
	}

	leftWidth := m.leftWidth(width)
	rightWidth := width - leftWidth - 1 // 1 char gap

	contentHeight := height - headerHeight - footerHeight
	if contentHeight < 10 {
		contentHeight = 10
	}

	header := m.renderHeader(width)

	leftPanel := panelBorderStyle.
		Width(leftWidth - borderSize).
		Height(contentHeight - borderSize).
		Render(m.renderLeftPanel(leftWidth-borderSize, contentHeight-borderSize))

	rightPanel := focusedPanelBorderStyle.
		Width(rightWidth - borderSize).
		Height(contentHeight - borderSize).
		Render(m.renderRightPanel())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, " ", rightPanel)

	footer := m.renderFooter(width)

	return lipgloss.JoinVertical(lipgloss.Left, header, panels, footer)
}

// renderHeader renders the top help bar
func (m DetailModel) renderHeader(width int) string {
	if m.confirmDelete && m.item != nil {
		return warningStyle.Render(fmt.Sprintf("Delete %q? [y]es [n]o", m.item.Title))
	}
	return m.help.ShortView(width)
}

// renderFooter renders the bottom status bar
func (m DetailModel) renderFooter(width int) string {
	var left, right string

	if m.loading {
		left = m.spinner.View() + " " + m.loadingAction
	} else if m.successMsg != "" {
		left = SuccessStyle.Render("✓ " + m.successMsg)
	} else if m.errorMsg != "" {
		left = ErrorStyle.Render("✗ " + m.errorMsg)
	}

	if m.item != nil && m.viewport.TotalLineCount() > m.viewport.Height {
		if m.viewport.AtTop() {
			right = "TOP"
		} else if m.viewport.AtBottom() {
			right = "END"
		} else {
			right = fmt.Sprintf("%d%%", int(m.viewport.ScrollPercent()*100))
		}
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return left + strings.Repeat(" ", padding) + dimStyle.Render(right)
}

// renderLeftPanel renders the item metadata panel
func (m DetailModel) renderLeftPanel(width, height int) string {
	if m.item == nil {
		if m.errorMsg != "" && !m.loading {
			return ErrorStyle.Render(wordwrap.String(m.errorMsg, width-2))
		}
		return m.spinner.View() + " Loading..."
	}
	it := m.item

	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("Item #%d", it.ID)))
	b.WriteString("  ")
	b.WriteString(statusBadge(string(it.Status)))
	b.WriteString("\n\n")

	b.WriteString(detailTitleStyle.Render(wordwrap.String(it.Title, width-2)))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Completed: "))
	b.WriteString(checkbox(it.Completed))
	b.WriteString("\n")

	if it.Author.Name != "" {
		b.WriteString(labelStyle.Render("Reported by: "))
		b.WriteString(authorStyle.Render(it.Author.Name))
		b.WriteString("\n")
	}
	if it.CreatedAt != "" {
		b.WriteString(labelStyle.Render("Reported: "))
		b.WriteString(valueStyle.Render(formatTimeAgo(it.CreatedAt)))
		b.WriteString("\n")
	}
	if it.UpdatedAt != "" && it.UpdatedAt != it.CreatedAt {
		b.WriteString(labelStyle.Render("Updated: "))
		b.WriteString(valueStyle.Render(formatTimeAgo(it.UpdatedAt)))
		b.WriteString("\n")
	}
	if it.Cover != "" {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Cover: "))
		b.WriteString(dimStyle.Render("press o to open"))
		b.WriteString("\n")
	}

	return b.String()
}

// renderRightPanel renders the description viewport
func (m DetailModel) renderRightPanel() string {
	var b strings.Builder

	scrollHint := ""
	if m.item != nil && m.viewport.TotalLineCount() > m.viewport.Height {
		switch {
		case m.viewport.AtTop():
			scrollHint = " ↓"
		case m.viewport.AtBottom():
			scrollHint = " ↑"
		default:
			scrollHint = " ↕"
		}
	}
	b.WriteString(labelStyle.Render("Description"))
	b.WriteString(scrollIndicatorStyle.Render(scrollHint))
	b.WriteString("\n\n")

	if m.item == nil {
		return b.String()
	}
	if strings.TrimSpace(m.item.Description) == "" {
		b.WriteString(dimStyle.Render("No description"))
		return b.String()
	}
	b.WriteString(m.viewport.View())
	return b.String()
}

// updateViewportContent wraps the description to the viewport width
func (m *DetailModel) updateViewportContent() {
	if m.item == nil {
		return
	}
	wrapWidth := m.viewport.Width - 2
	if wrapWidth < 20 {
		wrapWidth = 20
	}
	m.viewport.SetContent(valueStyle.Render(wordwrap.String(m.item.Description, wrapWidth)))
}

// timestampLayouts are the formats the service has been seen to use.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02 15:04:05",
}

// formatTimeAgo converts a server timestamp to relative time
func formatTimeAgo(timestamp string) string {
	var t time.Time
	var err error
	for _, layout := range timestampLayouts {
		if t, err = time.Parse(layout, timestamp); err == nil {
			break
		}
	}
	if err != nil {
		if len(timestamp) >= 10 {
			return timestamp[:10]
		}
		return timestamp
	}

	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	case duration < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	case duration < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	case duration < 30*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(duration.Hours()/24/7))
	case duration < 365*24*time.Hour:
		return fmt.Sprintf("%dmo ago", int(duration.Hours()/24/30))
	default:
		return fmt.Sprintf("%dy ago", int(duration.Hours()/24/365))
	}
}
