package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

var helpBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("62")).
	Padding(1, 2).
	MarginTop(2)

// HelpModel renders a screen's key bindings, either as the one-line footer
// hint or as the boxed overlay behind '?'.
type HelpModel struct {
	bubble help.Model
	keys   help.KeyMap
	screen string
}

// NewHelpModel binds the help renderer to one screen's key map.
func NewHelpModel(screen string, keys help.KeyMap) HelpModel {
	return HelpModel{bubble: help.New(), keys: keys, screen: screen}
}

// View renders the overlay: the screen name over every binding.
func (m HelpModel) View(width int) string {
	// border and padding take 8 columns
	body := m.render(true, width-8)
	if m.screen != "" {
		body = TitleStyle.Render(m.screen+" keys") + "\n" + body
	}
	return helpBoxStyle.Render(body)
}

// ShortView renders the hint line used in headers and footers.
func (m HelpModel) ShortView(width int) string {
	return m.render(false, width)
}

func (m HelpModel) render(full bool, width int) string {
	m.bubble.ShowAll = full
	m.bubble.Width = width
	return m.bubble.View(m.keys)
}
