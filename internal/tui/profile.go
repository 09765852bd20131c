package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/robby/lostfound/internal/auth"
	"github.com/robby/lostfound/internal/domain"
	"github.com/robby/lostfound/internal/viewmodel"
)

// ProfileModel shows the signed-in user and offers logout.
type ProfileModel struct {
	auth *viewmodel.Auth
	ctx  context.Context

	spinner spinner.Model
	session auth.Session
	user    *domain.User

	loading       bool
	confirmLogout bool
	errorMsg      string
}

// NewProfileModel creates the profile screen for sess.
func NewProfileModel(vm *viewmodel.Auth, ctx context.Context, sess auth.Session) ProfileModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ProfileModel{
		auth:    vm,
		ctx:     ctx,
		spinner: sp,
		session: sess,
		loading: true,
	}
}

// Init fetches the current profile.
func (m ProfileModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, subscribe(m.ctx, m.auth.Me(), opMe, 0))
}

// Update handles messages.
func (m ProfileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pipeMsg[domain.User]:
		if msg.result.IsLoading() {
			m.loading = true
			return m, msg.next
		}
		m.loading = false
		if msg.result.IsError() {
			m.errorMsg = msg.result.Message
			return m, nil
		}
		u := msg.result.Value
		m.user = &u
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.confirmLogout {
			m.confirmLogout = false
			if msg.String() == "y" || msg.String() == "Y" {
				return m, m.logout()
			}
			return m, nil
		}
		switch msg.String() {
		case "esc", "q":
			return m, func() tea.Msg { return backToListMsg{} }
		case "L":
			m.confirmLogout = true
		case "o":
			if photo := m.photo(); photo != "" {
				if err := openURL(photo); err != nil {
					m.errorMsg = fmt.Sprintf("Open failed: %v", err)
				}
			} else {
				m.errorMsg = "No profile photo"
			}
		}
	}
	return m, nil
}

func (m ProfileModel) logout() tea.Cmd {
	vm := m.auth
	return func() tea.Msg {
		if err := vm.Logout(); err != nil {
			return ErrorMsg{Err: err}
		}
		return LoggedOutMsg{}
	}
}

func (m ProfileModel) photo() string {
	if m.user != nil {
		return m.user.Photo
	}
	return m.session.User.Photo
}

// View renders the model.
func (m ProfileModel) View() string {
	user := m.session.User
	if m.user != nil {
		user = *m.user
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Profile"))
	b.WriteString("\n")

	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", label)))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("Name", user.Name)
	row("Email", user.Email)
	if user.ID > 0 {
		row("User ID", fmt.Sprintf("%d", user.ID))
	}
	row("Joined", user.CreatedAt)
	if m.session.ExpiresAt != nil {
		row("Session", "expires "+m.session.ExpiresAt.Local().Format(time.RFC1123))
	}

	b.WriteString("\n")
	switch {
	case m.confirmLogout:
		b.WriteString(warningStyle.Render("Log out? [y]es [n]o"))
	case m.loading:
		b.WriteString(m.spinner.View() + " Refreshing profile...")
	case m.errorMsg != "":
		b.WriteString(ErrorStyle.Render("✗ " + m.errorMsg))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("o: open photo • L: log out • esc: back"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
