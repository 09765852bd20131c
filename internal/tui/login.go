package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/robby/lostfound/internal/api"
	"github.com/robby/lostfound/internal/auth"
	"github.com/robby/lostfound/internal/viewmodel"
)

// inputForm is a column of text inputs with tab focus, shared by the auth screens.
type inputForm struct {
	inputs []textinput.Model
	labels []string
	focus  int
}

func newInputForm(labels []string, placeholders []string, secret map[int]bool) inputForm {
	inputs := make([]textinput.Model, len(labels))
	for i := range labels {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.Width = 40
		ti.CharLimit = 255
		if secret[i] {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}
	inputs[0].Focus()
	return inputForm{inputs: inputs, labels: labels}
}

func (f *inputForm) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
	return textinput.Blink
}

func (f *inputForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f inputForm) value(i int) string {
	return f.inputs[i].Value()
}

func (f inputForm) last() bool {
	return f.focus == len(f.inputs)-1
}

func (f inputForm) view() string {
	var b strings.Builder
	for i, in := range f.inputs {
		if i == f.focus {
			b.WriteString(SelectedItemStyle.Render("> " + f.labels[i]))
		} else {
			b.WriteString(labelStyle.Render("  " + f.labels[i]))
		}
		b.WriteString("\n  ")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	return b.String()
}

// LoginModel asks for credentials and starts a session.
type LoginModel struct {
	auth *viewmodel.Auth
	ctx  context.Context

	keymap  FormKeyMap
	spinner spinner.Model
	form    inputForm

	busy     bool
	errorMsg string
	notice   string
}

// NewLoginModel creates the login screen. notice is shown above the form.
func NewLoginModel(vm *viewmodel.Auth, ctx context.Context, notice string) LoginModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return LoginModel{
		auth:    vm,
		ctx:     ctx,
		keymap:  DefaultFormKeyMap(),
		spinner: sp,
		form: newInputForm(
			[]string{"Email", "Password"},
			[]string{"you@example.com", "password"},
			map[int]bool{1: true},
		),
		notice: notice,
	}
}

// Init initializes the model.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pipeMsg[auth.Session]:
		if msg.result.IsLoading() {
			m.busy = true
			return m, msg.next
		}
		m.busy = false
		if msg.result.IsError() {
			m.errorMsg = msg.result.Message
			return m, nil
		}
		sess := msg.result.Value
		return m, func() tea.Msg { return LoggedInMsg{Session: sess} }

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keymap.Cancel):
			return m, func() tea.Msg { return QuitMsg{} }
		case msg.String() == "ctrl+r":
			return m, func() tea.Msg { return showRegisterMsg{} }
		case key.Matches(msg, m.keymap.Next):
			return m, m.form.setFocus(m.form.focus + 1)
		case key.Matches(msg, m.keymap.Prev):
			return m, m.form.setFocus(m.form.focus - 1)
		case key.Matches(msg, m.keymap.Submit), msg.String() == "enter" && m.form.last():
			return m.submit()
		case msg.String() == "enter":
			return m, m.form.setFocus(m.form.focus + 1)
		}
	}

	cmd := m.form.update(msg)
	return m, cmd
}

func (m LoginModel) submit() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(m.form.value(0))
	password := m.form.value(1)
	if err := validateLogin(email, password); err != nil {
		m.errorMsg = err.Error()
		return m, nil
	}
	m.errorMsg = ""
	m.notice = ""
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, subscribe(m.ctx, m.auth.Login(email, password), opLogin, 0))
}

// View renders the model.
func (m LoginModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Lost & Found: sign in"))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(SuccessStyle.Render(m.notice))
		b.WriteString("\n\n")
	}
	b.WriteString(m.form.view())
	switch {
	case m.busy:
		b.WriteString(m.spinner.View() + " Signing in...")
	case m.errorMsg != "":
		b.WriteString(ErrorStyle.Render("✗ " + m.errorMsg))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("enter: next/sign in • tab: next field • ctrl+r: create an account • esc: quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// RegisterModel creates an account.
type RegisterModel struct {
	auth *viewmodel.Auth
	ctx  context.Context

	keymap  FormKeyMap
	spinner spinner.Model
	form    inputForm

	busy     bool
	errorMsg string
}

// NewRegisterModel creates the registration screen.
func NewRegisterModel(vm *viewmodel.Auth, ctx context.Context) RegisterModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return RegisterModel{
		auth:    vm,
		ctx:     ctx,
		keymap:  DefaultFormKeyMap(),
		spinner: sp,
		form: newInputForm(
			[]string{"Name", "Email", "Password", "Confirm password"},
			[]string{"Your name", "you@example.com", "at least 6 characters", "repeat password"},
			map[int]bool{2: true, 3: true},
		),
	}
}

// Init initializes the model.
func (m RegisterModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m RegisterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pipeMsg[api.Ack]:
		if msg.result.IsLoading() {
			m.busy = true
			return m, msg.next
		}
		m.busy = false
		if msg.result.IsError() {
			m.errorMsg = msg.result.Message
			return m, nil
		}
		notice := ackNotice(msg.result.Value, "Account created, please sign in")
		return m, func() tea.Msg { return showLoginMsg{notice: notice} }

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keymap.Cancel):
			return m, func() tea.Msg { return showLoginMsg{} }
		case key.Matches(msg, m.keymap.Next):
			return m, m.form.setFocus(m.form.focus + 1)
		case key.Matches(msg, m.keymap.Prev):
			return m, m.form.setFocus(m.form.focus - 1)
		case key.Matches(msg, m.keymap.Submit), msg.String() == "enter" && m.form.last():
			return m.submit()
		case msg.String() == "enter":
			return m, m.form.setFocus(m.form.focus + 1)
		}
	}

	cmd := m.form.update(msg)
	return m, cmd
}

func (m RegisterModel) submit() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.form.value(0))
	email := strings.TrimSpace(m.form.value(1))
	password := m.form.value(2)
	if err := validateRegister(name, email, password, m.form.value(3)); err != nil {
		m.errorMsg = err.Error()
		return m, nil
	}
	m.errorMsg = ""
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, subscribe(m.ctx, m.auth.Register(name, email, password), opRegister, 0))
}

// View renders the model.
func (m RegisterModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Lost & Found: create an account"))
	b.WriteString("\n")
	b.WriteString(m.form.view())
	switch {
	case m.busy:
		b.WriteString(m.spinner.View() + " Creating account...")
	case m.errorMsg != "":
		b.WriteString(ErrorStyle.Render("✗ " + m.errorMsg))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("enter: next/submit • tab: next field • esc: back to sign in"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
