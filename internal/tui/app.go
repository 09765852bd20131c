package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/lostfound/internal/auth"
	"github.com/robby/lostfound/internal/logging"
	"github.com/robby/lostfound/internal/store"
	"github.com/robby/lostfound/internal/viewmodel"
)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenLoading AppScreen = iota
	ScreenLogin
	ScreenRegister
	ScreenList
	ScreenDetail
	ScreenManage
	ScreenProfile
)

// AppModel is the root Bubble Tea model that manages screen transitions.
// It routes login -> item list -> detail/form/profile and back.
type AppModel struct {
	// Dependencies
	items *viewmodel.Items
	auth  *viewmodel.Auth
	store *store.Store
	ctx   context.Context

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model
	err           error
	loadingMsg    string
	session       *auth.Session

	// Cached list to preserve selection and filter across screen transitions
	listModel *ListModel
}

// NewAppModel creates the app. The view-models are built once by the caller
// and shared by every screen.
func NewAppModel(ctx context.Context, items *viewmodel.Items, authVM *viewmodel.Auth, s *store.Store) AppModel {
	return AppModel{
		items:         items,
		auth:          authVM,
		store:         s,
		ctx:           ctx,
		currentScreen: ScreenLoading,
		loadingMsg:    "Checking session...",
	}
}

// Init initializes the app model.
func (m AppModel) Init() tea.Cmd {
	return m.checkSession()
}

// Screen reports the active screen.
func (m AppModel) Screen() AppScreen {
	return m.currentScreen
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		return m, tea.Quit

	case LoggedInMsg:
		sess := msg.Session
		m.session = &sess
		logging.Info("session ready", "user", sess.User.Email)
		list := NewListModel(m.items, m.store, m.ctx, sess.User.Name)
		m.listModel = &list
		return m.show(ScreenList, list)

	case showLoginMsg:
		return m.show(ScreenLogin, NewLoginModel(m.auth, m.ctx, msg.notice))

	case showRegisterMsg:
		return m.show(ScreenRegister, NewRegisterModel(m.auth, m.ctx))

	case LoggedOutMsg:
		m.session = nil
		m.listModel = nil
		m.store.Load(nil)
		m.store.Filter("")
		logging.Info("logged out")
		return m.show(ScreenLogin, NewLoginModel(m.auth, m.ctx, "You have been logged out"))

	case openDetailMsg:
		return m.show(ScreenDetail, NewDetailModel(m.items, m.ctx, msg.id))

	case openManageMsg:
		return m.show(ScreenManage, NewManageModel(m.items, m.ctx, msg.item))

	case showProfileMsg:
		var sess auth.Session
		if m.session != nil {
			sess = *m.session
		}
		return m.show(ScreenProfile, NewProfileModel(m.auth, m.ctx, sess))

	case backToListMsg:
		if m.listModel == nil {
			return m, func() tea.Msg { return showLoginMsg{} }
		}
		list := *m.listModel
		list.notice = msg.notice
		list.errorToast = ""
		m.currentScreen = ScreenList
		m.listModel = &list
		m.currentModel = list
		cmds := []tea.Cmd{tea.WindowSize(), list.spinner.Tick}
		if msg.refresh {
			cmds = append(cmds, list.refresh())
		}
		return m, tea.Batch(cmds...)
	}

	// Delegate to current screen's model
	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		// Keep listModel in sync when on list screen
		if m.currentScreen == ScreenList {
			if lm, ok := m.currentModel.(ListModel); ok {
				m.listModel = &lm
			}
		}
		return m, cmd
	}

	return m, nil
}

func (m AppModel) show(screen AppScreen, model tea.Model) (tea.Model, tea.Cmd) {
	m.currentScreen = screen
	m.currentModel = model
	m.err = nil
	return m, model.Init()
}

// View renders the current screen.
func (m AppModel) View() string {
	// Show error if present
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress Ctrl+C to quit", m.err))
	}

	// Delegate to current screen
	if m.currentModel != nil {
		return m.currentModel.View()
	}

	// Show loading state
	return m.loadingMsg + "\n\nPress Ctrl+C to quit"
}

// checkSession resumes a saved session or asks the user to sign in.
func (m AppModel) checkSession() tea.Cmd {
	vm := m.auth
	return func() tea.Msg {
		sess, err := vm.Session()
		if err != nil {
			if !errors.Is(err, auth.ErrNotLoggedIn) {
				logging.Warn("failed to read session", "err", err)
			}
			return showLoginMsg{}
		}
		return LoggedInMsg{Session: sess}
	}
}
