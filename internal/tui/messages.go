// Package tui provides Bubble Tea models for the interactive TUI.
package tui

import (
	"github.com/robby/lostfound/internal/auth"
	"github.com/robby/lostfound/internal/domain"
)

// ErrorMsg is emitted when an error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}

// LoggedInMsg is emitted once a session exists, at startup or after login.
type LoggedInMsg struct {
	Session auth.Session
}

// LoggedOutMsg is emitted after the session has been deleted.
type LoggedOutMsg struct{}

// Navigation messages between screens.
type (
	showLoginMsg    struct{ notice string }
	showRegisterMsg struct{}
	showProfileMsg  struct{}
	openDetailMsg   struct{ id int }
	openManageMsg   struct{ item *domain.Item } // nil item means create
	backToListMsg   struct {
		refresh bool
		notice  string
	}
)
