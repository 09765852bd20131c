package tui

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/robby/lostfound/internal/domain"
)

// ErrValidation marks input rejected before any request is made.
var ErrValidation = errors.New("invalid input")

func invalid(msg string) error {
	return &validationError{msg: msg}
}

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }
func (e *validationError) Unwrap() error { return ErrValidation }

// validateItemForm checks the fields required to create or update an item.
func validateItemForm(title, description string, status domain.Status) error {
	if strings.TrimSpace(title) == "" {
		return invalid("Title is required")
	}
	if strings.TrimSpace(description) == "" {
		return invalid("Description is required")
	}
	if _, ok := domain.ParseStatus(string(status)); !ok {
		return invalid("Status must be lost or found")
	}
	return nil
}

// validateLogin checks the login form.
func validateLogin(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return invalid("Password is required")
	}
	return nil
}

// validateRegister checks the registration form.
func validateRegister(name, email, password, confirm string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("Name is required")
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if len(password) < 6 {
		return invalid("Password must be at least 6 characters")
	}
	if password != confirm {
		return invalid("Passwords do not match")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("Email is not valid")
	}
	return nil
}
