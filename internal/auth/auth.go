// Package auth provides bearer-token lookup and session persistence.
// It implements a simple interface with multiple providers following the
// "deep modules" principle - simple interface, complex implementation hidden.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// EnvToken is the environment variable consulted before the session file.
const EnvToken = "LOSTFOUND_TOKEN"

// ErrNotLoggedIn indicates there is no usable token anywhere.
var ErrNotLoggedIn = errors.New("not logged in")

// TokenProvider defines the interface for obtaining a bearer token.
// Implementations may use different sources (environment, session file, etc).
type TokenProvider interface {
	GetToken() (string, error)
}

// EnvProvider obtains tokens from the LOSTFOUND_TOKEN environment variable.
// It lets scripts run without touching the session file.
type EnvProvider struct{}

// GetToken reads LOSTFOUND_TOKEN, stripping an optional "Bearer " prefix.
func (e *EnvProvider) GetToken() (string, error) {
	token := stripBearer(strings.TrimSpace(os.Getenv(EnvToken)))
	if token == "" {
		return "", fmt.Errorf("%s environment variable not set or empty", EnvToken)
	}
	return token, nil
}

// SessionProvider obtains tokens from the persisted login session.
type SessionProvider struct {
	Store *SessionStore
}

// GetToken loads the session and returns its token if it has not expired.
func (p *SessionProvider) GetToken() (string, error) {
	if p.Store == nil {
		return "", ErrNotLoggedIn
	}
	sess, err := p.Store.Load()
	if err != nil {
		return "", err
	}
	if !sess.LoggedIn(p.Store.now()) {
		return "", fmt.Errorf("%w: session expired", ErrNotLoggedIn)
	}
	return sess.Token, nil
}

// ChainProvider tries each provider in order and returns the first token found.
type ChainProvider []TokenProvider

// GetToken walks the chain. When every provider fails the error lists each cause.
func (c ChainProvider) GetToken() (string, error) {
	var errs []error
	for _, p := range c {
		token, err := p.GetToken()
		if err == nil {
			return token, nil
		}
		errs = append(errs, err)
	}
	return "", fmt.Errorf("%w (%v)", ErrNotLoggedIn, errors.Join(errs...))
}

// DefaultProvider prefers LOSTFOUND_TOKEN and falls back to the session file.
func DefaultProvider(store *SessionStore) TokenProvider {
	return ChainProvider{&EnvProvider{}, &SessionProvider{Store: store}}
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
