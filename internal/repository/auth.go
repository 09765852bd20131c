package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/robby/lostfound/internal/api"
	"github.com/robby/lostfound/internal/auth"
	"github.com/robby/lostfound/internal/domain"
	"github.com/robby/lostfound/internal/logging"
	"github.com/robby/lostfound/internal/result"
)

// AuthAPI is the part of the remote client the auth repository needs.
type AuthAPI interface {
	Register(ctx context.Context, name, email, password string) (api.Ack, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context) (domain.User, error)
}

var _ AuthAPI = (*api.Client)(nil)

// SessionStore persists the login session.
type SessionStore interface {
	Load() (auth.Session, error)
	Save(auth.Session) error
	Delete() error
}

var _ SessionStore = (*auth.SessionStore)(nil)

// Auth handles account registration and the login session.
type Auth struct {
	api      AuthAPI
	sessions SessionStore
	now      func() time.Time
}

// NewAuth creates an auth repository.
func NewAuth(client AuthAPI, sessions SessionStore) *Auth {
	return &Auth{api: client, sessions: sessions, now: time.Now}
}

// Register creates an account. It does not log in.
func (r *Auth) Register(name, email, password string) result.Stream[api.Ack] {
	return result.New(func(ctx context.Context) (api.Ack, error) {
		return r.api.Register(ctx, name, email, password)
	})
}

// Login exchanges credentials for a token and persists the session before
// reporting success. The profile is fetched best-effort; a failure there does
// not fail the login.
func (r *Auth) Login(email, password string) result.Stream[auth.Session] {
	return result.New(func(ctx context.Context) (auth.Session, error) {
		token, err := r.api.Login(ctx, email, password)
		if err != nil {
			return auth.Session{}, err
		}
		sess := auth.NewSession(token, r.now())
		sess.User.Email = email

		if err := r.sessions.Save(sess); err != nil {
			return auth.Session{}, fmt.Errorf("failed to save session: %w", err)
		}
		if user, err := r.api.Me(ctx); err == nil {
			sess.User = user
			if err := r.sessions.Save(sess); err != nil {
				logging.Warn("failed to save profile", "err", err)
			}
		} else {
			logging.Debug("profile lookup after login failed", "err", err)
		}
		return sess, nil
	})
}

// Me fetches the current user's profile.
func (r *Auth) Me() result.Stream[domain.User] {
	return result.New(func(ctx context.Context) (domain.User, error) {
		return r.api.Me(ctx)
	})
}

// Session returns the persisted session, or auth.ErrNotLoggedIn.
func (r *Auth) Session() (auth.Session, error) {
	sess, err := r.sessions.Load()
	if err != nil {
		return auth.Session{}, err
	}
	if !sess.LoggedIn(r.now()) {
		return auth.Session{}, fmt.Errorf("%w: session expired", auth.ErrNotLoggedIn)
	}
	return sess, nil
}

// Logout forgets the persisted session.
func (r *Auth) Logout() error {
	if err := r.sessions.Delete(); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}
