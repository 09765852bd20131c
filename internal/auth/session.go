package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/robby/lostfound/internal/domain"
)

// Session is the logged-in state persisted between runs.
type Session struct {
	Token     string
	User      domain.User
	ExpiresAt *time.Time // from the token's exp claim, nil when unknown
	CreatedAt time.Time
}

// LoggedIn reports whether the session holds a token that has not expired at now.
func (s Session) LoggedIn(now time.Time) bool {
	if strings.TrimSpace(s.Token) == "" {
		return false
	}
	return s.ExpiresAt == nil || now.Before(*s.ExpiresAt)
}

// NewSession builds a session for token, reading the expiry from the token when possible.
func NewSession(token string, now time.Time) Session {
	token = stripBearer(strings.TrimSpace(token))
	sess := Session{Token: token, CreatedAt: now}
	if exp, err := TokenExpiry(token); err == nil {
		sess.ExpiresAt = exp
	}
	return sess
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// The client never holds the signing key; the expiry is only used to skip
// requests that would certainly be rejected.
func TokenExpiry(token string) (*time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("read exp claim: %w", err)
	}
	if exp == nil {
		return nil, nil
	}
	t := exp.Time
	return &t, nil
}

// sessionFile is the on-disk JSON shape.
type sessionFile struct {
	Token     string     `json:"token"`
	UserID    int        `json:"user_id,omitempty"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email,omitempty"`
	Photo     string     `json:"photo,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// SessionStore persists a Session as a JSON file readable only by the owner.
type SessionStore struct {
	path  string
	clock func() time.Time
}

// NewSessionStore creates a store backed by path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path, clock: time.Now}
}

// Path returns the file the store reads and writes.
func (s *SessionStore) Path() string {
	return s.path
}

func (s *SessionStore) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock()
}

// Load reads the session. A missing file yields ErrNotLoggedIn.
func (s *SessionStore) Load() (Session, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, ErrNotLoggedIn
		}
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	var f sessionFile
	if err := json.Unmarshal(b, &f); err != nil {
		return Session{}, fmt.Errorf("parse session: %w", err)
	}
	return Session{
		Token: stripBearer(f.Token),
		User: domain.User{
			ID:    f.UserID,
			Name:  f.Name,
			Email: f.Email,
			Photo: f.Photo,
		},
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
	}, nil
}

// Save writes sess with 0600 permissions, creating the directory with 0700.
func (s *SessionStore) Save(sess Session) error {
	if strings.TrimSpace(sess.Token) == "" {
		return fmt.Errorf("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	f := sessionFile{
		Token:     sess.Token,
		UserID:    sess.User.ID,
		Name:      sess.User.Name,
		Email:     sess.User.Email,
		Photo:     sess.User.Photo,
		ExpiresAt: sess.ExpiresAt,
		CreatedAt: sess.CreatedAt,
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Delete removes the session file. Deleting a missing session is not an error.
func (s *SessionStore) Delete() error {
	if err := os.Remove(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
