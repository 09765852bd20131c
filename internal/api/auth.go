package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/robby/lostfound/internal/domain"
)

// ErrEmptyToken is returned when login succeeds but the payload carries no token.
var ErrEmptyToken = errors.New("login response contained no token")

// Register creates a new account.
func (c *Client) Register(ctx context.Context, name, email, password string) (Ack, error) {
	form := url.Values{}
	form.Set("name", name)
	form.Set("email", email)
	form.Set("password", password)

	var resp Ack
	if err := c.do(ctx, http.MethodPost, "auth/register", nil, form, &resp); err != nil {
		return Ack{}, fmt.Errorf("failed to register: %w", err)
	}
	return resp, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	var resp envelope[struct {
		Token string `json:"token"`
	}]
	if err := c.do(ctx, http.MethodPost, "auth/login", nil, form, &resp); err != nil {
		return "", fmt.Errorf("failed to login: %w", err)
	}
	if resp.Data.Token == "" {
		return "", ErrEmptyToken
	}
	return resp.Data.Token, nil
}

// Me returns the profile of the user owning the current token.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var resp envelope[struct {
		User wireUser `json:"user"`
	}]
	if err := c.do(ctx, http.MethodGet, "users/me", nil, nil, &resp); err != nil {
		return domain.User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return resp.Data.User.toDomain(), nil
}
