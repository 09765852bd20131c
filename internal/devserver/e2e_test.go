package devserver_test

import (
	"context"
	"io"
	"net"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/robby/lostfound/internal/api"
	"github.com/robby/lostfound/internal/auth"
	"github.com/robby/lostfound/internal/devserver"
	"github.com/robby/lostfound/internal/domain"
	"github.com/robby/lostfound/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// startServer runs a dev server on a loopback port and returns its API base URL.
func startServer(t *testing.T) string {
	t.Helper()
	srv, err := devserver.New(devserver.Config{
		DSN:        filepath.Join(t.TempDir(), "e2e.db"),
		Secret:     "e2e-secret",
		BcryptCost: bcrypt.MinCost,
		Logger:     log.New(io.Discard),
	})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return "http://" + ln.Addr().String() + devserver.APIPrefix
}

func TestClientAgainstDevServer(t *testing.T) {
	ctx := context.Background()
	base := startServer(t)

	sessions := auth.NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	client, err := api.New(api.Options{
		BaseURL: base,
		Tokens:  &auth.SessionProvider{Store: sessions},
		Logger:  log.New(io.Discard),
	})
	require.NoError(t, err)

	authRepo := repository.NewAuth(client, sessions)
	items := repository.NewItems(client)

	reg := authRepo.Register("Robby", "robby@example.com", "secret1").Await(ctx)
	require.True(t, reg.IsSuccess(), reg.Message)
	assert.Equal(t, "Registration successful", reg.Value.Message)

	// signed out: the server answers 401 and the message comes through
	states := items.List(nil).Collect(ctx)
	require.Len(t, states, 2)
	assert.True(t, states[0].IsLoading())
	assert.True(t, states[1].IsError())
	assert.Equal(t, "Authorization header is required", states[1].Message)

	login := authRepo.Login("robby@example.com", "secret1").Await(ctx)
	require.True(t, login.IsSuccess(), login.Message)
	sess := login.Value
	assert.NotEmpty(t, sess.Token)
	require.NotNil(t, sess.ExpiresAt, "dev server tokens carry an expiry")
	assert.Equal(t, "Robby", sess.User.Name)

	created := items.Create("Wallet", "brown leather", domain.StatusLost).Await(ctx)
	require.True(t, created.IsSuccess(), created.Message)
	id := created.Value
	assert.NotZero(t, id)

	list := items.List(nil).Await(ctx)
	require.True(t, list.IsSuccess(), list.Message)
	require.Len(t, list.Value, 1)
	assert.Equal(t, "Wallet", list.Value[0].Title)
	assert.Equal(t, "Robby", list.Value[0].Author.Name)
	assert.False(t, list.Value[0].Completed)

	updated := items.Update(id, "Wallet", "brown leather", domain.StatusLost, true).Await(ctx)
	require.True(t, updated.IsSuccess(), updated.Message)

	done := true
	list = items.List(&done).Await(ctx)
	require.True(t, list.IsSuccess(), list.Message)
	require.Len(t, list.Value, 1)
	assert.True(t, list.Value[0].Completed)

	pending := false
	list = items.List(&pending).Await(ctx)
	require.True(t, list.IsSuccess(), list.Message)
	assert.Empty(t, list.Value)

	deleted := items.Delete(id).Await(ctx)
	require.True(t, deleted.IsSuccess(), deleted.Message)
	assert.Equal(t, "Item deleted", deleted.Value.Message)

	gone := items.Get(id).Await(ctx)
	assert.True(t, gone.IsError())
	assert.Equal(t, "Item not found", gone.Message)

	require.NoError(t, authRepo.Logout())
	_, err = sessions.Load()
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
}
