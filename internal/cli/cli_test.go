package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/robby/lostfound/internal/auth"
	"github.com/robby/lostfound/internal/config"
	"github.com/robby/lostfound/internal/devserver"
	"github.com/robby/lostfound/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// harness runs commands against a dev server with an isolated config and session.
type harness struct {
	t          *testing.T
	configPath string
	dir        string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(auth.EnvToken, "")
	t.Setenv(config.EnvBaseURL, "")

	dir := t.TempDir()
	srv, err := devserver.New(devserver.Config{
		DSN:        filepath.Join(dir, "dev.db"),
		Secret:     "cli-secret",
		BcryptCost: bcrypt.MinCost,
		Logger:     log.New(io.Discard),
	})
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	configPath := filepath.Join(dir, "config.toml")
	contents := fmt.Sprintf(`base_url = "http://%s%s"
session_path = %q
log_file = %q
log_level = "debug"
`, ln.Addr().String(), devserver.APIPrefix, filepath.Join(dir, "session.json"), filepath.Join(dir, "lostfound.log"))
	require.NoError(t, os.WriteFile(configPath, []byte(contents), 0o600))

	return &harness{t: t, configPath: configPath, dir: dir}
}

func (h *harness) runWithInput(input string, args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(Options{In: strings.NewReader(input), Out: &out, Err: &out})
	cmd.SetArgs(append([]string{"--config", h.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	return h.runWithInput("", args...)
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func TestAccountCommands(t *testing.T) {
	h := newHarness(t)

	out, err := h.runWithInput("secret1\n", "register", "--name", "Robby", "--email", "robby@example.com")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Registration successful")

	_, err = h.run("register", "--name", "Robby", "--email", "robby@example.com", "--password", "secret1")
	require.Error(t, err)
	assert.Equal(t, "Email already registered", err.Error())

	_, err = h.run("whoami")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)

	_, err = h.run("login", "--email", "robby@example.com", "--password", "nope-nope")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())

	out = h.mustRun("login", "--email", "robby@example.com", "--password", "secret1")
	assert.Contains(t, out, "Logged in as Robby")
	assert.Contains(t, out, "Session expires")
	assert.FileExists(t, filepath.Join(h.dir, "session.json"))

	out = h.mustRun("whoami")
	assert.Contains(t, out, "Robby <robby@example.com>")

	out = h.mustRun("logout")
	assert.Contains(t, out, "Logged out")
	assert.NoFileExists(t, filepath.Join(h.dir, "session.json"))

	_, err = h.run("whoami")
	assert.Error(t, err)
}

func TestItemCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("register", "--name", "Robby", "--email", "robby@example.com", "--password", "secret1")
	h.mustRun("login", "--email", "robby@example.com", "--password", "secret1")

	out := h.mustRun("list")
	assert.Contains(t, out, "No items.")

	out = h.mustRun("add", "--title", "Wallet", "--description", "brown leather", "--status", "lost")
	assert.Contains(t, out, "Reported item #1")
	out = h.mustRun("add", "--title", "Phone", "--description", "black case", "--status", "FOUND")
	assert.Contains(t, out, "Reported item #2")

	_, err := h.run("add", "--title", "Keys", "--description", "x", "--status", "stolen")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status must be lost or found")

	out = h.mustRun("list")
	assert.Contains(t, out, "Wallet")
	assert.Contains(t, out, "Phone")
	assert.Contains(t, out, "Robby")

	out = h.mustRun("list", "--query", "WAL")
	assert.Contains(t, out, "Wallet")
	assert.NotContains(t, out, "Phone")

	out = h.mustRun("done", "1", "#2")
	assert.Contains(t, out, "#1: Item updated")
	assert.Contains(t, out, "#2: Item updated")

	out = h.mustRun("list", "--pending")
	assert.Contains(t, out, "No items.")

	h.mustRun("undone", "2")
	out = h.mustRun("list", "--completed")
	assert.Contains(t, out, "Wallet")
	assert.NotContains(t, out, "Phone")

	out, err = h.run("done", "1", "99")
	require.Error(t, err)
	assert.Equal(t, "1 of 2 items failed", err.Error())
	assert.Contains(t, out, "#1: already done")
	assert.Contains(t, out, "#99: Item not found")

	out = h.mustRun("edit", "1", "--title", "Black wallet", "--completed=false")
	assert.Contains(t, out, "#1: Item updated")

	out = h.mustRun("show", "1")
	assert.Contains(t, out, "#1 [ ] Black wallet")
	assert.Contains(t, out, "Status:   lost")
	assert.Contains(t, out, "brown leather")

	_, err = h.run("edit", "1", "--title", "  ")
	require.Error(t, err)
	assert.Equal(t, "title is required", err.Error())

	out = h.mustRun("rm", "1", "2")
	assert.Contains(t, out, "#1: Item deleted")
	assert.Contains(t, out, "#2: Item deleted")

	_, err = h.run("show", "1")
	require.Error(t, err)
	assert.Equal(t, "Item not found", err.Error())
}

func TestListFlagsConflict(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("list", "--completed", "--pending")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestBaseURLFlagOverridesConfig(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("--base-url", "http://127.0.0.1:1/api/v1", "list")
	require.Error(t, err)
	assert.Equal(t, "Something went wrong, please try again", err.Error())
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1", "#22", "300"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 22, 300}, ids)

	for _, bad := range []string{"0", "-3", "abc", ""} {
		_, err := parseIDs([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestRenderItem(t *testing.T) {
	var buf bytes.Buffer
	renderItem(&buf, domain.Item{
		ID:          7,
		Title:       "Scarf",
		Description: strings.Repeat("wool ", 30),
		Status:      domain.StatusFound,
		Completed:   true,
		Author:      domain.Author{Name: "Robby"},
	})
	out := buf.String()
	assert.Contains(t, out, "#7 [x] Scarf")
	assert.Contains(t, out, "Reporter: Robby")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), wrapWidth+1)
	}
}
