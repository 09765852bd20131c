package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/lostfound/internal/api"
	"github.com/robby/lostfound/internal/auth"
	"github.com/robby/lostfound/internal/domain"
	"github.com/robby/lostfound/internal/repository"
	"github.com/robby/lostfound/internal/viewmodel"
)

// fakeItems implements repository.ItemAPI in memory.
type fakeItems struct {
	mu        sync.Mutex
	items     []domain.Item
	updateErr error
	failIDs   map[int]error // per-item update failures
	updates   []domain.Item
	creates   int
	deletes   []int
	filters   []*bool
}

func (f *fakeItems) ListItems(ctx context.Context, completed *bool) ([]domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, completed)
	var out []domain.Item
	for _, it := range f.items {
		if completed == nil || it.Completed == *completed {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItems) GetItem(ctx context.Context, id int) (domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ID == id {
			return it, nil
		}
	}
	return domain.Item{}, fmt.Errorf("failed to get item %d: %w", id,
		&api.APIError{StatusCode: 404, Body: []byte(`{"success":false,"message":"Item not found"}`)})
}

func (f *fakeItems) CreateItem(ctx context.Context, title, description string, status domain.Status) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	id := 100 + f.creates
	f.items = append(f.items, domain.Item{ID: id, Title: title, Description: description, Status: status})
	return id, nil
}

func (f *fakeItems) UpdateItem(ctx context.Context, id int, title, description string, status domain.Status, completed bool) (api.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, domain.Item{ID: id, Title: title, Description: description, Status: status, Completed: completed})
	if f.updateErr != nil {
		return api.Ack{}, f.updateErr
	}
	if err := f.failIDs[id]; err != nil {
		return api.Ack{}, err
	}
	return api.Ack{Success: true, Message: "Item updated"}, nil
}

func (f *fakeItems) DeleteItem(ctx context.Context, id int) (api.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return api.Ack{Success: true, Message: "Item deleted"}, nil
}

// fakeAccounts implements repository.AuthAPI with a single known account.
type fakeAccounts struct {
	email    string
	password string
	user     domain.User
}

func (f *fakeAccounts) Register(ctx context.Context, name, email, password string) (api.Ack, error) {
	if email == f.email {
		return api.Ack{}, &api.APIError{StatusCode: 409, Body: []byte(`{"success":false,"message":"Email already registered"}`)}
	}
	return api.Ack{Success: true, Message: "Registration successful"}, nil
}

func (f *fakeAccounts) Login(ctx context.Context, email, password string) (string, error) {
	if email != f.email || password != f.password {
		return "", &api.APIError{StatusCode: 401, Body: []byte(`{"success":false,"message":"Invalid credentials"}`)}
	}
	return "opaque-token", nil
}

func (f *fakeAccounts) Me(ctx context.Context) (domain.User, error) {
	if f.user.ID == 0 {
		return domain.User{}, errors.New("no profile")
	}
	return f.user, nil
}

func newAuthVM(t *testing.T, f *fakeAccounts) (*viewmodel.Auth, *auth.SessionStore) {
	t.Helper()
	sessions := auth.NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	return viewmodel.NewAuth(repository.NewAuth(f, sessions)), sessions
}

func testItems() []domain.Item {
	return []domain.Item{
		{ID: 1, Title: "Wallet", Description: "brown leather", Status: domain.StatusLost},
		{ID: 2, Title: "Phone", Description: "black case", Status: domain.StatusFound},
		{ID: 3, Title: "Headphones", Description: "wireless", Status: domain.StatusLost, Completed: true},
	}
}

func newItemsVM(f *fakeItems) *viewmodel.Items {
	return viewmodel.NewItems(repository.NewItems(f))
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func typeText(t *testing.T, m tea.Model, text string) tea.Model {
	t.Helper()
	for _, r := range text {
		m, _ = m.Update(keyRune(r))
	}
	return m
}

// pump runs cmd, feeds every result-stream message back into m until the
// streams finish, and returns the final model plus any other messages seen.
// Timer-driven commands are never started, so it cannot block on ticks.
func pump(t *testing.T, m tea.Model, cmd tea.Cmd) (tea.Model, []tea.Msg) {
	t.Helper()
	var others []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		switch msg := msg.(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case pipeMsg[[]domain.Item], pipeMsg[domain.Item], pipeMsg[api.Ack], pipeMsg[int],
			pipeMsg[auth.Session], pipeMsg[domain.User]:
			var next tea.Cmd
			m, next = m.Update(msg)
			queue = append(queue, next)
		default:
			others = append(others, msg)
		}
	}
	return m, others
}
