package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/lostfound/internal/api"
	"github.com/robby/lostfound/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateItemForm(t *testing.T) {
	tests := []struct {
		name        string
		title, desc string
		status      domain.Status
		wantErr     string
	}{
		{"valid", "Wallet", "brown", domain.StatusLost, ""},
		{"blank title", "  ", "brown", domain.StatusLost, "Title is required"},
		{"blank description", "Wallet", "", domain.StatusFound, "Description is required"},
		{"unknown status", "Wallet", "brown", domain.Status("stolen"), "Status must be lost or found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateItemForm(tt.title, tt.desc, tt.status)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestValidateLoginAndRegister(t *testing.T) {
	assert.NoError(t, validateLogin("a@b.co", "secret"))
	assert.EqualError(t, validateLogin("", "secret"), "Email is required")
	assert.EqualError(t, validateLogin("not-an-email", "secret"), "Email is not valid")
	assert.EqualError(t, validateLogin("Robby <a@b.co>", "secret"), "Email is not valid")
	assert.EqualError(t, validateLogin("a@b.co", ""), "Password is required")

	assert.NoError(t, validateRegister("Robby", "a@b.co", "secret", "secret"))
	assert.EqualError(t, validateRegister("", "a@b.co", "secret", "secret"), "Name is required")
	assert.EqualError(t, validateRegister("Robby", "a@b.co", "12345", "12345"), "Password must be at least 6 characters")
	assert.EqualError(t, validateRegister("Robby", "a@b.co", "secret", "secrets"), "Passwords do not match")
}

func ctrlS() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyCtrlS} }
func tab() tea.KeyMsg   { return tea.KeyMsg{Type: tea.KeyTab} }
func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func TestManageModel_ValidationBlocksRequest(t *testing.T) {
	f := &fakeItems{}
	m := NewManageModel(newItemsVM(f), context.Background(), nil)

	model, cmd := m.Update(ctrlS())
	m = model.(ManageModel)
	assert.Nil(t, cmd)
	assert.Equal(t, "Title is required", m.errorMsg)
	assert.False(t, m.saving)
	assert.Zero(t, f.creates)
	assert.Contains(t, m.View(), "Title is required")
}

func TestManageModel_Create(t *testing.T) {
	f := &fakeItems{}
	m := NewManageModel(newItemsVM(f), context.Background(), nil)

	model := typeText(t, m, "Umbrella")
	model, _ = model.Update(tab())
	model = typeText(t, model, "red, near the gym")
	model, _ = model.Update(tab())
	model, _ = model.Update(keyRune('l')) // cycle to found

	model, cmd := model.Update(ctrlS())
	require.NotNil(t, cmd)
	assert.True(t, model.(ManageModel).saving)

	model, others := pump(t, model, cmd)
	assert.False(t, model.(ManageModel).saving)
	assert.Contains(t, others, tea.Msg(backToListMsg{refresh: true, notice: "Item #101 reported"}))

	require.Len(t, f.items, 1)
	assert.Equal(t, "Umbrella", f.items[0].Title)
	assert.Equal(t, "red, near the gym", f.items[0].Description)
	assert.Equal(t, domain.StatusFound, f.items[0].Status)
}

func TestManageModel_EditKeepsAndTogglesCompletion(t *testing.T) {
	f := &fakeItems{items: testItems()}
	editing := testItems()[2]
	m := NewManageModel(newItemsVM(f), context.Background(), &editing)
	assert.True(t, m.completed)

	model, _ := m.Update(tab())
	model, _ = model.Update(tab())
	model, _ = model.Update(tab())
	require.Equal(t, fieldCompleted, model.(ManageModel).focus)
	model, _ = model.Update(keyRune('x'))

	model, cmd := model.Update(ctrlS())
	require.NotNil(t, cmd)
	_, others := pump(t, model, cmd)

	require.Len(t, f.updates, 1)
	assert.Equal(t, 3, f.updates[0].ID)
	assert.Equal(t, "Headphones", f.updates[0].Title)
	assert.False(t, f.updates[0].Completed)
	assert.Contains(t, others, tea.Msg(backToListMsg{refresh: true, notice: "Item updated"}))
}

func TestManageModel_ServerErrorStaysOnForm(t *testing.T) {
	f := &fakeItems{
		items:     testItems(),
		updateErr: &api.APIError{StatusCode: 403, Body: []byte(`{"success":false,"message":"Not your item"}`)},
	}
	editing := testItems()[0]
	m := NewManageModel(newItemsVM(f), context.Background(), &editing)

	model, cmd := m.Update(ctrlS())
	model, others := pump(t, model, cmd)
	m = model.(ManageModel)

	assert.Equal(t, "Not your item", m.errorMsg)
	assert.False(t, m.saving)
	for _, msg := range others {
		assert.NotEqual(t, backToListMsg{refresh: true, notice: "Item updated"}, msg)
	}
}

func TestManageModel_Cancel(t *testing.T) {
	m := NewManageModel(newItemsVM(&fakeItems{}), context.Background(), nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, backToListMsg{}, cmd())
}

func fillLogin(t *testing.T, m tea.Model, email, password string) tea.Model {
	t.Helper()
	m = typeText(t, m, email)
	m, _ = m.Update(enter())
	return typeText(t, m, password)
}

func TestLoginModel_Success(t *testing.T) {
	accounts := &fakeAccounts{
		email:    "robby@example.com",
		password: "hunter22",
		user:     domain.User{ID: 7, Name: "Robby", Email: "robby@example.com"},
	}
	vm, sessions := newAuthVM(t, accounts)
	m := fillLogin(t, NewLoginModel(vm, context.Background(), ""), "robby@example.com", "hunter22")

	model, cmd := m.Update(enter())
	require.NotNil(t, cmd)
	_, others := pump(t, model, cmd)

	var loggedIn *LoggedInMsg
	for _, msg := range others {
		if li, ok := msg.(LoggedInMsg); ok {
			loggedIn = &li
		}
	}
	require.NotNil(t, loggedIn)
	assert.Equal(t, "opaque-token", loggedIn.Session.Token)
	assert.Equal(t, "Robby", loggedIn.Session.User.Name)

	saved, err := sessions.Load()
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", saved.Token)
}

func TestLoginModel_RejectedCredentials(t *testing.T) {
	vm, sessions := newAuthVM(t, &fakeAccounts{email: "robby@example.com", password: "hunter22"})
	m := fillLogin(t, NewLoginModel(vm, context.Background(), ""), "robby@example.com", "wrong")

	model, cmd := m.Update(enter())
	model, _ = pump(t, model, cmd)
	lm := model.(LoginModel)

	assert.False(t, lm.busy)
	assert.Equal(t, "Invalid credentials", lm.errorMsg)
	_, err := sessions.Load()
	assert.Error(t, err)
}

func TestLoginModel_InvalidEmailNeverSubmits(t *testing.T) {
	vm, _ := newAuthVM(t, &fakeAccounts{})
	m := fillLogin(t, NewLoginModel(vm, context.Background(), ""), "robby", "hunter22")

	model, cmd := m.Update(enter())
	assert.Nil(t, cmd)
	assert.Equal(t, "Email is not valid", model.(LoginModel).errorMsg)
}

func TestLoginModel_Navigation(t *testing.T) {
	vm, _ := newAuthVM(t, &fakeAccounts{})
	m := NewLoginModel(vm, context.Background(), "You have been logged out")
	assert.Contains(t, m.View(), "You have been logged out")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	assert.Equal(t, showRegisterMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, QuitMsg{}, cmd())
}

func fillRegister(t *testing.T, m tea.Model, fields ...string) tea.Model {
	t.Helper()
	for i, v := range fields {
		m = typeText(t, m, v)
		if i < len(fields)-1 {
			m, _ = m.Update(tab())
		}
	}
	return m
}

func TestRegisterModel(t *testing.T) {
	vm, _ := newAuthVM(t, &fakeAccounts{email: "taken@example.com"})

	t.Run("mismatched passwords", func(t *testing.T) {
		m := fillRegister(t, NewRegisterModel(vm, context.Background()), "Robby", "new@example.com", "secret1", "secret2")
		model, cmd := m.Update(ctrlS())
		assert.Nil(t, cmd)
		assert.Equal(t, "Passwords do not match", model.(RegisterModel).errorMsg)
	})

	t.Run("success returns to login", func(t *testing.T) {
		m := fillRegister(t, NewRegisterModel(vm, context.Background()), "Robby", "new@example.com", "secret1", "secret1")
		model, cmd := m.Update(enter())
		require.NotNil(t, cmd)
		_, others := pump(t, model, cmd)
		assert.Contains(t, others, tea.Msg(showLoginMsg{notice: "Registration successful"}))
	})

	t.Run("server rejection", func(t *testing.T) {
		m := fillRegister(t, NewRegisterModel(vm, context.Background()), "Robby", "taken@example.com", "secret1", "secret1")
		model, cmd := m.Update(ctrlS())
		model, _ = pump(t, model, cmd)
		assert.Equal(t, "Email already registered", model.(RegisterModel).errorMsg)
	})
}

func loadedDetail(t *testing.T, f *fakeItems, id int) DetailModel {
	t.Helper()
	m := NewDetailModel(newItemsVM(f), context.Background(), id)
	model, _ := pump(t, m, m.Init())
	dm, ok := model.(DetailModel)
	require.True(t, ok)
	return dm
}

func TestDetailModel_Loads(t *testing.T) {
	m := loadedDetail(t, &fakeItems{items: testItems()}, 1)

	require.NotNil(t, m.item)
	assert.False(t, m.loading)
	assert.Equal(t, "Wallet", m.item.Title)

	model, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := model.View()
	assert.Contains(t, view, "Wallet")
	assert.Contains(t, view, "brown leather")
}

func TestDetailModel_NotFound(t *testing.T) {
	m := loadedDetail(t, &fakeItems{items: testItems()}, 42)

	assert.Nil(t, m.item)
	assert.Equal(t, "Item not found", m.errorMsg)
	assert.NotPanics(t, func() { m.View() })

	// keys that need an item are ignored
	_, cmd := m.Update(keyRune('x'))
	assert.Nil(t, cmd)
}

func TestDetailModel_ToggleRevertsOnError(t *testing.T) {
	f := &fakeItems{
		items:     testItems(),
		updateErr: &api.APIError{StatusCode: 500},
	}
	m := loadedDetail(t, f, 1)

	model, cmd := m.Update(keyRune('x'))
	require.NotNil(t, cmd)
	assert.True(t, model.(DetailModel).item.Completed)

	model, _ = pump(t, model, cmd)
	m = model.(DetailModel)
	assert.False(t, m.item.Completed)
	assert.Equal(t, "Something went wrong, please try again", m.errorMsg)
	assert.False(t, m.changed)
}

func TestDetailModel_ToggleIgnoredWhileSaving(t *testing.T) {
	f := &fakeItems{
		items:     testItems(),
		updateErr: &api.APIError{StatusCode: 500, Body: []byte(`{"success":false,"message":"Could not update item"}`)},
	}
	m := loadedDetail(t, f, 1)

	model, first := m.Update(keyRune('x'))
	require.NotNil(t, first)
	model, second := model.Update(keyRune('x'))
	assert.Nil(t, second, "a second toggle waits for the first to settle")
	assert.True(t, model.(DetailModel).item.Completed)

	model, _ = pump(t, model, first)
	m = model.(DetailModel)
	assert.False(t, m.item.Completed, "restores the value the server last accepted")
	assert.Equal(t, "Could not update item", m.errorMsg)
	assert.Len(t, f.updates, 1)

	// settled, so toggling works again
	_, cmd := m.Update(keyRune('x'))
	assert.NotNil(t, cmd)
}

func TestDetailModel_ToggleMarksListStale(t *testing.T) {
	m := loadedDetail(t, &fakeItems{items: testItems()}, 1)

	model, cmd := m.Update(keyRune('x'))
	model, _ = pump(t, model, cmd)
	m = model.(DetailModel)
	assert.True(t, m.item.Completed)
	assert.True(t, m.changed)

	_, cmd = m.Update(keyRune('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, backToListMsg{refresh: true}, cmd())
}

func TestDetailModel_DeleteConfirm(t *testing.T) {
	f := &fakeItems{items: testItems()}
	m := loadedDetail(t, f, 2)

	model, _ := m.Update(keyRune('d'))
	require.True(t, model.(DetailModel).confirmDelete)

	model, cmd := model.Update(keyRune('y'))
	require.NotNil(t, cmd)
	_, others := pump(t, model, cmd)

	assert.Equal(t, []int{2}, f.deletes)
	assert.Contains(t, others, tea.Msg(backToListMsg{refresh: true, notice: "Item deleted"}))
}

func TestDetailModel_OpenCover(t *testing.T) {
	items := testItems()
	items[0].Cover = "https://example.com/wallet.jpg"
	m := loadedDetail(t, &fakeItems{items: items}, 1)

	var opened []string
	orig := openURL
	openURL = func(u string) error {
		opened = append(opened, u)
		return nil
	}
	t.Cleanup(func() { openURL = orig })

	model, _ := m.Update(keyRune('o'))
	assert.Equal(t, []string{"https://example.com/wallet.jpg"}, opened)
	assert.Empty(t, model.(DetailModel).errorMsg)

	openURL = func(string) error { return errors.New("no browser") }
	model, _ = model.Update(keyRune('O'))
	assert.Equal(t, "The author has no photo", model.(DetailModel).errorMsg)

	model, _ = model.Update(keyRune('o'))
	assert.Equal(t, "Open failed: no browser", model.(DetailModel).errorMsg)
}

func TestFormatTimeAgo(t *testing.T) {
	assert.Equal(t, "", formatTimeAgo(""))
	assert.Equal(t, "not a time", formatTimeAgo("not a time"))
	assert.Equal(t, "2024-01-15", formatTimeAgo("2024-01-15 garbage"))
	assert.Equal(t, "2h ago", formatTimeAgo(time.Now().Add(-2*time.Hour-time.Minute).UTC().Format(time.RFC3339)))
	assert.Equal(t, "3d ago", formatTimeAgo(time.Now().Add(-73*time.Hour).UTC().Format("2006-01-02 15:04:05")))
}
