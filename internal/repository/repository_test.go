package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/robby/lostfound/internal/api"
	"github.com/robby/lostfound/internal/auth"
	"github.com/robby/lostfound/internal/domain"
	"github.com/robby/lostfound/internal/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	items       []domain.Item
	listFilters []*bool
	createdArgs []string
	updated     map[int]bool
	deleted     []int

	token   string
	user    domain.User
	loginFn func() error
	meErr   error
}

func notFound() error {
	return &api.APIError{StatusCode: 404, Body: []byte(`{"success":false,"message":"Item not found"}`)}
}

func (f *fakeAPI) ListItems(ctx context.Context, completed *bool) ([]domain.Item, error) {
	f.listFilters = append(f.listFilters, completed)
	if completed == nil {
		return domain.CloneItems(f.items), nil
	}
	var out []domain.Item
	for _, it := range f.items {
		if it.Completed == *completed {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeAPI) GetItem(ctx context.Context, id int) (domain.Item, error) {
	for _, it := range f.items {
		if it.ID == id {
			return it, nil
		}
	}
	return domain.Item{}, fmt.Errorf("failed to get item %d: %w", id, notFound())
}

func (f *fakeAPI) CreateItem(ctx context.Context, title, description string, status domain.Status) (int, error) {
	f.createdArgs = append(f.createdArgs, title, description, string(status))
	return 100, nil
}

func (f *fakeAPI) UpdateItem(ctx context.Context, id int, title, description string, status domain.Status, completed bool) (api.Ack, error) {
	if f.updated == nil {
		f.updated = map[int]bool{}
	}
	f.updated[id] = completed
	return api.Ack{Success: true, Message: "updated"}, nil
}

func (f *fakeAPI) DeleteItem(ctx context.Context, id int) (api.Ack, error) {
	f.deleted = append(f.deleted, id)
	return api.Ack{Success: true, Message: "deleted"}, nil
}

func (f *fakeAPI) Register(ctx context.Context, name, email, password string) (api.Ack, error) {
	return api.Ack{Success: true, Message: "registered " + name}, nil
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (string, error) {
	if f.loginFn != nil {
		if err := f.loginFn(); err != nil {
			return "", err
		}
	}
	return f.token, nil
}

func (f *fakeAPI) Me(ctx context.Context) (domain.User, error) {
	if f.meErr != nil {
		return domain.User{}, f.meErr
	}
	return f.user, nil
}

func sampleItems() []domain.Item {
	return []domain.Item{
		{ID: 1, Title: "Wallet", Status: domain.StatusLost},
		{ID: 2, Title: "Phone", Status: domain.StatusFound, Completed: true},
	}
}

func TestItems_List(t *testing.T) {
	fake := &fakeAPI{items: sampleItems()}
	repo := NewItems(fake)

	got := repo.List(nil).Collect(context.Background())

	require.Len(t, got, 2)
	assert.True(t, got[0].IsLoading())
	require.True(t, got[1].IsSuccess())
	assert.Equal(t, sampleItems(), got[1].Value)
}

func TestItems_ListFilterIsCopied(t *testing.T) {
	fake := &fakeAPI{items: sampleItems()}
	repo := NewItems(fake)

	filter := true
	stream := repo.List(&filter)
	filter = false

	r := stream.Await(context.Background())
	require.True(t, r.IsSuccess())
	require.Len(t, r.Value, 1)
	assert.Equal(t, 2, r.Value[0].ID)
	require.NotNil(t, fake.listFilters[0])
	assert.True(t, *fake.listFilters[0])
}

func TestItems_GetNotFound(t *testing.T) {
	repo := NewItems(&fakeAPI{items: sampleItems()})

	got := repo.Get(999).Collect(context.Background())

	require.Len(t, got, 2)
	assert.True(t, got[0].IsLoading())
	assert.True(t, got[1].IsError())
	assert.Equal(t, "Item not found", got[1].Message)
}

func TestItems_CreateUpdateDelete(t *testing.T) {
	fake := &fakeAPI{}
	repo := NewItems(fake)
	ctx := context.Background()

	created := repo.Create("", "", domain.StatusLost).Await(ctx)
	require.True(t, created.IsSuccess())
	assert.Equal(t, 100, created.Value)
	assert.Equal(t, []string{"", "", "lost"}, fake.createdArgs, "no validation in the repository")

	upd := repo.Update(1, "t", "d", domain.StatusFound, true).Await(ctx)
	require.True(t, upd.IsSuccess())
	assert.Equal(t, "updated", upd.Value.Message)
	assert.True(t, fake.updated[1])

	del := repo.Delete(2).Await(ctx)
	require.True(t, del.IsSuccess())
	assert.Equal(t, []int{2}, fake.deleted)
}

func TestItems_StreamsAreCold(t *testing.T) {
	fake := &fakeAPI{}
	repo := NewItems(fake)
	stream := repo.Delete(5)

	stream.Await(context.Background())
	stream.Await(context.Background())

	assert.Equal(t, []int{5, 5}, fake.deleted)
}

func TestAuth_LoginPersistsSession(t *testing.T) {
	fake := &fakeAPI{token: "opaque", user: domain.User{ID: 3, Name: "Ana", Email: "ana@example.com"}}
	store := auth.NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	repo := NewAuth(fake, store)

	r := repo.Login("ana@example.com", "pw").Await(context.Background())

	require.True(t, r.IsSuccess())
	assert.Equal(t, "opaque", r.Value.Token)
	assert.Equal(t, "Ana", r.Value.User.Name)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "opaque", saved.Token)
	assert.Equal(t, 3, saved.User.ID)

	sess, err := repo.Session()
	require.NoError(t, err)
	assert.Equal(t, "opaque", sess.Token)
}

func TestAuth_LoginSurvivesProfileFailure(t *testing.T) {
	fake := &fakeAPI{token: "opaque", meErr: errors.New("boom")}
	store := auth.NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	repo := NewAuth(fake, store)

	r := repo.Login("ana@example.com", "pw").Await(context.Background())

	require.True(t, r.IsSuccess())
	assert.Equal(t, "ana@example.com", r.Value.User.Email)
}

func TestAuth_LoginFailureDoesNotPersist(t *testing.T) {
	fake := &fakeAPI{loginFn: func() error {
		return &api.APIError{StatusCode: 401, Body: []byte(`{"message":"Email atau password salah"}`)}
	}}
	store := auth.NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	repo := NewAuth(fake, store)

	r := repo.Login("a", "b").Await(context.Background())

	require.True(t, r.IsError())
	assert.Equal(t, "Email atau password salah", r.Message)
	_, err := repo.Session()
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
}

func TestAuth_Logout(t *testing.T) {
	store := auth.NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save(auth.Session{Token: "tok"}))
	repo := NewAuth(&fakeAPI{}, store)

	require.NoError(t, repo.Logout())

	_, err := repo.Session()
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
}

func TestAuth_RegisterAndMe(t *testing.T) {
	fake := &fakeAPI{user: domain.User{ID: 1, Name: "Ana"}}
	repo := NewAuth(fake, auth.NewSessionStore(filepath.Join(t.TempDir(), "s.json")))
	ctx := context.Background()

	reg := repo.Register("Ana", "ana@example.com", "pw").Await(ctx)
	require.True(t, reg.IsSuccess())
	assert.Equal(t, "registered Ana", reg.Value.Message)

	me := repo.Me().Collect(ctx)
	require.Len(t, me, 2)
	assert.Equal(t, result.KindSuccess, me[1].Kind)
	assert.Equal(t, "Ana", me[1].Value.Name)
}
