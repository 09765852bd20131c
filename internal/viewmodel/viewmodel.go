// Package viewmodel is the seam between screens and repositories.
// View-models forward intents and hand back the repository's streams untouched.
package viewmodel

import (
	"github.com/robby/lostfound/internal/api"
	"github.com/robby/lostfound/internal/auth"
	"github.com/robby/lostfound/internal/domain"
	"github.com/robby/lostfound/internal/repository"
	"github.com/robby/lostfound/internal/result"
)

// Items forwards item operations to the item repository.
type Items struct {
	repo *repository.Items
}

// NewItems builds the item view-model. Build it once and share the pointer.
func NewItems(repo *repository.Items) *Items {
	return &Items{repo: repo}
}

func (vm *Items) List(filter *bool) result.Stream[[]domain.Item] {
	return vm.repo.List(filter)
}

func (vm *Items) Get(id int) result.Stream[domain.Item] {
	return vm.repo.Get(id)
}

func (vm *Items) Create(title, description string, status domain.Status) result.Stream[int] {
	return vm.repo.Create(title, description, status)
}

func (vm *Items) Update(id int, title, description string, status domain.Status, completed bool) result.Stream[api.Ack] {
	return vm.repo.Update(id, title, description, status, completed)
}

func (vm *Items) Delete(id int) result.Stream[api.Ack] {
	return vm.repo.Delete(id)
}

// Auth forwards account and session operations to the auth repository.
type Auth struct {
	repo *repository.Auth
}

// NewAuth builds the auth view-model.
func NewAuth(repo *repository.Auth) *Auth {
	return &Auth{repo: repo}
}

func (vm *Auth) Register(name, email, password string) result.Stream[api.Ack] {
	return vm.repo.Register(name, email, password)
}

func (vm *Auth) Login(email, password string) result.Stream[auth.Session] {
	return vm.repo.Login(email, password)
}

func (vm *Auth) Me() result.Stream[domain.User] {
	return vm.repo.Me()
}

// Session returns the persisted session or auth.ErrNotLoggedIn.
func (vm *Auth) Session() (auth.Session, error) {
	return vm.repo.Session()
}

func (vm *Auth) Logout() error {
	return vm.repo.Logout()
}
