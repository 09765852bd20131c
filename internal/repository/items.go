// Package repository turns each remote call into a result.Stream.
// Repositories hold no item state; one instance is shared for the whole process.
package repository

import (
	"context"

	"github.com/robby/lostfound/internal/api"
	"github.com/robby/lostfound/internal/domain"
	"github.com/robby/lostfound/internal/result"
)

// ItemAPI is the part of the remote client the item repository needs.
type ItemAPI interface {
	ListItems(ctx context.Context, completed *bool) ([]domain.Item, error)
	GetItem(ctx context.Context, id int) (domain.Item, error)
	CreateItem(ctx context.Context, title, description string, status domain.Status) (int, error)
	UpdateItem(ctx context.Context, id int, title, description string, status domain.Status, completed bool) (api.Ack, error)
	DeleteItem(ctx context.Context, id int) (api.Ack, error)
}

var _ ItemAPI = (*api.Client)(nil)

// Items exposes one stream per item endpoint.
type Items struct {
	api ItemAPI
}

// NewItems creates an item repository over client.
func NewItems(client ItemAPI) *Items {
	return &Items{api: client}
}

// List lists items. A nil filter lists everything; otherwise only items whose
// completion flag equals *filter.
func (r *Items) List(filter *bool) result.Stream[[]domain.Item] {
	var f *bool
	if filter != nil {
		v := *filter
		f = &v
	}
	return result.New(func(ctx context.Context) ([]domain.Item, error) {
		return r.api.ListItems(ctx, f)
	})
}

// Get fetches one item.
func (r *Items) Get(id int) result.Stream[domain.Item] {
	return result.New(func(ctx context.Context) (domain.Item, error) {
		return r.api.GetItem(ctx, id)
	})
}

// Create reports a new item and yields its id. Fields are sent as given.
func (r *Items) Create(title, description string, status domain.Status) result.Stream[int] {
	return result.New(func(ctx context.Context) (int, error) {
		return r.api.CreateItem(ctx, title, description, status)
	})
}

// Update replaces an item's editable fields.
func (r *Items) Update(id int, title, description string, status domain.Status, completed bool) result.Stream[api.Ack] {
	return result.New(func(ctx context.Context) (api.Ack, error) {
		return r.api.UpdateItem(ctx, id, title, description, status, completed)
	})
}

// Delete removes an item.
func (r *Items) Delete(id int) result.Stream[api.Ack] {
	return result.New(func(ctx context.Context) (api.Ack, error) {
		return r.api.DeleteItem(ctx, id)
	})
}
