package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/robby/lostfound/internal/domain"
)

func itemPath(id int) string {
	return "lost-founds/" + strconv.Itoa(id)
}

// ListItems lists items. completed filters on the completion flag; nil lists everything.
// Items are returned in server order.
func (c *Client) ListItems(ctx context.Context, completed *bool) ([]domain.Item, error) {
	var query url.Values
	if completed != nil {
		query = url.Values{}
		query.Set("is_completed", boolToFlag(*completed))
	}

	var resp envelope[struct {
		LostFounds []wireItem `json:"lost_founds"`
	}]
	if err := c.do(ctx, http.MethodGet, "lost-founds", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	items := make([]domain.Item, 0, len(resp.Data.LostFounds))
	for _, w := range resp.Data.LostFounds {
		items = append(items, w.toDomain())
	}
	return items, nil
}

// GetItem fetches a single item.
func (c *Client) GetItem(ctx context.Context, id int) (domain.Item, error) {
	var resp envelope[struct {
		LostFound wireItem `json:"lost_found"`
	}]
	if err := c.do(ctx, http.MethodGet, itemPath(id), nil, nil, &resp); err != nil {
		return domain.Item{}, fmt.Errorf("failed to get item %d: %w", id, err)
	}
	return resp.Data.LostFound.toDomain(), nil
}

// CreateItem reports a new item and returns its server-assigned id.
func (c *Client) CreateItem(ctx context.Context, title, description string, status domain.Status) (int, error) {
	form := url.Values{}
	form.Set("title", title)
	form.Set("description", description)
	form.Set("status", string(status))

	var resp envelope[struct {
		LostFoundID int `json:"lost_found_id"`
	}]
	if err := c.do(ctx, http.MethodPost, "lost-founds", nil, form, &resp); err != nil {
		return 0, fmt.Errorf("failed to create item: %w", err)
	}
	return resp.Data.LostFoundID, nil
}

// UpdateItem replaces the editable fields of an item.
func (c *Client) UpdateItem(ctx context.Context, id int, title, description string, status domain.Status, completed bool) (Ack, error) {
	form := url.Values{}
	form.Set("title", title)
	form.Set("description", description)
	form.Set("status", string(status))
	form.Set("is_completed", boolToFlag(completed))

	var resp Ack
	if err := c.do(ctx, http.MethodPut, itemPath(id), nil, form, &resp); err != nil {
		return Ack{}, fmt.Errorf("failed to update item %d: %w", id, err)
	}
	return resp, nil
}

// DeleteItem removes an item.
func (c *Client) DeleteItem(ctx context.Context, id int) (Ack, error) {
	var resp Ack
	if err := c.do(ctx, http.MethodDelete, itemPath(id), nil, nil, &resp); err != nil {
		return Ack{}, fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	return resp, nil
}
