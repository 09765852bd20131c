package api

import "github.com/robby/lostfound/internal/domain"

// Ack is the bare envelope returned by endpoints with no payload.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// envelope is the {data, success, message} wrapper every response uses.
type envelope[T any] struct {
	Data    T      `json:"data"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type wireAuthor struct {
	Name  string `json:"name"`
	Photo any    `json:"photo"` // string or null
}

type wireItem struct {
	ID          int         `json:"id"`
	UserID      int         `json:"user_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	IsCompleted int         `json:"is_completed"`
	Cover       *string     `json:"cover"`
	Author      *wireAuthor `json:"author"`
	CreatedAt   string      `json:"created_at"`
	UpdatedAt   string      `json:"updated_at"`
}

type wireUser struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Photo     *string `json:"photo"`
	CreatedAt string  `json:"created_at"`
}

func (w wireItem) toDomain() domain.Item {
	item := domain.Item{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Completed:   w.IsCompleted == 1,
		Status:      domain.Status(w.Status),
		UserID:      w.UserID,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	if w.Cover != nil {
		item.Cover = *w.Cover
	}
	if w.Author != nil {
		item.Author.Name = w.Author.Name
		if photo, ok := w.Author.Photo.(string); ok {
			item.Author.Photo = photo
		}
	}
	return item
}

func (w wireUser) toDomain() domain.User {
	user := domain.User{
		ID:        w.ID,
		Name:      w.Name,
		Email:     w.Email,
		CreatedAt: w.CreatedAt,
	}
	if w.Photo != nil {
		user.Photo = *w.Photo
	}
	return user
}

func boolToFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
