package devserver

import (
	"time"

	"github.com/robby/lostfound/internal/domain"
)

// userRecord is a registered account.
type userRecord struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Photo        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRecord) TableName() string {
	return "users"
}

// itemRecord is a reported lost or found item.
type itemRecord struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	Description string `gorm:"not null"`
	Status      string `gorm:"not null"`
	IsCompleted bool   `gorm:"not null;default:false"`
	Cover       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User userRecord `gorm:"foreignKey:UserID"`
}

func (itemRecord) TableName() string {
	return "lost_founds"
}

// Wire shapes. They mirror what the public service sends, including the
// integer completion flag and the nullable photo fields.
type (
	userJSON struct {
		ID        uint    `json:"id"`
		Name      string  `json:"name"`
		Email     string  `json:"email"`
		Photo     *string `json:"photo"`
		CreatedAt string  `json:"created_at"`
	}

	authorJSON struct {
		Name  string  `json:"name"`
		Photo *string `json:"photo"`
	}

	itemJSON struct {
		ID          uint        `json:"id"`
		UserID      uint        `json:"user_id"`
		Title       string      `json:"title"`
		Description string      `json:"description"`
		Status      string      `json:"status"`
		IsCompleted int         `json:"is_completed"`
		Cover       *string     `json:"cover"`
		Author      *authorJSON `json:"author"`
		CreatedAt   string      `json:"created_at"`
		UpdatedAt   string      `json:"updated_at"`
	}
)

const timestampLayout = time.RFC3339

func (u userRecord) toJSON() userJSON {
	return userJSON{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Photo:     u.Photo,
		CreatedAt: u.CreatedAt.UTC().Format(timestampLayout),
	}
}

func (r itemRecord) toJSON() itemJSON {
	out := itemJSON{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Cover:       r.Cover,
		CreatedAt:   r.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:   r.UpdatedAt.UTC().Format(timestampLayout),
	}
	if r.IsCompleted {
		out.IsCompleted = 1
	}
	if r.User.ID != 0 {
		out.Author = &authorJSON{Name: r.User.Name, Photo: r.User.Photo}
	}
	return out
}

// itemFields is the editable part of an item after validation.
type itemFields struct {
	Title       string
	Description string
	Status      domain.Status
	Completed   bool
}
