package devserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a user or item does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken is returned when registering an email twice.
	ErrEmailTaken = errors.New("email already registered")
)

// repository persists users and items with GORM.
type repository struct {
	db *gorm.DB
}

func newRepository(db *gorm.DB) *repository {
	return &repository{db: db}
}

func (r *repository) migrate() error {
	if err := r.db.AutoMigrate(&userRecord{}, &itemRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (r *repository) createUser(ctx context.Context, u *userRecord) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	var count int64
	if err := r.db.WithContext(ctx).Model(&userRecord{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return ErrEmailTaken
	}

	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *repository) userByEmail(ctx context.Context, email string) (userRecord, error) {
	var u userRecord
	err := r.db.WithContext(ctx).First(&u, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	return u, notFound(err, "user")
}

func (r *repository) userByID(ctx context.Context, id uint) (userRecord, error) {
	var u userRecord
	err := r.db.WithContext(ctx).First(&u, id).Error
	return u, notFound(err, "user")
}

// listItems returns items newest first. A nil completed lists everything.
func (r *repository) listItems(ctx context.Context, completed *bool) ([]itemRecord, error) {
	q := r.db.WithContext(ctx).Preload("User").Order("id DESC")
	if completed != nil {
		q = q.Where("is_completed = ?", *completed)
	}
	var items []itemRecord
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (r *repository) itemByID(ctx context.Context, id uint) (itemRecord, error) {
	var it itemRecord
	err := r.db.WithContext(ctx).Preload("User").First(&it, id).Error
	return it, notFound(err, "item")
}

func (r *repository) createItem(ctx context.Context, it *itemRecord) error {
	if err := r.db.WithContext(ctx).Create(it).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

func (r *repository) updateItem(ctx context.Context, id uint, f itemFields) error {
	// a map so a false completion flag is written too
	res := r.db.WithContext(ctx).Model(&itemRecord{ID: id}).Updates(map[string]any{
		"title":        f.Title,
		"description":  f.Description,
		"status":       string(f.Status),
		"is_completed": f.Completed,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update item %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) deleteItem(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&itemRecord{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
