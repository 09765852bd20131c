// Package domain defines the normalized domain types for the lost-and-found service.
// These types represent the core concepts independent of the REST API's wire format.
package domain

import "strings"

// Status is the lost/found tag carried by every item.
type Status string

// Status constants for the closed set the service accepts.
const (
	StatusLost  Status = "lost"
	StatusFound Status = "found"
)

// ParseStatus normalizes s into a Status, reporting whether it is known.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusLost:
		return StatusLost, true
	case StatusFound:
		return StatusFound, true
	}
	return "", false
}

// Author is the user who reported an item.
type Author struct {
	Name  string // Display name
	Photo string // Photo URL, empty if the user has none
}

// Item represents a lost/found record in a normalized format.
type Item struct {
	ID          int    // Server-assigned identifier
	Title       string // Short title shown in lists
	Description string // Free-form description
	Completed   bool   // Whether the item has been returned/claimed
	Status      Status // Lost or found
	Cover       string // Cover image URL, empty if none
	UserID      int    // ID of the reporting user
	Author      Author // Reporter metadata (read-only on the client)
	CreatedAt   string // Server timestamp, display only
	UpdatedAt   string // Server timestamp, display only
}

// User is the authenticated user's profile.
type User struct {
	ID        int
	Name      string
	Email     string
	Photo     string
	CreatedAt string
}

// CloneItems returns a copy of items that shares no backing array with the input.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}
