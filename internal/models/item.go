package models

import "time"

// Item represents a resource owned by a single user.
// The owner is set at creation and never reassigned.
type Item struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Price       int64      `json:"price"`
	OwnerID     int64      `json:"owner_id"`
	Owner       *User      `json:"owner,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
