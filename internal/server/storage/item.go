package storage

import (
	"context"

	"stockroom/internal/models"
)

// ItemStorage defines the interface for item persistence.
// All reads return items with the Owner field populated via an explicit
// join; there is no lazy loading.
type ItemStorage interface {
	// CreateItem inserts a new item and sets item.ID
	CreateItem(ctx context.Context, item *models.Item) error

	// GetItemByID retrieves an item with its owner.
	// Returns ErrItemNotFound if the item doesn't exist.
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)

	// ListItems returns a page of items ordered by ID plus the total count
	// over the same filter. ownerID narrows the listing to a single owner
	// when non-nil.
	ListItems(ctx context.Context, skip, limit int, ownerID *int64) ([]*models.Item, int, error)

	// UpdateItem updates title, description and price by ID.
	// The owner reference is immutable.
	// Returns ErrItemNotFound if the item doesn't exist.
	UpdateItem(ctx context.Context, item *models.Item) error

	// DeleteItem deletes an item by ID.
	// Returns ErrItemNotFound if the item doesn't exist.
	DeleteItem(ctx context.Context, id int64) error
}
