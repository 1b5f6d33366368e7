package storage

import (
	"context"

	"stockroom/internal/models"
)

// UserStorage defines the interface for user persistence
type UserStorage interface {
	// CreateUser inserts a new user and sets user.ID.
	// Returns ErrUsernameTaken or ErrEmailTaken on uniqueness violations.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user doesn't exist.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// GetUserByUsername retrieves a user by username.
	// Returns ErrUserNotFound if the user doesn't exist.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByEmail retrieves a user by email.
	// Returns ErrUserNotFound if the user doesn't exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// ListUsers returns a page of users ordered by ID plus the total count
	ListUsers(ctx context.Context, skip, limit int) ([]*models.User, int, error)

	// UpdateUser updates user fields by ID.
	// Returns ErrUserNotFound if the user doesn't exist.
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser deletes a user by ID. Owned items are removed with it.
	// Returns ErrUserNotFound if the user doesn't exist.
	DeleteUser(ctx context.Context, id int64) error
}
