package auth

import (
	"context"
	"errors"

	"stockroom/internal/models"
	"stockroom/internal/server/storage"
)

// Resolution errors. Handlers map these to 401, 400 and 403 respectively.
var (
	// ErrUnauthorized covers every mandatory-path failure: missing token,
	// invalid signature, expired token, missing subject, unknown user.
	// The causes are deliberately indistinguishable to the caller.
	ErrUnauthorized = errors.New("could not validate credentials")

	// ErrInactiveUser indicates a resolved but deactivated account
	ErrInactiveUser = errors.New("inactive user")

	// ErrNotSuperuser indicates an authenticated user without admin rights
	ErrNotSuperuser = errors.New("not enough permissions")
)

// Authenticate checks username/password credentials and returns the user,
// or nil when the user is unknown or the password does not match.
//
// The active flag is intentionally not checked here: an inactive user
// still authenticates, and inactivity is enforced only by ActiveUser.
func Authenticate(ctx context.Context, users storage.UserStorage, username, password string) *models.User {
	user, err := users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil
	}
	if !CheckPassword(password, user.HashedPassword) {
		return nil
	}
	return user
}

// CurrentUser resolves a bearer token into a user record.
// Token verification failure and an unknown subject both collapse into
// ErrUnauthorized.
func CurrentUser(ctx context.Context, users storage.UserStorage, cfg TokenConfig, token string) (*models.User, error) {
	subject, ok := VerifySubject(cfg, token)
	if !ok {
		return nil, ErrUnauthorized
	}

	user, err := users.GetUserByUsername(ctx, subject)
	if err != nil {
		return nil, ErrUnauthorized
	}

	return user, nil
}

// ActiveUser requires the resolved user to be active.
// Expects a user that already passed CurrentUser.
func ActiveUser(user *models.User) (*models.User, error) {
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// Superuser requires the resolved user to be a superuser
func Superuser(user *models.User) (*models.User, error) {
	if !user.IsSuperuser {
		return nil, ErrNotSuperuser
	}
	return user, nil
}

// OptionalUser resolves a bearer token into a user, returning nil instead
// of an error on any failure. Used by endpoints that personalize output
// for known users but stay accessible anonymously.
func OptionalUser(ctx context.Context, users storage.UserStorage, cfg TokenConfig, token string) *models.User {
	user, err := CurrentUser(ctx, users, cfg, token)
	if err != nil {
		return nil
	}
	return user
}

// ActiveOptionalUser returns the user only if present and active,
// otherwise nil. Never fails.
func ActiveOptionalUser(user *models.User) *models.User {
	if user != nil && user.IsActive {
		return user
	}
	return nil
}
