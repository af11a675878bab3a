// Package users declares the user store contract and its PostgreSQL and
// in-memory implementations. A user is always loaded and saved together
// with its clients.
package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository persists users and their client registry.
type Repository interface {
	// FindByUsername returns common.ErrorNotFound when no such user exists.
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByRefreshToken returns the owner of the active client holding
	// refreshToken, or common.ErrorNotFound.
	FindByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error)

	Exists(ctx context.Context, username string) (bool, error)

	// Create inserts a new user without clients. A duplicate username or
	// email yields common.ErrUsernameTaken or common.ErrEmailTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// Save writes the profile and the full client list if user.Version still
	// matches the stored one, and returns the user with the new version.
	// A stale version yields common.ErrVersionConflict. Invalidated clients
	// stay invalidated whatever the caller sends.
	Save(ctx context.Context, user *models.User) (*models.User, error)

	// Delete removes the user and its clients. Administrative only.
	Delete(ctx context.Context, username string) error
}
