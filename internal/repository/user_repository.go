package repository

import (
	"context"
	"errors"

	"github.com/42piotrnycz/new-web-app/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository is the read-only boundary to the identity store. User
// registration and profile management live outside the auth core.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
