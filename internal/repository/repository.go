package repository

import (
	"context"
	"errors"

	"github.com/ljimenez/chat-service/internal/models"
)

var (
	// ErrDuplicateEmail is returned when a user with the same email already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
)

// UserStore persists user records. Implementations handle their own
// atomicity; email uniqueness is enforced by the store, not its callers.
// Password and face-data hashes are opaque to the store.
type UserStore interface {
	// CreateUser inserts the user and fills in ID and CreatedAt.
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	// ListUsers returns all users, newest first.
	ListUsers(ctx context.Context) ([]*models.User, error)
	// UpdateFaceData overwrites the stored face-data hash.
	UpdateFaceData(ctx context.Context, userID, faceDataHash string) (*models.User, error)
	Ping(ctx context.Context) error
}
