package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the operations for persisting and retrieving User
// entities.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
