package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the operations for persisting and retrieving
// Account entities together with their bill history.
type Repository interface {
	Create(ctx context.Context, acc *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Account, error)
	ListAll(ctx context.Context) ([]*Account, error)
	Update(ctx context.Context, acc *Account) error
	Delete(ctx context.Context, id uuid.UUID) error
}
