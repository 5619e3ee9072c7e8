package owner

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines read operations for pet owners.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Owner, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Owner, error)
	Save(ctx context.Context, owner *Owner) error
}
