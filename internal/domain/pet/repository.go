package pet

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for pet records.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Pet, error)
	// FindByClientID returns the client's pets ordered by creation time
	// descending, with offset pageNumber*pageSize and limit pageSize.
	FindByClientID(ctx context.Context, clientID uuid.UUID, pageNumber, pageSize int) ([]*Pet, error)
	Save(ctx context.Context, pet *Pet) error
	Update(ctx context.Context, pet *Pet) error
	Delete(ctx context.Context, id uuid.UUID) error
}
