package owner

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Owner represents the person who physically holds a pet. Owners are
// read-mostly from this service's perspective: pets reference them, but the
// registry never mutates them.
type Owner struct {
	id        uuid.UUID
	name      string
	createdAt time.Time
	updatedAt time.Time
}

// NewOwner creates a new owner record.
func NewOwner(name string) (*Owner, error) {
	if name == "" {
		return nil, fmt.Errorf("owner name is required")
	}
	now := time.Now().UTC()
	return &Owner{
		id:        uuid.New(),
		name:      name,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds an Owner from persistence data.
func Reconstruct(id uuid.UUID, name string, createdAt, updatedAt time.Time) *Owner {
	return &Owner{
		id:        id,
		name:      name,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (o *Owner) ID() uuid.UUID        { return o.id }
func (o *Owner) Name() string         { return o.name }
func (o *Owner) CreatedAt() time.Time { return o.createdAt }
func (o *Owner) UpdatedAt() time.Time { return o.updatedAt }
