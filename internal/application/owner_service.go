package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pet-platform/service-registry/internal/domain"
	ownerDomain "github.com/pet-platform/service-registry/internal/domain/owner"
)

// OwnerService resolves pet owners for enrichment. Read-only from the
// registry's perspective, except for the startup seed of the default owner.
type OwnerService struct {
	repo ownerDomain.Repository
}

// NewOwnerService creates an OwnerService.
func NewOwnerService(repo ownerDomain.Repository) *OwnerService {
	return &OwnerService{repo: repo}
}

// GetByID returns the owner or a NotFound error.
func (s *OwnerService) GetByID(ctx context.Context, id uuid.UUID) (*ownerDomain.Owner, error) {
	return s.repo.FindByID(ctx, id)
}

// FindAllByIDs resolves a batch of owner ids into a lookup map. Missing ids
// are simply absent from the result.
func (s *OwnerService) FindAllByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ownerDomain.Owner, error) {
	owners, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owners: %w", err)
	}

	byID := make(map[uuid.UUID]*ownerDomain.Owner, len(owners))
	for _, o := range owners {
		byID[o.ID()] = o
	}
	return byID, nil
}

// EnsureExists creates the owner record under the given id if it is missing.
// Called at startup so the configured default owner is present before any
// pet references it; an existing owner is left untouched.
func (s *OwnerService) EnsureExists(ctx context.Context, id uuid.UUID, name string) error {
	_, err := s.repo.FindByID(ctx, id)
	if err == nil {
		return nil
	}
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to check owner %s: %w", id, err)
	}

	now := time.Now().UTC()
	if err := s.repo.Save(ctx, ownerDomain.Reconstruct(id, name, now, now)); err != nil {
		return fmt.Errorf("failed to create owner %s: %w", id, err)
	}
	return nil
}
