package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pet-platform/service-registry/internal/domain"
	ownerDomain "github.com/pet-platform/service-registry/internal/domain/owner"
)

type ownerDetail struct {
	Name string `json:"name"`
}

// OwnerModel is the GORM model for the pet_owners table.
type OwnerModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt      time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt      time.Time `gorm:"type:timestamptz;not null;default:now()"`
	PetOwnerDetail []byte    `gorm:"type:jsonb;not null"`
}

func (OwnerModel) TableName() string { return "pet_owners" }

// GormOwnerRepository implements owner.Repository using GORM.
type GormOwnerRepository struct {
	db *gorm.DB
}

func NewGormOwnerRepository(db *gorm.DB) *GormOwnerRepository {
	return &GormOwnerRepository{db: db}
}

func (r *GormOwnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ownerDomain.Owner, error) {
	var model OwnerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("PetOwner", id.String())
		}
		return nil, err
	}
	return toOwnerDomain(&model)
}

func (r *GormOwnerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*ownerDomain.Owner, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []OwnerModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owners: %w", err)
	}

	owners := make([]*ownerDomain.Owner, len(models))
	for i, m := range models {
		o, err := toOwnerDomain(&m)
		if err != nil {
			return nil, err
		}
		owners[i] = o
	}
	return owners, nil
}

func (r *GormOwnerRepository) Save(ctx context.Context, o *ownerDomain.Owner) error {
	detail, err := json.Marshal(ownerDetail{Name: o.Name()})
	if err != nil {
		return fmt.Errorf("failed to marshal owner detail: %w", err)
	}
	model := OwnerModel{
		ID:             o.ID(),
		CreatedAt:      o.CreatedAt(),
		UpdatedAt:      o.UpdatedAt(),
		PetOwnerDetail: detail,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func toOwnerDomain(m *OwnerModel) (*ownerDomain.Owner, error) {
	var detail ownerDetail
	if err := json.Unmarshal(m.PetOwnerDetail, &detail); err != nil {
		return nil, fmt.Errorf("failed to unmarshal owner detail %s: %w", m.ID, err)
	}
	return ownerDomain.Reconstruct(m.ID, detail.Name, m.CreatedAt, m.UpdatedAt), nil
}
