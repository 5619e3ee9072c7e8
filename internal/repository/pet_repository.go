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
	petDomain "github.com/pet-platform/service-registry/internal/domain/pet"
)

// petDetail is the JSONB document stored alongside the system columns. All
// business fields live here so the table schema never changes when fields do.
type petDetail struct {
	ClientID            uuid.UUID `json:"clientId"`
	OwnerID             uuid.UUID `json:"ownerId"`
	Name                string    `json:"name"`
	Type                string    `json:"type"`
	WetClinicRegistered bool      `json:"wetClinicRegistered"`
	Photos              []string  `json:"photos"`
}

// PetModel is the GORM model for the pets table.
type PetModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
	PetDetail []byte    `gorm:"type:jsonb;not null"`
}

func (PetModel) TableName() string { return "pets" }

// GormPetRepository implements pet.Repository using GORM.
type GormPetRepository struct {
	db *gorm.DB
}

func NewGormPetRepository(db *gorm.DB) *GormPetRepository {
	return &GormPetRepository{db: db}
}

func (r *GormPetRepository) FindByID(ctx context.Context, id uuid.UUID) (*petDomain.Pet, error) {
	var model PetModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Pet", id.String())
		}
		return nil, err
	}
	return toPetDomain(&model)
}

func (r *GormPetRepository) FindByClientID(ctx context.Context, clientID uuid.UUID, pageNumber, pageSize int) ([]*petDomain.Pet, error) {
	var models []PetModel
	if err := r.db.WithContext(ctx).
		Where("pet_detail ->> 'clientId' = ?", clientID.String()).
		Order("created_at DESC").
		Offset(pageNumber * pageSize).
		Limit(pageSize).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find pets by client: %w", err)
	}

	pets := make([]*petDomain.Pet, len(models))
	for i, m := range models {
		p, err := toPetDomain(&m)
		if err != nil {
			return nil, err
		}
		pets[i] = p
	}
	return pets, nil
}

func (r *GormPetRepository) Save(ctx context.Context, pet *petDomain.Pet) error {
	model, err := toPetModel(pet)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// Update rewrites the document and bumps updated_at. created_at is never
// touched; last write wins on concurrent updates.
func (r *GormPetRepository) Update(ctx context.Context, pet *petDomain.Pet) error {
	model, err := toPetModel(pet)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&PetModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"pet_detail": model.PetDetail,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Pet", pet.ID().String())
	}
	return nil
}

func (r *GormPetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&PetModel{}).Error
}

// --- Conversions ---

func toPetModel(p *petDomain.Pet) (*PetModel, error) {
	detail, err := json.Marshal(petDetail{
		ClientID:            p.ClientID(),
		OwnerID:             p.OwnerID(),
		Name:                p.Name(),
		Type:                string(p.Type()),
		WetClinicRegistered: p.WetClinicRegistered(),
		Photos:              p.Photos(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pet detail: %w", err)
	}

	return &PetModel{
		ID:        p.ID(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
		PetDetail: detail,
	}, nil
}

func toPetDomain(m *PetModel) (*petDomain.Pet, error) {
	var detail petDetail
	if err := json.Unmarshal(m.PetDetail, &detail); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pet detail %s: %w", m.ID, err)
	}

	return petDomain.Reconstruct(
		m.ID, detail.ClientID, detail.OwnerID,
		detail.Name,
		petDomain.PetType(detail.Type),
		detail.WetClinicRegistered,
		detail.Photos,
		m.CreatedAt, m.UpdatedAt,
	), nil
}
