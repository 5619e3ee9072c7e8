package application

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pet-platform/service-registry/internal/domain"
	ownerDomain "github.com/pet-platform/service-registry/internal/domain/owner"
	petDomain "github.com/pet-platform/service-registry/internal/domain/pet"
	"github.com/pet-platform/service-registry/internal/integration/wetclinic"
)

// CreatePetRequest is the request DTO for registering a pet.
type CreatePetRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
	Type string `json:"type" binding:"required,oneof=DOG CAT UNKNOWN"`
}

// UpdatePetRequest is the request DTO for renaming or retyping a pet.
type UpdatePetRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
	Type string `json:"type" binding:"required,oneof=DOG CAT UNKNOWN"`
}

// OwnerDTO is the API representation of a pet owner.
type OwnerDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// PetDTO is the API representation of a pet record.
type PetDTO struct {
	ID                  uuid.UUID `json:"id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Name                string    `json:"name"`
	Type                string    `json:"type"`
	WetClinicRegistered bool      `json:"wet_clinic_registered"`
	Photos              []string  `json:"photos"`
	Owner               *OwnerDTO `json:"owner,omitempty"`
}

// PetPage is one page of a client's pets, newest first. HasMore is an
// approximation: true whenever the page came back full.
type PetPage struct {
	Items      []PetDTO `json:"items"`
	PageNumber int      `json:"page_number"`
	HasMore    bool     `json:"has_more"`
}

// FileData is a downloaded photo blob with its derived metadata.
type FileData struct {
	FileName  string
	Extension string
	MediaType string
	Bytes     []byte
}

// ClinicNotifier is the registration boundary to the external clinic.
type ClinicNotifier interface {
	RegisterViaRequest(ctx context.Context, p *petDomain.Pet) (*wetclinic.RegistrationAck, error)
	RegisterViaMessage(ctx context.Context, p *petDomain.Pet) error
}

// ObjectStore stores photo blobs by derived key.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
}

// CreationMetrics counts pet creations by type.
type CreationMetrics interface {
	PetCreated(petType string)
}

const sideEffectTimeout = 10 * time.Second

// PetService implements the pet lifecycle: state transitions, the
// client-identity authorization rule, and the best-effort side effects of
// creation.
type PetService struct {
	repo            petDomain.Repository
	owners          *OwnerService
	clinic          ClinicNotifier
	store           ObjectStore
	metrics         CreationMetrics
	defaultOwnerID  uuid.UUID
	disallowedNames map[string]struct{}
	logger          *zap.Logger
}

// NewPetService creates a PetService. defaultOwnerID is the owner assigned
// to every new pet until real owner selection exists; disallowedNames are
// rejected at creation with a field-level validation error.
func NewPetService(
	repo petDomain.Repository,
	owners *OwnerService,
	clinic ClinicNotifier,
	store ObjectStore,
	metrics CreationMetrics,
	defaultOwnerID uuid.UUID,
	disallowedNames []string,
	logger *zap.Logger,
) *PetService {
	disallowed := make(map[string]struct{}, len(disallowedNames))
	for _, name := range disallowedNames {
		disallowed[name] = struct{}{}
	}
	return &PetService{
		repo:            repo,
		owners:          owners,
		clinic:          clinic,
		store:           store,
		metrics:         metrics,
		defaultOwnerID:  defaultOwnerID,
		disallowedNames: disallowed,
		logger:          logger,
	}
}

// Create registers a new pet for the client. The clinic notifications and
// the creation metric are best-effort: none of them can fail the create,
// and the caller must not assume the clinic was ever notified.
func (s *PetService) Create(ctx context.Context, clientID uuid.UUID, req CreatePetRequest) (*PetDTO, error) {
	if _, ok := s.disallowedNames[req.Name]; ok {
		return nil, domain.NewFieldValidationError(
			"pet name is not allowed",
			domain.ErrorField{
				Key:         "name",
				Code:        "PET_NAME_TO_MANY",
				Description: fmt.Sprintf("There are enough pets named %q already, pick another name", req.Name),
			},
		)
	}

	p, err := petDomain.NewPet(clientID, s.defaultOwnerID, req.Name, petDomain.PetType(req.Type))
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.repo.Save(ctx, p); err != nil {
		s.logger.Error("failed to create pet", zap.Error(err))
		return nil, fmt.Errorf("failed to create pet: %w", err)
	}

	s.metrics.PetCreated(string(p.Type()))
	s.notifyClinic(p)

	s.logger.Info("pet created",
		zap.String("pet_id", p.ID().String()),
		zap.String("client_id", clientID.String()),
		zap.String("type", string(p.Type())),
	)

	result := s.toDTO(p, nil)
	return &result, nil
}

// FindByID returns the pet enriched with its owner. NotFound if the id is
// unknown, Forbidden if the record belongs to another client.
func (s *PetService) FindByID(ctx context.Context, id, clientID uuid.UUID) (*PetDTO, error) {
	p, err := s.findOwned(ctx, id, clientID)
	if err != nil {
		return nil, err
	}

	o, err := s.owners.GetByID(ctx, p.OwnerID())
	if err != nil {
		return nil, err
	}

	result := s.toDTO(p, o)
	return &result, nil
}

// FindAllByClient returns one page of the client's pets ordered by creation
// time descending, each enriched with its owner where one exists.
func (s *PetService) FindAllByClient(ctx context.Context, clientID uuid.UUID, pageNumber, pageSize int) (*PetPage, error) {
	pets, err := s.repo.FindByClientID(ctx, clientID, pageNumber, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}

	ownerIDs := make([]uuid.UUID, 0, len(pets))
	seen := make(map[uuid.UUID]struct{})
	for _, p := range pets {
		if _, ok := seen[p.OwnerID()]; !ok {
			seen[p.OwnerID()] = struct{}{}
			ownerIDs = append(ownerIDs, p.OwnerID())
		}
	}

	ownersByID, err := s.owners.FindAllByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	items := make([]PetDTO, len(pets))
	for i, p := range pets {
		items[i] = s.toDTO(p, ownersByID[p.OwnerID()])
	}

	return &PetPage{
		Items:      items,
		PageNumber: pageNumber,
		HasMore:    len(items) >= pageSize,
	}, nil
}

// UpdateByID replaces the pet's name and type. Photos and the registration
// flag are untouched.
func (s *PetService) UpdateByID(ctx context.Context, id, clientID uuid.UUID, req UpdatePetRequest) error {
	p, err := s.findOwned(ctx, id, clientID)
	if err != nil {
		return err
	}

	if err := p.Update(req.Name, petDomain.PetType(req.Type)); err != nil {
		return domain.NewValidationError(err.Error())
	}

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("failed to update pet", zap.String("pet_id", id.String()), zap.Error(err))
		return fmt.Errorf("failed to update pet: %w", err)
	}

	s.logger.Info("pet updated", zap.String("pet_id", id.String()))
	return nil
}

// DeleteByID removes the pet record and best-effort removes its photo blobs.
func (s *PetService) DeleteByID(ctx context.Context, id, clientID uuid.UUID) error {
	p, err := s.findOwned(ctx, id, clientID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete pet: %w", err)
	}

	for _, key := range photoObjectKeys(p) {
		if err := s.store.Remove(ctx, key); err != nil {
			s.logger.Warn("failed to remove photo blob",
				zap.String("pet_id", id.String()),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("pet deleted", zap.String("pet_id", id.String()))
	return nil
}

// UploadPhoto stores the photo blob first and only then records the file
// name on the pet, so metadata never references a blob that was not
// written. If the metadata write fails the blob is removed again.
func (s *PetService) UploadPhoto(ctx context.Context, id, clientID uuid.UUID, fileBytes []byte, originalFileName string) error {
	p, err := s.findOwned(ctx, id, clientID)
	if err != nil {
		return err
	}
	if originalFileName == "" {
		return domain.NewValidationError("photo file name is required")
	}

	key := p.PhotoObjectKey(fileExtension(originalFileName))
	if err := s.store.Put(ctx, key, fileBytes); err != nil {
		s.logger.Error("failed to store photo blob", zap.String("pet_id", id.String()), zap.Error(err))
		return fmt.Errorf("failed to store photo: %w", err)
	}

	if err := p.AddPhoto(originalFileName); err != nil {
		return domain.NewValidationError(err.Error())
	}
	if err := s.repo.Update(ctx, p); err != nil {
		if removeErr := s.store.Remove(ctx, key); removeErr != nil {
			s.logger.Warn("failed to clean up photo blob after metadata failure",
				zap.String("key", key), zap.Error(removeErr))
		}
		return fmt.Errorf("failed to record photo: %w", err)
	}

	s.logger.Info("photo uploaded",
		zap.String("pet_id", id.String()),
		zap.String("file_name", originalFileName),
	)
	return nil
}

// DownloadPhoto fetches the pet's current photo. The key is derived from
// the first recorded photo's extension. Any blob fetch failure surfaces as
// NotFound, keeping storage detail away from the caller.
func (s *PetService) DownloadPhoto(ctx context.Context, id, clientID uuid.UUID) (*FileData, error) {
	p, err := s.findOwned(ctx, id, clientID)
	if err != nil {
		return nil, err
	}

	photos := p.Photos()
	if len(photos) == 0 {
		return nil, domain.NewNotFoundError("PetPhoto", id.String())
	}

	ext := fileExtension(photos[0])
	key := p.PhotoObjectKey(ext)

	data, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Warn("failed to fetch photo blob",
			zap.String("pet_id", id.String()),
			zap.String("key", key),
			zap.Error(err),
		)
		nf := domain.NewNotFoundError("PetPhoto", id.String())
		return nil, fmt.Errorf("%w: %w", nf, err)
	}

	return &FileData{
		FileName:  key,
		Extension: ext,
		MediaType: mediaTypeFor(ext),
		Bytes:     data,
	}, nil
}

// ApplyRegistrationConfirmation flips the registration flag for the pet the
// clinic confirmed. Unknown ids are dropped silently; the event may arrive
// late or refer to a deleted pet, and that is not an error. Applying the
// confirmation twice is a no-op.
func (s *PetService) ApplyRegistrationConfirmation(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			s.logger.Debug("registration confirmation for unknown pet, dropping",
				zap.String("pet_id", id.String()))
			return nil
		}
		return err
	}

	if p.WetClinicRegistered() {
		return nil
	}

	p.MarkClinicRegistered()
	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to persist registration flag: %w", err)
	}

	s.logger.Info("pet registered at wet clinic",
		zap.String("pet_id", p.ID().String()),
		zap.String("name", p.Name()),
	)
	return nil
}

// findOwned is the single source of truth for the existence and ownership
// checks shared by read, update, delete, and photo operations.
func (s *PetService) findOwned(ctx context.Context, id, clientID uuid.UUID) (*petDomain.Pet, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedByClient(clientID) {
		return nil, domain.NewForbiddenError("pet belongs to another client")
	}
	return p, nil
}

// notifyClinic fires both clinic notifications, each in its own goroutine
// with a detached bounded context. Failures are logged and never retried.
func (s *PetService) notifyClinic(p *petDomain.Pet) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if _, err := s.clinic.RegisterViaRequest(ctx, p); err != nil {
			s.logger.Warn("clinic HTTP registration failed",
				zap.String("pet_id", p.ID().String()), zap.Error(err))
		}
	}()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.clinic.RegisterViaMessage(ctx, p); err != nil {
			s.logger.Warn("clinic message registration failed",
				zap.String("pet_id", p.ID().String()), zap.Error(err))
		}
	}()
}

func (s *PetService) toDTO(p *petDomain.Pet, o *ownerDomain.Owner) PetDTO {
	dto := PetDTO{
		ID:                  p.ID(),
		CreatedAt:           p.CreatedAt(),
		UpdatedAt:           p.UpdatedAt(),
		Name:                p.Name(),
		Type:                string(p.Type()),
		WetClinicRegistered: p.WetClinicRegistered(),
		Photos:              p.Photos(),
	}
	if o != nil {
		dto.Owner = &OwnerDTO{ID: o.ID(), Name: o.Name()}
	}
	return dto
}

func photoObjectKeys(p *petDomain.Pet) []string {
	seen := make(map[string]struct{})
	keys := make([]string, 0, len(p.Photos()))
	for _, fileName := range p.Photos() {
		key := p.PhotoObjectKey(fileExtension(fileName))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

func fileExtension(fileName string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 || idx == len(fileName)-1 {
		return ""
	}
	return fileName[idx+1:]
}

func mediaTypeFor(extension string) string {
	if mt := mime.TypeByExtension("." + extension); mt != "" {
		return mt
	}
	return "application/octet-stream"
}
