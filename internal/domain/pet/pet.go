package pet

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PetType enumerates the supported kinds of pet.
type PetType string

const (
	PetTypeDog     PetType = "DOG"
	PetTypeCat     PetType = "CAT"
	PetTypeUnknown PetType = "UNKNOWN"
)

// IsValid returns true if the pet type is recognized.
func (t PetType) IsValid() bool {
	return t == PetTypeDog || t == PetTypeCat || t == PetTypeUnknown
}

// MaxNameLength is the longest allowed pet name.
const MaxNameLength = 64

// Pet is the aggregate root for a registered pet.
//
// clientID is the tenant that created the record and is the sole
// authorization boundary; it never changes after creation.
type Pet struct {
	id                  uuid.UUID
	clientID            uuid.UUID
	ownerID             uuid.UUID
	name                string
	petType             PetType
	wetClinicRegistered bool
	photos              []string
	createdAt           time.Time
	updatedAt           time.Time
}

// NewPet creates a new pet record with validated fields. The registration
// flag starts false and the photo list starts empty.
func NewPet(clientID, ownerID uuid.UUID, name string, petType PetType) (*Pet, error) {
	if clientID == uuid.Nil {
		return nil, fmt.Errorf("client ID is required")
	}
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("owner ID is required")
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !petType.IsValid() {
		return nil, fmt.Errorf("invalid pet type: %s", petType)
	}

	now := time.Now().UTC()
	return &Pet{
		id:        uuid.New(),
		clientID:  clientID,
		ownerID:   ownerID,
		name:      name,
		petType:   petType,
		photos:    []string{},
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Pet from persistence data (no validation).
func Reconstruct(
	id, clientID, ownerID uuid.UUID,
	name string,
	petType PetType,
	wetClinicRegistered bool,
	photos []string,
	createdAt, updatedAt time.Time,
) *Pet {
	if photos == nil {
		photos = []string{}
	}
	return &Pet{
		id:                  id,
		clientID:            clientID,
		ownerID:             ownerID,
		name:                name,
		petType:             petType,
		wetClinicRegistered: wetClinicRegistered,
		photos:              photos,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}

// --- Getters ---

func (p *Pet) ID() uuid.UUID             { return p.id }
func (p *Pet) ClientID() uuid.UUID       { return p.clientID }
func (p *Pet) OwnerID() uuid.UUID        { return p.ownerID }
func (p *Pet) Name() string              { return p.name }
func (p *Pet) Type() PetType             { return p.petType }
func (p *Pet) WetClinicRegistered() bool { return p.wetClinicRegistered }
func (p *Pet) CreatedAt() time.Time      { return p.createdAt }
func (p *Pet) UpdatedAt() time.Time      { return p.updatedAt }

// Photos returns a copy of the photo file names; mutating the returned
// slice leaves the aggregate untouched.
func (p *Pet) Photos() []string {
	photos := make([]string, len(p.photos))
	copy(photos, p.photos)
	return photos
}

// --- Behavior ---

// IsOwnedByClient checks whether the record belongs to the given client.
func (p *Pet) IsOwnedByClient(clientID uuid.UUID) bool {
	return p.clientID == clientID
}

// Update replaces the name and type. The registration flag and photo list
// are not touched.
func (p *Pet) Update(name string, petType PetType) error {
	if err := validateName(name); err != nil {
		return err
	}
	if !petType.IsValid() {
		return fmt.Errorf("invalid pet type: %s", petType)
	}
	p.name = name
	p.petType = petType
	p.touch()
	return nil
}

// AddPhoto appends the original file name to the photo list.
func (p *Pet) AddPhoto(fileName string) error {
	if fileName == "" {
		return fmt.Errorf("photo file name is required")
	}
	p.photos = append(p.photos, fileName)
	p.touch()
	return nil
}

// MarkClinicRegistered flips the registration flag. The flag is monotonic:
// once registered, a pet stays registered.
func (p *Pet) MarkClinicRegistered() {
	if p.wetClinicRegistered {
		return
	}
	p.wetClinicRegistered = true
	p.touch()
}

// PhotoObjectKey derives the object-store key for the pet's photo blob from
// the given file extension.
func (p *Pet) PhotoObjectKey(extension string) string {
	return fmt.Sprintf("%s.%s", p.id, extension)
}

func (p *Pet) touch() {
	p.updatedAt = time.Now().UTC()
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("pet name is required")
	}
	if len([]rune(name)) > MaxNameLength {
		return fmt.Errorf("pet name exceeds %d characters", MaxNameLength)
	}
	return nil
}
