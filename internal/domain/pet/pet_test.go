package pet

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPet_Defaults(t *testing.T) {
	clientID := uuid.New()
	ownerID := uuid.New()

	p, err := NewPet(clientID, ownerID, "Rex", PetTypeDog)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, p.ID())
	assert.Equal(t, clientID, p.ClientID())
	assert.Equal(t, ownerID, p.OwnerID())
	assert.Equal(t, "Rex", p.Name())
	assert.Equal(t, PetTypeDog, p.Type())
	assert.False(t, p.WetClinicRegistered())
	assert.Empty(t, p.Photos())
	assert.Equal(t, p.CreatedAt(), p.UpdatedAt())
}

func TestNewPet_Validation(t *testing.T) {
	clientID := uuid.New()
	ownerID := uuid.New()

	tests := []struct {
		name     string
		clientID uuid.UUID
		ownerID  uuid.UUID
		petName  string
		petType  PetType
	}{
		{"missing client", uuid.Nil, ownerID, "Rex", PetTypeDog},
		{"missing owner", clientID, uuid.Nil, "Rex", PetTypeDog},
		{"empty name", clientID, ownerID, "", PetTypeDog},
		{"blank name", clientID, ownerID, "   ", PetTypeDog},
		{"name too long", clientID, ownerID, strings.Repeat("a", MaxNameLength+1), PetTypeDog},
		{"invalid type", clientID, ownerID, "Rex", PetType("HAMSTER")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPet(tt.clientID, tt.ownerID, tt.petName, tt.petType)
			assert.Error(t, err)
		})
	}
}

func TestNewPet_NameAtMaxLength(t *testing.T) {
	p, err := NewPet(uuid.New(), uuid.New(), strings.Repeat("a", MaxNameLength), PetTypeCat)
	require.NoError(t, err)
	assert.Len(t, p.Name(), MaxNameLength)
}

func TestPet_Update(t *testing.T) {
	p, err := NewPet(uuid.New(), uuid.New(), "Rex", PetTypeDog)
	require.NoError(t, err)
	require.NoError(t, p.AddPhoto("rex.jpg"))
	p.MarkClinicRegistered()

	time.Sleep(time.Millisecond)
	require.NoError(t, p.Update("Barsik", PetTypeCat))

	assert.Equal(t, "Barsik", p.Name())
	assert.Equal(t, PetTypeCat, p.Type())
	assert.True(t, p.WetClinicRegistered(), "update must not touch the registration flag")
	assert.Equal(t, []string{"rex.jpg"}, p.Photos(), "update must not touch photos")
	assert.True(t, p.UpdatedAt().After(p.CreatedAt()))
}

func TestPet_Update_Invalid(t *testing.T) {
	p, err := NewPet(uuid.New(), uuid.New(), "Rex", PetTypeDog)
	require.NoError(t, err)

	assert.Error(t, p.Update("", PetTypeCat))
	assert.Error(t, p.Update("Rex", PetType("BIRD")))
	assert.Equal(t, "Rex", p.Name(), "failed update must leave the pet unchanged")
	assert.Equal(t, PetTypeDog, p.Type())
}

func TestPet_MarkClinicRegistered_Monotonic(t *testing.T) {
	p, err := NewPet(uuid.New(), uuid.New(), "Rex", PetTypeDog)
	require.NoError(t, err)

	p.MarkClinicRegistered()
	require.True(t, p.WetClinicRegistered())
	firstUpdate := p.UpdatedAt()

	time.Sleep(time.Millisecond)
	p.MarkClinicRegistered()
	assert.True(t, p.WetClinicRegistered())
	assert.Equal(t, firstUpdate, p.UpdatedAt(), "second mark must be a no-op")
}

func TestPet_IsOwnedByClient(t *testing.T) {
	clientID := uuid.New()
	p, err := NewPet(clientID, uuid.New(), "Rex", PetTypeDog)
	require.NoError(t, err)

	assert.True(t, p.IsOwnedByClient(clientID))
	assert.False(t, p.IsOwnedByClient(uuid.New()))
}

func TestPet_PhotoObjectKey(t *testing.T) {
	p, err := NewPet(uuid.New(), uuid.New(), "Rex", PetTypeDog)
	require.NoError(t, err)

	assert.Equal(t, p.ID().String()+".jpg", p.PhotoObjectKey("jpg"))
}

func TestReconstruct_NilPhotos(t *testing.T) {
	now := time.Now().UTC()
	p := Reconstruct(uuid.New(), uuid.New(), uuid.New(), "Rex", PetTypeDog, false, nil, now, now)
	assert.NotNil(t, p.Photos())
	assert.Empty(t, p.Photos())
}

func TestPet_Photos_MutationIsolated(t *testing.T) {
	p, err := NewPet(uuid.New(), uuid.New(), "Rex", PetTypeDog)
	require.NoError(t, err)
	require.NoError(t, p.AddPhoto("rex.jpg"))

	photos := p.Photos()
	photos[0] = "hacked.png"
	_ = append(photos, "extra.png")

	require.Len(t, p.Photos(), 1)
	assert.Equal(t, "rex.jpg", p.Photos()[0])
}
