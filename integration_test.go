//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pet-platform/service-registry/internal/application"
)

// TestCreatePet_PublishesClinicRegistration verifies that creating a pet
// publishes a registration message for the clinic on the shared topic.
func TestCreatePet_PublishesClinicRegistration(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRegistryStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.Cleanup()

	created, err := stack.Service.Create(context.Background(), uuid.New(),
		application.CreatePetRequest{Name: "Rex", Type: "DOG"})
	require.NoError(t, err)

	msg := consumeOneRegistration(t, infra.KafkaBrokers, created.ID, 15*time.Second)
	assert.Equal(t, created.ID.String(), msg.ID)
	assert.Equal(t, "Rex", msg.Name)
	assert.Equal(t, "DOG", msg.Type)
}

// TestRegistrationConfirmation_MarksPetRegistered verifies that a clinic
// confirmation consumed from the shared topic flips the pet's registration
// flag.
func TestRegistrationConfirmation_MarksPetRegistered(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRegistryStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.Cleanup()
	defer func() { _ = stack.Consumer.Close() }()

	// Seed a pet directly so no outbound registration message exists yet.
	clientID := uuid.New()
	petID := seedPet(t, stack.PetRepo, clientID, stack.OwnerID, "Barsik")

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	publishConfirmation(t, infra.KafkaBrokers, petID, "Barsik", "DOG")

	waitForPetRegistered(t, stack.PetRepo, petID, 15*time.Second)

	// The confirmed pet still reads back normally through the service.
	found, err := stack.Service.FindByID(context.Background(), petID, clientID)
	require.NoError(t, err)
	assert.True(t, found.WetClinicRegistered)
}
