//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pet-platform/service-registry/internal/application"
	ownerDomain "github.com/pet-platform/service-registry/internal/domain/owner"
	petDomain "github.com/pet-platform/service-registry/internal/domain/pet"
	registryEvents "github.com/pet-platform/service-registry/internal/events"
	"github.com/pet-platform/service-registry/internal/integration/wetclinic"
	platformkafka "github.com/pet-platform/service-registry/internal/platform/kafka"
	"github.com/pet-platform/service-registry/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// registryStack holds wired-up registry service components.
type registryStack struct {
	Service  *application.PetService
	Consumer *registryEvents.RegistrationConfirmationConsumer
	PetRepo  petDomain.Repository
	OwnerID  uuid.UUID
	Cleanup  func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_registry",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_registry sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(&repository.PetModel{}, &repository.OwnerModel{}))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, wetclinic.RegistrationTopic)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupRegistryStack wires up the full registry service stack against the
// test containers, with a stub clinic HTTP endpoint and an in-memory blob
// store standing in for the external systems.
func setupRegistryStack(t *testing.T, db *gorm.DB, brokers []string) *registryStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	ctx := context.Background()

	clinicSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req wetclinic.RegistrationRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(wetclinic.RegistrationAck{ID: req.ID, Description: "registered"})
	}))

	petRepo := repository.NewGormPetRepository(db)
	ownerRepo := repository.NewGormOwnerRepository(db)

	owner, err := ownerDomain.NewOwner("Integration Owner")
	require.NoError(t, err)
	require.NoError(t, ownerRepo.Save(ctx, owner))

	producer := platformkafka.NewProducer(brokers, logger)
	clinic := wetclinic.NewClient(wetclinic.Config{BaseURL: clinicSrv.URL, Timeout: 5 * time.Second}, producer, logger)

	svc := application.NewPetService(
		petRepo,
		application.NewOwnerService(ownerRepo),
		clinic,
		newMemoryBlobStore(),
		noopMetrics{},
		owner.ID(),
		[]string{"Murka"},
		logger,
	)

	groupID := fmt.Sprintf("test-registry-%s", uuid.New().String()[:8])
	consumer := registryEvents.NewRegistrationConfirmationConsumer(brokers, groupID, svc, logger)

	return &registryStack{
		Service:  svc,
		Consumer: consumer,
		PetRepo:  petRepo,
		OwnerID:  owner.ID(),
		Cleanup: func() {
			_ = producer.Close()
			clinicSrv.Close()
		},
	}
}

// seedPet inserts a pet row directly, bypassing the service and its side
// effects.
func seedPet(t *testing.T, repo petDomain.Repository, clientID, ownerID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	p, err := petDomain.NewPet(clientID, ownerID, name, petDomain.PetTypeDog)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), p))
	return p.ID()
}

// publishConfirmation publishes a clinic registration confirmation for the pet.
func publishConfirmation(t *testing.T, brokers []string, petID uuid.UUID, name, petType string) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := platformkafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	err := producer.Publish(context.Background(), wetclinic.RegistrationTopic, petID.String(),
		wetclinic.RegistrationRequest{ID: petID.String(), Name: name, Type: petType})
	require.NoError(t, err, "failed to publish confirmation")
}

// waitForPetRegistered polls the pet until its registration flag is set.
func waitForPetRegistered(t *testing.T, repo petDomain.Repository, petID uuid.UUID, timeout time.Duration) {
	t.Helper()
	require.Eventually(t, func() bool {
		p, err := repo.FindByID(context.Background(), petID)
		if err != nil {
			return false
		}
		return p.WetClinicRegistered()
	}, timeout, 200*time.Millisecond, "pet %s never marked as clinic-registered", petID)
}

// consumeOneRegistration reads the clinic topic until it finds a registration
// message for the given pet id.
func consumeOneRegistration(t *testing.T, brokers []string, petID uuid.UUID, timeout time.Duration) wetclinic.RegistrationRequest {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       wetclinic.RegistrationTopic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for registration message for pet %s", petID)
			}
			continue
		}
		var req wetclinic.RegistrationRequest
		if err := json.Unmarshal(msg.Value, &req); err != nil {
			continue
		}
		if req.ID == petID.String() {
			return req
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}

// memoryBlobStore is an in-memory stand-in for the object store.
type memoryBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *memoryBlobStore) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

func (s *memoryBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("no such object %q", key)
	}
	return data, nil
}

func (s *memoryBlobStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

type noopMetrics struct{}

func (noopMetrics) PetCreated(string) {}
