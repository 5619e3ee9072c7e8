package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/pet-platform/service-registry/internal/application"
	"github.com/pet-platform/service-registry/internal/integration/wetclinic"
	platformkafka "github.com/pet-platform/service-registry/internal/platform/kafka"
)

// RegistrationConfirmationConsumer listens on the clinic registration topic
// and flips the registration flag on confirmed pets.
type RegistrationConfirmationConsumer struct {
	consumer *platformkafka.Consumer
	service  *application.PetService
	logger   *zap.Logger
}

// NewRegistrationConfirmationConsumer creates the consumer for the given
// brokers and consumer group.
func NewRegistrationConfirmationConsumer(
	brokers []string,
	groupID string,
	service *application.PetService,
	logger *zap.Logger,
) *RegistrationConfirmationConsumer {
	consumer := platformkafka.NewConsumer(brokers, groupID, wetclinic.RegistrationTopic, logger)
	return &RegistrationConfirmationConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming confirmations. Blocks until the context is
// cancelled.
func (c *RegistrationConfirmationConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *RegistrationConfirmationConsumer) Close() error {
	return c.consumer.Close()
}

func (c *RegistrationConfirmationConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var confirmation wetclinic.RegistrationRequest
	if err := json.Unmarshal(msg.Value, &confirmation); err != nil {
		c.logger.Error("failed to parse registration confirmation, dropping",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	petID, err := uuid.Parse(confirmation.ID)
	if err != nil {
		c.logger.Error("registration confirmation carries invalid pet id, dropping",
			zap.String("id", confirmation.ID),
			zap.Error(err),
		)
		return nil
	}

	if err := c.service.ApplyRegistrationConfirmation(ctx, petID); err != nil {
		c.logger.Error("failed to apply registration confirmation",
			zap.String("pet_id", petID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
