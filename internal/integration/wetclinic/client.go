// Package wetclinic integrates with the external veterinary clinic system.
// Pets are registered there twice on creation: once over HTTP and once via
// an asynchronous Kafka message; the clinic later confirms the registration
// on the same topic.
package wetclinic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pet-platform/service-registry/internal/domain"
	petDomain "github.com/pet-platform/service-registry/internal/domain/pet"
	platformkafka "github.com/pet-platform/service-registry/internal/platform/kafka"
)

const (
	// ServiceID identifies the clinic in integration errors.
	ServiceID = "wet-clinic"

	// RegistrationTopic carries registration requests and confirmations,
	// keyed by pet id.
	RegistrationTopic = "wet-clinic.pets.registrations.v1"

	registrationPath      = "/v1/pet-registrations"
	registrationErrorCode = "PET_REGISTRATION_ERROR"
)

// RegistrationRequest is the payload sent to the clinic on both channels.
type RegistrationRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// RegistrationAck is the clinic's response to an HTTP registration.
type RegistrationAck struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Config holds the clinic integration settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client notifies the clinic of new pets over HTTP and Kafka.
type Client struct {
	baseURL  string
	http     *http.Client
	producer *platformkafka.Producer
	logger   *zap.Logger
}

// NewClient creates a clinic client with a bounded request timeout.
func NewClient(cfg Config, producer *platformkafka.Producer, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		http:     &http.Client{Timeout: timeout},
		producer: producer,
		logger:   logger,
	}
}

// RegisterViaRequest registers the pet with the clinic over HTTP. A 4xx
// response yields a caller-correctable integration error, a 5xx a critical
// one; both carry the clinic's service id and an error code.
func (c *Client) RegisterViaRequest(ctx context.Context, p *petDomain.Pet) (*RegistrationAck, error) {
	body, err := json.Marshal(toRegistrationRequest(p))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal registration request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+registrationPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registration request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, domain.NewIntegrationLogicError(ServiceID, registrationErrorCode, resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, domain.NewIntegrationCriticalError(ServiceID, registrationErrorCode, resp.StatusCode)
	}

	var ack RegistrationAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, fmt.Errorf("failed to decode registration response: %w", err)
	}
	return &ack, nil
}

// RegisterViaMessage publishes the registration to the clinic topic keyed by
// pet id. No acknowledgement is awaited beyond the broker write.
func (c *Client) RegisterViaMessage(ctx context.Context, p *petDomain.Pet) error {
	return c.producer.Publish(ctx, RegistrationTopic, p.ID().String(), toRegistrationRequest(p))
}

func toRegistrationRequest(p *petDomain.Pet) RegistrationRequest {
	return RegistrationRequest{
		ID:   p.ID().String(),
		Name: p.Name(),
		Type: string(p.Type()),
	}
}
