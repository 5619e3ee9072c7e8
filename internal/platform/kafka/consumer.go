package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes a single Kafka message. Returning an error makes
// the consumer retry the same message; the offset is committed only after
// the handler succeeds.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

const (
	initialRetryDelay = 1 * time.Second
	maxRetryDelay     = 30 * time.Second
)

// Consumer reads messages from a topic as part of a consumer group.
type Consumer struct {
	reader     *kafkago.Reader
	logger     *zap.Logger
	retryDelay time.Duration
}

// NewConsumer creates a consumer-group reader for the given topic.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, logger: logger, retryDelay: initialRetryDelay}
}

// Consume fetches messages in a loop, invoking the handler for each. A
// failing handler is retried on the same message with increasing backoff,
// and the offset is committed only once the handler succeeds, so delivery
// is at least once. Blocks until the context is cancelled.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return ctx.Err()
			}
			c.logger.Error("failed to fetch message", zap.Error(err))
			if err := c.pause(ctx, c.retryDelay); err != nil {
				return err
			}
			continue
		}

		if err := c.handleWithRetry(ctx, handler, msg); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit offset",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// handleWithRetry invokes the handler until it succeeds, backing off between
// attempts. Returns nil on success, or the context error once it ends.
func (c *Consumer) handleWithRetry(ctx context.Context, handler MessageHandler, msg kafkago.Message) error {
	delay := c.retryDelay
	for {
		err := handler(ctx, msg)
		if err == nil {
			return nil
		}

		c.logger.Error("message handler failed, will retry",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)
		if err := c.pause(ctx, delay); err != nil {
			return err
		}
		if delay < maxRetryDelay {
			delay *= 2
		}
	}
}

func (c *Consumer) pause(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
