package kafka

import (
	"context"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	c := &Consumer{logger: zap.NewNop(), retryDelay: time.Millisecond}

	attempts := 0
	handler := func(_ context.Context, _ kafkago.Message) error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("transient failure")
		}
		return nil
	}

	err := c.handleWithRetry(context.Background(), handler, kafkago.Message{Topic: "t", Offset: 7})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "same message must be retried until the handler succeeds")
}

func TestHandleWithRetry_StopsWhenContextCancelled(t *testing.T) {
	c := &Consumer{logger: zap.NewNop(), retryDelay: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	handler := func(_ context.Context, _ kafkago.Message) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return fmt.Errorf("still failing")
	}

	err := c.handleWithRetry(ctx, handler, kafkago.Message{Topic: "t", Offset: 7})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestPause_ReturnsImmediatelyOnCancelledContext(t *testing.T) {
	c := &Consumer{logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := c.pause(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second, "pause must not wait out the delay after cancellation")
}
