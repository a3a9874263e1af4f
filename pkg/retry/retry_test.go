package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RbroH99/les-sha-accesories/pkg/logger"
)

func testConfig(maxAttempts int, retryable ...error) *RetryConfig {
	return &RetryConfig{
		MaxAttempts: maxAttempts,
		BackoffStrategy: &ConstantBackoff{
			Interval: time.Millisecond,
		},
		Logger:          logger.NewNop(),
		RetryableErrors: retryable,
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0

	err := Retry(context.Background(), func() error {
		calls++
		return nil
	}, testConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryEventuallySucceeds(t *testing.T) {
	calls := 0

	err := Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, testConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	sentinel := errors.New("still broken")
	calls := 0

	err := Retry(context.Background(), func() error {
		calls++
		return sentinel
	}, testConfig(3))

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	transient := errors.New("transient")
	fatal := errors.New("fatal")
	calls := 0

	err := Retry(context.Background(), func() error {
		calls++
		return fatal
	}, testConfig(5, transient))

	require.Error(t, err)
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, func() error {
		return errors.New("never reached")
	}, testConfig(3))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExponentialBackoffGrows(t *testing.T) {
	b := &ExponentialBackoff{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
		JitterFactor:    0,
	}

	first := b.NextBackoff(1)
	second := b.NextBackoff(2)

	assert.Equal(t, 100*time.Millisecond, first)
	assert.Equal(t, 200*time.Millisecond, second)
	assert.LessOrEqual(t, b.NextBackoff(10), time.Second)
}
