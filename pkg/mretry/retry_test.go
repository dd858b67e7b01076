package mretry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultInitialBackoff, cfg.InitialBackoff)
	assert.Equal(t, DefaultMaxBackoff, cfg.MaxBackoff)
	assert.Equal(t, DefaultJitterFactor, cfg.JitterFactor)
}

func TestConfig_WithMaxRetries(t *testing.T) {
	cfg := DefaultConfig().WithMaxRetries(5)

	assert.Equal(t, 5, cfg.MaxRetries)
	// Other fields should remain unchanged
	assert.Equal(t, DefaultInitialBackoff, cfg.InitialBackoff)
}

func TestConfig_WithInitialBackoff(t *testing.T) {
	cfg := DefaultConfig().WithInitialBackoff(2 * time.Second)

	assert.Equal(t, 2*time.Second, cfg.InitialBackoff)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
}

func TestConfig_Backoff(t *testing.T) {
	cfg := Config{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     400 * time.Millisecond,
	}

	assert.Equal(t, 100*time.Millisecond, cfg.Backoff(1))
	assert.Equal(t, 200*time.Millisecond, cfg.Backoff(2))
	assert.Equal(t, 400*time.Millisecond, cfg.Backoff(3))
	// Capped at MaxBackoff from here on.
	assert.Equal(t, 400*time.Millisecond, cfg.Backoff(10))
}

func TestConfig_BackoffJitterBounds(t *testing.T) {
	cfg := Config{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		JitterFactor:   0.2,
	}

	for i := 0; i < 50; i++ {
		backoff := cfg.Backoff(1)
		assert.GreaterOrEqual(t, backoff, 80*time.Millisecond)
		assert.LessOrEqual(t, backoff, 120*time.Millisecond)
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0

	err := Do(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientFailures(t *testing.T) {
	transient := errors.New("transient")
	calls := 0

	err := Do(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return transient
		}

		return nil
	}, func(err error) bool { return errors.Is(err, transient) })

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0

	err := Do(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return fatal
	}, func(err error) bool { return false })

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	transient := errors.New("transient")
	calls := 0

	err := Do(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return transient
	}, func(err error) bool { return true })

	require.ErrorIs(t, err, transient)
	assert.Equal(t, fastConfig().MaxRetries+1, calls)
}

func TestDo_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	transient := errors.New("transient")

	calls := 0

	err := Do(ctx, DefaultConfig().WithInitialBackoff(time.Minute), func(ctx context.Context) error {
		calls++

		cancel()

		return transient
	}, func(err error) bool { return true })

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func fastConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}
