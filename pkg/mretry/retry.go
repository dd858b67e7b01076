// Package mretry is the single resilience layer for broker calls: exponential
// backoff with jitter, applied only to failures the caller marks retryable.
package mretry

import (
	"context"
	"math/rand"
	"time"
)

const (
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 250 * time.Millisecond
	DefaultMaxBackoff     = 5 * time.Second
	DefaultJitterFactor   = 0.2
)

// Config tunes one retry loop.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JitterFactor   float64
}

// DefaultConfig returns the broker-boundary defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     DefaultMaxRetries,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
		JitterFactor:   DefaultJitterFactor,
	}
}

// WithMaxRetries returns a copy of the config with MaxRetries replaced.
func (c Config) WithMaxRetries(n int) Config {
	c.MaxRetries = n
	return c
}

// WithInitialBackoff returns a copy of the config with InitialBackoff replaced.
func (c Config) WithInitialBackoff(d time.Duration) Config {
	c.InitialBackoff = d
	return c
}

// WithMaxBackoff returns a copy of the config with MaxBackoff replaced.
func (c Config) WithMaxBackoff(d time.Duration) Config {
	c.MaxBackoff = d
	return c
}

// Backoff computes the sleep before the given 1-based attempt, jitter included.
func (c Config) Backoff(attempt int) time.Duration {
	backoff := c.InitialBackoff

	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= c.MaxBackoff {
			backoff = c.MaxBackoff
			break
		}
	}

	if c.JitterFactor > 0 {
		jitter := 1 + c.JitterFactor*(2*rand.Float64()-1)
		backoff = time.Duration(float64(backoff) * jitter)
	}

	return backoff
}

// Do runs fn up to MaxRetries+1 times, sleeping between attempts while
// retryable reports the failure as transient. Cancellation cuts the loop.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error, retryable func(error) bool) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Backoff(attempt)):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if retryable == nil || !retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}
