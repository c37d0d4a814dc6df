package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"docai/internal/domain"
	"docai/internal/port"
)

// RetryableError is a transient backend failure (rate limit or server error).
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns the wait before attempt n (0-indexed), capped at ceiling, with jitter.
func Backoff(attempt int, base, ceiling time.Duration) time.Duration {
	d := base
	for i := 0; i < attempt && d < ceiling; i++ {
		d *= 2
	}
	if d > ceiling {
		d = ceiling
	}
	if d < 2 {
		return d
	}
	return d + time.Duration(rand.Int63n(int64(d)/2))
}

// RetryGenerator retries retryable failures of the wrapped generator.
type RetryGenerator struct {
	next       port.Generator
	maxRetries int
	base       time.Duration
	max        time.Duration
}

func NewRetryGenerator(next port.Generator, maxRetries int, base time.Duration) *RetryGenerator {
	if base <= 0 {
		base = time.Second
	}
	return &RetryGenerator{
		next:       next,
		maxRetries: maxRetries,
		base:       base,
		max:        30 * time.Second,
	}
}

func (g *RetryGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := Backoff(attempt-1, g.base, g.max)
			log.Warn().Int("attempt", attempt+1).Dur("backoff", backoff).Err(lastErr).Msg("Retrying generation")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		out, err := g.next.Generate(ctx, req)
		if err == nil {
			return out, nil
		}
		if !IsRetryable(err) || ctx.Err() != nil {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("giving up after %d retries: %w", g.maxRetries, lastErr)
}

func (g *RetryGenerator) ModelName() string {
	return g.next.ModelName()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
