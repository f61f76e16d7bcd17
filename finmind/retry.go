package finmind

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// RetryConfig defines retry behavior for failing requests.
type RetryConfig struct {
	// MaxRetries is the maximum number of retries after the first attempt.
	MaxRetries int

	// InitialBackoff is the wait time before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait time between retries.
	MaxBackoff time.Duration

	// Multiplier is applied to the backoff on each retry.
	Multiplier float64
}

// Default retry constants.
const (
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 1 * time.Second
	DefaultMaxBackoff     = 10 * time.Second
	DefaultMultiplier     = 2.0
)

// DefaultRetryConfig returns the default retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     DefaultMaxRetries,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
		Multiplier:     DefaultMultiplier,
	}
}

// Backoff computes the wait before retry number attempt (starting at 0).
func (c RetryConfig) Backoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= c.Multiplier
	}
	backoff := time.Duration(float64(c.InitialBackoff) * multiplier)
	if c.MaxBackoff > 0 && backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}
	return backoff
}

// Retryable reports whether err is worth retrying: transport failures, rate
// limiting (429, and 402 which FinMind uses when the quota is reached) and
// server errors.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrMalformed) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests ||
			apiErr.StatusCode == http.StatusPaymentRequired ||
			apiErr.StatusCode >= 500
	}
	return true
}
