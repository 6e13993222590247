package llm

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/ulilazmi100/micro-skill/internal/logging"
)

// Sleeper waits for d, returning early with ctx.Err() when ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// RetryProvider is a decorator that retries 5xx upstream responses with
// deterministic exponential backoff. Every other failure is returned as is.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	sleep  Sleeper
	log    *logging.Logger
}

// WithRetry wraps a Provider with the bounded retry policy.
func WithRetry(p Provider, cfg RetryConfig, sleep Sleeper, log *logging.Logger) Provider {
	if sleep == nil {
		sleep = SleepContext
	}
	if log == nil {
		log = logging.Nop()
	}
	return &RetryProvider{inner: p, config: cfg, sleep: sleep, log: log}
}

func (r *RetryProvider) Call(ctx context.Context, req Request) (*Result, error) {
	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		res, err := r.inner.Call(ctx, req)
		if err == nil {
			return res, nil
		}

		var pe *ProviderError
		if !errors.As(err, &pe) || !pe.Retryable() || attempt == r.config.MaxAttempts {
			return nil, err
		}

		wait := r.config.Backoff(attempt)
		r.log.Debug("retrying provider call",
			"provider", r.inner.Name(),
			"attempt", attempt,
			"status", pe.Status,
			"wait", wait,
		)
		if serr := r.sleep(ctx, wait); serr != nil {
			return nil, &ProviderError{
				Provider: pe.Provider,
				Code:     CodeProviderError,
				Status:   pe.Status,
				Message:  "cancelled while waiting to retry",
				Details:  pe.Details,
				Err:      serr,
			}
		}
	}

	return nil, &ProviderError{
		Provider: r.inner.Name(),
		Code:     CodeRetriesExhausted,
		Message:  "no attempts were made",
	}
}

func (r *RetryProvider) Name() Name { return r.inner.Name() }

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

// Backoff returns the wait after the given 1-based failed attempt:
// InitialWait * Multiplier^(attempt-1).
func (c RetryConfig) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(float64(c.InitialWait) * math.Pow(c.Multiplier, float64(attempt-1)))
}

// TimeoutProvider bounds each call to the wrapped provider.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithAttemptTimeout wraps p so every call runs under its own deadline.
// A non-positive timeout returns p unchanged.
func WithAttemptTimeout(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, timeout: timeout}
}

func (t *TimeoutProvider) Call(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Call(ctx, req)
}

func (t *TimeoutProvider) Name() Name { return t.inner.Name() }

func (t *TimeoutProvider) ModelID() string { return t.inner.ModelID() }
