// Package retry runs an operation again with exponential backoff and jitter
// when it fails with a transient error.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   1 * time.Second,
		MaxDelay:       10 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// HTTPError carries a response status so IsRetryable can tell 5xx from 4xx.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// RetryableStatus reports whether a response with this status is worth
// asking for again.
func RetryableStatus(code int) bool {
	switch {
	case code >= 500 && code < 600:
		return true
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return true
	default:
		return false
	}
}

// Permanent marks err as not worth retrying regardless of its type.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

func (cfg Config) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = cfg.InitialDelay
	if cfg.MaxDelay > 0 {
		eb.MaxInterval = cfg.MaxDelay
	}
	if cfg.Multiplier > 0 {
		eb.Multiplier = cfg.Multiplier
	}
	eb.RandomizationFactor = min(max(cfg.JitterFraction, 0), 1)
	// attempts bound the loop, not wall time
	eb.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(cfg.MaxAttempts-1)), ctx)
}

// Do calls fn until it succeeds, returns a non-retryable error, runs out of
// attempts, or ctx is done. name only shows up in logs.
func Do(ctx context.Context, cfg Config, name string, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	attempt := 0
	op := func() error {
		attempt++
		err := fn(ctx)
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, delay time.Duration) {
		log.Printf("[retry] %s failed attempt=%d/%d delay=%s err=%v",
			name, attempt, cfg.MaxAttempts, delay.Round(time.Millisecond), err)
	}

	err := backoff.RetryNotify(op, cfg.backOff(ctx), notify)
	switch {
	case err == nil:
		if attempt > 1 {
			log.Printf("[retry] %s succeeded attempt=%d", name, attempt)
		}
		return nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return fmt.Errorf("retry aborted: %w", err)
	case IsRetryable(err):
		return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, err)
	default:
		return err
	}
}

// IsRetryable reports whether err looks transient. Anything that is not a
// cancellation, a 4xx or marked Permanent is retried, since the browser
// driver reports network failures as plain strings.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return RetryableStatus(httpErr.StatusCode)
	}

	return true
}
