package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls retry behavior with exponential backoff and jitter.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	// 0 means a single attempt. Default: 2.
	MaxRetries int

	// BaseDelay is the wait before the first retry. Default: 1s.
	BaseDelay time.Duration

	// MaxDelay caps every wait, jitter included. Default: 5s.
	MaxDelay time.Duration

	// BackoffFactor scales the wait after each attempt. Default: 2.0.
	BackoffFactor float64

	// Jitter randomizes each wait by ±JitterFraction.
	Jitter bool

	// JitterFraction is the jitter range as a fraction of the computed delay
	// (0.25 = ±25%). Default: 0.25.
	JitterFraction float64

	// AttemptTimeout bounds each attempt individually. Zero means the attempt
	// only observes the parent context.
	AttemptTimeout time.Duration

	// Breaker optionally guards every attempt. Once it opens, the remaining
	// retries are skipped.
	Breaker *CircuitBreaker

	// ShouldRetry optionally overrides the default transient-error check.
	// If nil, IsTransient is used.
	ShouldRetry func(err error) bool

	// OnRetry is called before each retry sleep with attempt number and error.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig returns the retry policy used for source calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     2,
		BaseDelay:      time.Second,
		MaxDelay:       5 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         true,
		JitterFraction: 0.25,
	}
}

// Attempts returns the total number of attempts the config allows.
func (c RetryConfig) Attempts() int {
	return c.MaxRetries + 1
}

// Do executes fn with retry logic according to cfg. Same semantics as Execute.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := Execute(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Execute runs fn until it succeeds, fails with a non-retryable error, or
// exhausts cfg.MaxRetries retries. Exhaustion returns a *FinalFailure that
// wraps the last error. Parent context cancellation stops retries and
// returns the context error.
func Execute[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = applyDefaults(cfg)

	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}

	var zero T
	var lastErr error
	attempts := cfg.Attempts()
	for attempt := 0; attempt < attempts; attempt++ {
		val, err := runAttempt(ctx, cfg, fn)
		if err == nil {
			return val, nil
		}
		if errors.Is(err, ErrCircuitOpen) && lastErr != nil {
			return zero, &FinalFailure{Attempts: attempt, Err: lastErr}
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if !shouldRetry(lastErr) {
			return zero, lastErr
		}

		if attempt >= attempts-1 {
			break
		}

		if cfg.Breaker != nil && cfg.Breaker.State() == CircuitOpen {
			return zero, &FinalFailure{Attempts: attempt + 1, Err: lastErr}
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, lastErr)
		}

		timer := time.NewTimer(computeBackoff(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, &FinalFailure{Attempts: attempts, Err: lastErr}
}

// runAttempt scopes the per-attempt deadline to a single call of fn.
func runAttempt[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	attemptCtx := ctx
	if cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, cfg.AttemptTimeout)
		defer cancel()
	}

	var (
		val T
		err error
	)
	if cfg.Breaker != nil {
		val, err = ExecuteVal(attemptCtx, cfg.Breaker, fn)
	} else {
		val, err = fn(attemptCtx)
	}

	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		var se *SourceError
		if !errors.As(err, &se) {
			err = &SourceError{Kind: KindTimeout, Err: err}
		}
	}
	return val, err
}

func applyDefaults(cfg RetryConfig) RetryConfig {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 5 * time.Second
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = 2.0
	}
	if cfg.JitterFraction <= 0 {
		cfg.JitterFraction = 0.25
	}
	return cfg
}

// Backoff returns the un-jittered wait after the given 0-based attempt.
func Backoff(attempt int, cfg RetryConfig) time.Duration {
	cfg = applyDefaults(cfg)
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.BackoffFactor, float64(attempt))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	return time.Duration(delay)
}

func computeBackoff(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(Backoff(attempt, cfg))

	// Apply jitter: ±JitterFraction of delay.
	if cfg.Jitter {
		jitterRange := delay * cfg.JitterFraction
		delay += (rand.Float64()*2 - 1) * jitterRange // [-jitterRange, +jitterRange]
	}

	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// RetryLogger returns an OnRetry callback that logs each retry attempt.
func RetryLogger(source, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying source call",
			zap.String("source", source),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.String("kind", KindOf(err).String()),
			zap.Error(err),
		)
	}
}
