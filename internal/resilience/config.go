package resilience

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// BlockedPolicy decides how a source that reports automated-access
// detection is treated for the rest of a run.
type BlockedPolicy string

const (
	// BlockedRetry treats Blocked like any other transient failure.
	BlockedRetry BlockedPolicy = "retry"
	// BlockedShorten caps the retries left once a source reports Blocked.
	BlockedShorten BlockedPolicy = "shorten"
	// BlockedDisable stops calling the source after its first Blocked failure.
	BlockedDisable BlockedPolicy = "disable"
)

// ParseBlockedPolicy validates a configured policy name. Empty selects
// BlockedShorten.
func ParseBlockedPolicy(s string) (BlockedPolicy, error) {
	switch p := BlockedPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return BlockedShorten, nil
	case BlockedRetry, BlockedShorten, BlockedDisable:
		return p, nil
	default:
		return "", eris.Errorf("resilience: unknown blocked policy %q", s)
	}
}

// BlockedBreakerConfig returns the per-run breaker config implementing
// policy. retryBudget is the number of further attempts a shortened source
// gets after its first Blocked failure. The boolean is false when the policy
// needs no breaker.
func BlockedBreakerConfig(policy BlockedPolicy, retryBudget int) (CircuitBreakerConfig, bool) {
	cfg := CircuitBreakerConfig{ShouldTrip: IsBlocked}
	switch policy {
	case BlockedRetry:
		return cfg, false
	case BlockedDisable:
		cfg.FailureThreshold = 1
	default:
		if retryBudget < 0 {
			retryBudget = 0
		}
		cfg.FailureThreshold = retryBudget + 1
	}
	return cfg, true
}

// FromRetryConfig converts config values to a RetryConfig. Non-positive
// values keep the defaults, except maxRetries where 0 is a valid setting.
func FromRetryConfig(maxRetries, baseDelayMs, maxDelayMs int, backoffFactor float64, jitter bool, attemptTimeoutMs int) RetryConfig {
	cfg := DefaultRetryConfig()
	if maxRetries >= 0 {
		cfg.MaxRetries = maxRetries
	}
	if baseDelayMs > 0 {
		cfg.BaseDelay = time.Duration(baseDelayMs) * time.Millisecond
	}
	if maxDelayMs > 0 {
		cfg.MaxDelay = time.Duration(maxDelayMs) * time.Millisecond
	}
	if backoffFactor > 0 {
		cfg.BackoffFactor = backoffFactor
	}
	cfg.Jitter = jitter
	if attemptTimeoutMs > 0 {
		cfg.AttemptTimeout = time.Duration(attemptTimeoutMs) * time.Millisecond
	}
	return cfg
}
