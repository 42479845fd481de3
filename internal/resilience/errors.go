package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// FailureKind classifies why a source call failed.
type FailureKind int

const (
	// KindUnknown is an unclassified failure. It is not retried.
	KindUnknown FailureKind = iota
	// KindUnavailable means the source could not be reached or answered 5xx.
	KindUnavailable
	// KindRateLimited means the source throttled the caller.
	KindRateLimited
	// KindBlocked means the source detected automated access.
	KindBlocked
	// KindTimeout means a single call exceeded its own deadline.
	KindTimeout
)

func (k FailureKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindRateLimited:
		return "rate_limited"
	case KindBlocked:
		return "blocked"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Retryable reports whether failures of this kind may be retried.
func (k FailureKind) Retryable() bool {
	return k != KindUnknown
}

// SourceError is a classified failure reported by a source adapter.
type SourceError struct {
	Kind       FailureKind
	Source     string
	StatusCode int
	Err        error
}

func (e *SourceError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError builds a classified source failure.
func NewSourceError(source string, kind FailureKind, err error) *SourceError {
	return &SourceError{Kind: kind, Source: source, Err: err}
}

// NewHTTPError classifies a non-2xx HTTP status into a SourceError.
func NewHTTPError(source string, statusCode int, err error) *SourceError {
	return &SourceError{
		Kind:       KindFromHTTPStatus(statusCode),
		Source:     source,
		StatusCode: statusCode,
		Err:        err,
	}
}

// FinalFailure is returned once every retry of an operation has failed.
type FinalFailure struct {
	Attempts int
	Err      error
}

func (e *FinalFailure) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *FinalFailure) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err. Network timeouts, connection
// resets and DNS failures that were not wrapped in a SourceError are
// classified as well.
func KindOf(err error) FailureKind {
	if err == nil {
		return KindUnknown
	}

	var se *SourceError
	if errors.As(err, &se) {
		return se.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return KindUnavailable
	}

	// String-based heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{"tls handshake timeout", "i/o timeout"} {
		if strings.Contains(msg, p) {
			return KindTimeout
		}
	}
	unavailablePatterns := []string{
		"connection reset by peer",
		"connection refused",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"server closed idle connection",
		"transport connection broken",
	}
	for _, p := range unavailablePatterns {
		if strings.Contains(msg, p) {
			return KindUnavailable
		}
	}

	return KindUnknown
}

// IsTransient returns true if err is one of the retryable failure kinds.
func IsTransient(err error) bool {
	return KindOf(err).Retryable()
}

// IsBlocked returns true if err reports automated-access detection.
func IsBlocked(err error) bool {
	return KindOf(err) == KindBlocked
}

// KindFromHTTPStatus maps an HTTP status code onto a failure kind.
func KindFromHTTPStatus(statusCode int) FailureKind {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return KindRateLimited
	case statusCode == http.StatusForbidden:
		return KindBlocked
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusGatewayTimeout:
		return KindTimeout
	case statusCode >= 500:
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// IsTransientHTTPStatus returns true if the HTTP status code indicates a
// transient server-side issue that is safe to retry.
func IsTransientHTTPStatus(statusCode int) bool {
	return KindFromHTTPStatus(statusCode).Retryable()
}
