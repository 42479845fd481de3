package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"nil", nil, KindUnknown},
		{"source error", NewSourceError("osm", KindRateLimited, errors.New("slow down")), KindRateLimited},
		{"wrapped source error", eris.Wrap(NewSourceError("osm", KindBlocked, errors.New("captcha")), "fetch"), KindBlocked},
		{"final failure", &FinalFailure{Attempts: 3, Err: NewSourceError("g", KindUnavailable, nil)}, KindUnavailable},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), KindTimeout},
		{"net timeout", &net.OpError{Op: "read", Err: timeoutErr{}}, KindTimeout},
		{"conn reset", fmt.Errorf("read: %w", syscall.ECONNRESET), KindUnavailable},
		{"conn refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), KindUnavailable},
		{"dns string", errors.New("dial tcp: lookup example.invalid: no such host"), KindUnavailable},
		{"tls string", errors.New("net/http: TLS handshake timeout"), KindTimeout},
		{"plain", errors.New("bad request"), KindUnknown},
		{"canceled", context.Canceled, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	for _, k := range []FailureKind{KindUnavailable, KindRateLimited, KindBlocked, KindTimeout} {
		if !IsTransient(NewSourceError("s", k, nil)) {
			t.Errorf("%s should be transient", k)
		}
	}
	if IsTransient(errors.New("nope")) {
		t.Error("unclassified error should not be transient")
	}
	if IsTransient(nil) {
		t.Error("nil should not be transient")
	}
}

func TestIsBlocked(t *testing.T) {
	if !IsBlocked(NewHTTPError("dir", http.StatusForbidden, nil)) {
		t.Error("403 should be classified as blocked")
	}
	if IsBlocked(NewHTTPError("dir", http.StatusServiceUnavailable, nil)) {
		t.Error("503 should not be classified as blocked")
	}
}

func TestKindFromHTTPStatus(t *testing.T) {
	tests := []struct {
		code int
		want FailureKind
	}{
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusForbidden, KindBlocked},
		{http.StatusRequestTimeout, KindTimeout},
		{http.StatusGatewayTimeout, KindTimeout},
		{http.StatusInternalServerError, KindUnavailable},
		{http.StatusBadGateway, KindUnavailable},
		{http.StatusServiceUnavailable, KindUnavailable},
		{http.StatusBadRequest, KindUnknown},
		{http.StatusNotFound, KindUnknown},
	}
	for _, tt := range tests {
		if got := KindFromHTTPStatus(tt.code); got != tt.want {
			t.Errorf("KindFromHTTPStatus(%d) = %s, want %s", tt.code, got, tt.want)
		}
		if IsTransientHTTPStatus(tt.code) != tt.want.Retryable() {
			t.Errorf("IsTransientHTTPStatus(%d) disagrees with kind", tt.code)
		}
	}
}

func TestSourceError_Message(t *testing.T) {
	err := NewHTTPError("google_maps", 429, errors.New("quota"))
	want := "google_maps: rate_limited (status 429): quota"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestFinalFailure_Unwrap(t *testing.T) {
	inner := errors.New("last")
	ff := &FinalFailure{Attempts: 3, Err: inner}
	if !errors.Is(ff, inner) {
		t.Error("FinalFailure should unwrap to the last error")
	}
	if ff.Error() != "gave up after 3 attempts: last" {
		t.Errorf("unexpected message %q", ff.Error())
	}
}
