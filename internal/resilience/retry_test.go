package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func unavailable(msg string) error {
	return NewSourceError("test", KindUnavailable, errors.New(msg))
}

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    2,
		BaseDelay:     time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestExecute_SuccessOnFirstAttempt(t *testing.T) {
	var calls int
	val, err := Execute(context.Background(), fastConfig(), func(_ context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "ok" {
		t.Errorf("expected %q, got %q", "ok", val)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestExecute_SuccessAfterRetry(t *testing.T) {
	var calls int
	val, err := Execute(context.Background(), fastConfig(), func(_ context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, unavailable("temporary")
		}
		return 3, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 3 {
		t.Errorf("expected 3, got %d", val)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestExecute_ExhaustsRetries_FinalFailure(t *testing.T) {
	var calls int
	last := unavailable("always fails")
	_, err := Execute(context.Background(), fastConfig(), func(_ context.Context) (int, error) {
		calls++
		return 0, last
	})
	if calls != 3 {
		t.Errorf("expected exactly 3 calls, got %d", calls)
	}

	var ff *FinalFailure
	if !errors.As(err, &ff) {
		t.Fatalf("expected FinalFailure, got %T: %v", err, err)
	}
	if ff.Attempts != 3 {
		t.Errorf("expected 3 attempts recorded, got %d", ff.Attempts)
	}
	if !errors.Is(err, last) {
		t.Error("FinalFailure should wrap the last error")
	}
}

func TestExecute_ZeroRetries_SingleAttempt(t *testing.T) {
	var calls int
	cfg := fastConfig()
	cfg.MaxRetries = 0
	_, err := Execute(context.Background(), cfg, func(_ context.Context) (int, error) {
		calls++
		return 0, unavailable("down")
	})
	var ff *FinalFailure
	if !errors.As(err, &ff) {
		t.Fatalf("expected FinalFailure, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestExecute_ElapsedRespectsSchedule(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries:    2,
		BaseDelay:     20 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}

	start := time.Now()
	_, _ = Execute(context.Background(), cfg, func(_ context.Context) (int, error) {
		return 0, unavailable("down")
	})
	elapsed := time.Since(start)

	// Waits of 20ms then 40ms.
	if elapsed < 60*time.Millisecond {
		t.Errorf("expected at least 60ms of backoff, got %v", elapsed)
	}
	if elapsed > 2*time.Second {
		t.Errorf("backoff took far longer than scheduled: %v", elapsed)
	}
}

func TestExecute_NonTransientError_NoRetry(t *testing.T) {
	var calls int
	perm := errors.New("permanent error: bad request")
	_, err := Execute(context.Background(), fastConfig(), func(_ context.Context) (int, error) {
		calls++
		return 0, perm
	})
	if !errors.Is(err, perm) {
		t.Fatalf("expected the original error, got %v", err)
	}
	var ff *FinalFailure
	if errors.As(err, &ff) {
		t.Error("non-transient error must not be wrapped in FinalFailure")
	}
	if calls != 1 {
		t.Errorf("expected 1 call (no retry for non-transient), got %d", calls)
	}
}

func TestExecute_ContextCancelled_StopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	cfg := RetryConfig{
		MaxRetries:    5,
		BaseDelay:     50 * time.Millisecond,
		MaxDelay:      100 * time.Millisecond,
		BackoffFactor: 2.0,
	}

	_, err := Execute(ctx, cfg, func(_ context.Context) (int, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return 0, unavailable("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls before cancel took effect, got %d", calls)
	}
}

func TestExecute_AttemptTimeout_IsTimeoutKind(t *testing.T) {
	var calls int
	cfg := fastConfig()
	cfg.MaxRetries = 1
	cfg.AttemptTimeout = 10 * time.Millisecond

	_, err := Execute(context.Background(), cfg, func(ctx context.Context) (int, error) {
		calls++
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if calls != 2 {
		t.Errorf("per-attempt timeout should be retried, got %d calls", calls)
	}
	if KindOf(err) != KindTimeout {
		t.Errorf("expected timeout kind, got %s", KindOf(err))
	}
}

func TestExecute_AttemptContextReleased(t *testing.T) {
	cfg := fastConfig()
	cfg.AttemptTimeout = time.Minute

	var seen []context.Context
	_, _ = Execute(context.Background(), cfg, func(ctx context.Context) (int, error) {
		seen = append(seen, ctx)
		return 0, unavailable("fail")
	})
	if len(seen) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(seen))
	}
	for i, ctx := range seen {
		if ctx.Err() == nil {
			t.Errorf("attempt %d context still live after attempt returned", i)
		}
	}
}

func TestExecute_CustomShouldRetry(t *testing.T) {
	var calls int
	cfg := fastConfig()
	cfg.ShouldRetry = func(err error) bool {
		return err.Error() == "retry me"
	}

	err := Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("retry me")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestExecute_OnRetryCallback(t *testing.T) {
	var retryAttempts []int
	cfg := fastConfig()
	cfg.OnRetry = func(attempt int, _ error) {
		retryAttempts = append(retryAttempts, attempt)
	}

	_ = Do(context.Background(), cfg, func(_ context.Context) error {
		return unavailable("fail")
	})

	if len(retryAttempts) != 2 {
		t.Fatalf("expected 2 OnRetry calls, got %d", len(retryAttempts))
	}
	if retryAttempts[0] != 1 || retryAttempts[1] != 2 {
		t.Errorf("expected attempts [1, 2], got %v", retryAttempts)
	}
}

func TestExecute_BreakerShortensRetries(t *testing.T) {
	bcfg, ok := BlockedBreakerConfig(BlockedShorten, 1)
	if !ok {
		t.Fatal("shorten policy should use a breaker")
	}
	cfg := fastConfig()
	cfg.MaxRetries = 5
	cfg.Breaker = NewCircuitBreaker(bcfg)

	var calls int
	_, err := Execute(context.Background(), cfg, func(_ context.Context) (int, error) {
		calls++
		return 0, NewSourceError("dir", KindBlocked, errors.New("captcha"))
	})
	if calls != 2 {
		t.Errorf("expected 2 calls with a retry budget of 1, got %d", calls)
	}
	var ff *FinalFailure
	if !errors.As(err, &ff) {
		t.Fatalf("expected FinalFailure, got %v", err)
	}
	if !IsBlocked(err) {
		t.Error("final failure should still carry the blocked error")
	}
}

func TestExecute_OpenBreakerRejectsFirstAttempt(t *testing.T) {
	bcfg, _ := BlockedBreakerConfig(BlockedDisable, 0)
	cb := NewCircuitBreaker(bcfg)
	_ = cb.Execute(context.Background(), func(_ context.Context) error {
		return NewSourceError("dir", KindBlocked, errors.New("blocked"))
	})

	cfg := fastConfig()
	cfg.Breaker = cb
	var calls int
	_, err := Execute(context.Background(), cfg, func(_ context.Context) (int, error) {
		calls++
		return 1, nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no calls through an open breaker, got %d", calls)
	}
}

func TestExecute_DefaultConfig(t *testing.T) {
	var calls atomic.Int32
	err := Do(context.Background(), RetryConfig{}, func(_ context.Context) error {
		calls.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestBackoff_ExponentialGrowth(t *testing.T) {
	cfg := RetryConfig{
		BaseDelay:     100 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
	}

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
	}
	for i, w := range want {
		if got := Backoff(i, cfg); got != w {
			t.Errorf("attempt %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestBackoff_CapsAtMaxDelay(t *testing.T) {
	cfg := RetryConfig{
		BaseDelay:     time.Second,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
	}
	if got := Backoff(10, cfg); got != 5*time.Second {
		t.Errorf("expected cap of 5s, got %v", got)
	}
}

func TestComputeBackoff_JitterWithinRangeAndCap(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		BaseDelay:      time.Second,
		MaxDelay:       1200 * time.Millisecond,
		BackoffFactor:  2.0,
		Jitter:         true,
		JitterFraction: 0.25,
	})

	for i := 0; i < 200; i++ {
		d := computeBackoff(0, cfg)
		if d < 750*time.Millisecond || d > 1200*time.Millisecond {
			t.Fatalf("jittered delay %v outside [750ms, 1200ms]", d)
		}
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.MaxRetries != 2 || cfg.Attempts() != 3 {
		t.Errorf("expected 2 retries / 3 attempts, got %d / %d", cfg.MaxRetries, cfg.Attempts())
	}
	if cfg.BaseDelay != time.Second {
		t.Errorf("expected base delay 1s, got %v", cfg.BaseDelay)
	}
	if cfg.BackoffFactor != 2.0 {
		t.Errorf("expected factor 2, got %v", cfg.BackoffFactor)
	}
	if !cfg.Jitter {
		t.Error("expected jitter enabled by default")
	}
}

func TestFromRetryConfig(t *testing.T) {
	cfg := FromRetryConfig(4, 250, 2000, 3, false, 1500)
	if cfg.MaxRetries != 4 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
	if cfg.BaseDelay != 250*time.Millisecond || cfg.MaxDelay != 2*time.Second {
		t.Errorf("delays = %v / %v", cfg.BaseDelay, cfg.MaxDelay)
	}
	if cfg.BackoffFactor != 3 || cfg.Jitter {
		t.Errorf("factor/jitter = %v / %v", cfg.BackoffFactor, cfg.Jitter)
	}
	if cfg.AttemptTimeout != 1500*time.Millisecond {
		t.Errorf("AttemptTimeout = %v", cfg.AttemptTimeout)
	}

	zero := FromRetryConfig(0, 0, 0, 0, true, 0)
	if zero.MaxRetries != 0 {
		t.Errorf("maxRetries 0 should be kept, got %d", zero.MaxRetries)
	}
	if zero.BaseDelay != time.Second {
		t.Errorf("expected default base delay, got %v", zero.BaseDelay)
	}
}
