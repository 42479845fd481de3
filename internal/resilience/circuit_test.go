package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func blocked() error {
	return NewSourceError("dir", KindBlocked, errors.New("captcha"))
}

func TestCircuitBreaker_ClosedState_PassesThrough(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})

	var calls int
	err := cb.Execute(context.Background(), func(_ context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed state, got %s", cb.State())
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), func(_ context.Context) error {
			return errors.New("fail")
		})
	}
	if cb.State() != CircuitOpen {
		t.Fatalf("expected open state, got %s", cb.State())
	}

	var calls int
	err := cb.Execute(context.Background(), func(_ context.Context) error {
		calls++
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if calls != 0 {
		t.Error("open breaker should not call through")
	}
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})
	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("fail") })
	_ = cb.Execute(context.Background(), func(_ context.Context) error { return nil })
	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("fail") })

	failures, state := cb.Counters()
	if failures != 1 || state != CircuitClosed {
		t.Errorf("expected 1 failure and closed, got %d / %s", failures, state)
	}
}

func TestCircuitBreaker_ShouldTripFiltersErrors(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, ShouldTrip: IsBlocked})

	_ = cb.Execute(context.Background(), func(_ context.Context) error {
		return NewSourceError("dir", KindUnavailable, nil)
	})
	if cb.State() != CircuitClosed {
		t.Fatal("non-blocked failures must not trip a blocked breaker")
	}

	_ = cb.Execute(context.Background(), func(_ context.Context) error { return blocked() })
	if cb.State() != CircuitOpen {
		t.Error("blocked failure should trip the breaker")
	}
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	var transitions []CircuitState
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		OnStateChange: func(_, to CircuitState) {
			transitions = append(transitions, to)
		},
	})
	_, _ = ExecuteVal(context.Background(), cb, func(_ context.Context) (int, error) {
		return 0, errors.New("fail")
	})
	if len(transitions) != 1 || transitions[0] != CircuitOpen {
		t.Errorf("expected a single transition to open, got %v", transitions)
	}
}

func TestServiceBreakers_IsolatedPerSource(t *testing.T) {
	sb := NewServiceBreakers(CircuitBreakerConfig{FailureThreshold: 1})
	_ = sb.Get("a").Execute(context.Background(), func(_ context.Context) error { return errors.New("x") })

	if !sb.Open("a") {
		t.Error("expected source a open")
	}
	if sb.Open("b") {
		t.Error("source b has no breaker yet and must not report open")
	}
	if sb.Get("b").State() != CircuitClosed {
		t.Error("source b should start closed")
	}

	states := sb.States()
	if states["a"] != CircuitOpen || states["b"] != CircuitClosed {
		t.Errorf("unexpected states %v", states)
	}
}

func TestServiceBreakers_FreshSetPerRun(t *testing.T) {
	cfg := CircuitBreakerConfig{FailureThreshold: 1, ShouldTrip: IsBlocked}
	run1 := NewServiceBreakers(cfg)
	_ = run1.Get("dir").Execute(context.Background(), func(_ context.Context) error { return blocked() })

	run2 := NewServiceBreakers(cfg)
	if run2.Open("dir") || run2.Get("dir").State() != CircuitClosed {
		t.Error("breaker state must not carry across runs")
	}
}

func TestServiceBreakers_ConcurrentGet(t *testing.T) {
	sb := NewServiceBreakers(CircuitBreakerConfig{})
	var wg sync.WaitGroup
	got := make([]*CircuitBreaker, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = sb.Get("same")
		}(i)
	}
	wg.Wait()
	for _, cb := range got {
		if cb != got[0] {
			t.Fatal("Get returned distinct breakers for the same source")
		}
	}
}

func TestParseBlockedPolicy(t *testing.T) {
	for in, want := range map[string]BlockedPolicy{
		"":         BlockedShorten,
		"retry":    BlockedRetry,
		" Disable": BlockedDisable,
		"shorten":  BlockedShorten,
	} {
		got, err := ParseBlockedPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseBlockedPolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseBlockedPolicy("forever"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestBlockedBreakerConfig(t *testing.T) {
	if _, ok := BlockedBreakerConfig(BlockedRetry, 3); ok {
		t.Error("retry policy needs no breaker")
	}
	cfg, ok := BlockedBreakerConfig(BlockedDisable, 3)
	if !ok || cfg.FailureThreshold != 1 {
		t.Errorf("disable should trip on first blocked, got %d", cfg.FailureThreshold)
	}
	cfg, ok = BlockedBreakerConfig(BlockedShorten, 2)
	if !ok || cfg.FailureThreshold != 3 {
		t.Errorf("shorten with budget 2 should trip on third blocked, got %d", cfg.FailureThreshold)
	}
}
