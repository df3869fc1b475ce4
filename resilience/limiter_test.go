package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLimiter_Burst(t *testing.T) {
	l := NewLimiter(LimiterConfig{Rate: 1, Burst: 3})
	clk := &clock{t: time.Unix(0, 0)}
	l.now, l.last = clk.now, clk.t

	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("expected token %d", i)
		}
	}
	if l.Allow() {
		t.Error("expected the bucket to be empty")
	}

	clk.advance(2 * time.Second)
	if got := l.Tokens(); got != 2 {
		t.Errorf("expected 2 tokens after 2s, got %v", got)
	}
	clk.advance(time.Minute)
	if got := l.Tokens(); got != 3 {
		t.Errorf("expected tokens capped at burst, got %v", got)
	}
}

func TestLimiter_WaitPaces(t *testing.T) {
	l := NewLimiter(LimiterConfig{Rate: 50, Burst: 1})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("expected waits to be paced, took %v", elapsed)
	}
}

func TestLimiter_WaitCancelledGivesTokenBack(t *testing.T) {
	l := NewLimiter(LimiterConfig{Rate: 0.01, Burst: 1})
	clk := &clock{t: time.Unix(0, 0)}
	l.now, l.last = clk.now, clk.t
	l.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if got := l.Tokens(); got != 0 {
		t.Errorf("expected the reserved token back, got %v", got)
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{Breaker: BreakerConfig{Enabled: true}, Limiter: LimiterConfig{Rate: 0.5}}
	cfg.ApplyDefaults()

	if cfg.Breaker.MaxFailures != 5 || cfg.Breaker.Cooldown != 30*time.Second || cfg.Breaker.Probes != 1 {
		t.Errorf("unexpected breaker defaults %+v", cfg.Breaker)
	}
	if cfg.Limiter.Burst != 1 {
		t.Errorf("expected burst 1, got %d", cfg.Limiter.Burst)
	}
	if !cfg.Enabled() {
		t.Error("expected guards to be enabled")
	}
	if (&Config{}).Enabled() {
		t.Error("zero config must disable every guard")
	}
	if err := (&Config{Bulkhead: BulkheadConfig{MaxInFlight: -1}}).Validate(); err == nil {
		t.Error("expected error for a negative size")
	}
}
