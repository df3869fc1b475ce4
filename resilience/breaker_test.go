package resilience

import (
	"errors"
	"testing"
	"time"
)

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(maxFailures, probes int) (*Breaker, *clock, *[]string) {
	clk := &clock{t: time.Unix(0, 0)}
	var changes []string
	b := NewBreaker(BreakerConfig{MaxFailures: maxFailures, Cooldown: time.Second, Probes: probes}, func(from, to State) {
		changes = append(changes, from.String()+"->"+to.String())
	})
	b.now = clk.now
	return b, clk, &changes
}

func fail(t *testing.T, b *Breaker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("attempt %d: unexpected rejection: %v", i, err)
		}
		b.Done(true)
	}
}

func TestBreaker_StartsClosed(t *testing.T) {
	b, _, _ := newTestBreaker(3, 1)
	if b.State() != StateClosed {
		t.Errorf("expected closed, got %s", b.State())
	}
	if err := b.Allow(); err != nil {
		t.Errorf("expected pass, got %v", err)
	}
}

func TestBreaker_OpensAfterMaxFailures(t *testing.T) {
	b, _, changes := newTestBreaker(3, 1)
	fail(t, b, 3)

	if b.State() != StateOpen {
		t.Fatalf("expected open, got %s", b.State())
	}
	if err := b.Allow(); !errors.Is(err, ErrBreakerOpen) {
		t.Errorf("expected ErrBreakerOpen, got %v", err)
	}
	if len(*changes) != 1 || (*changes)[0] != "closed->open" {
		t.Errorf("unexpected transitions %v", *changes)
	}
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	b, _, _ := newTestBreaker(3, 1)
	fail(t, b, 2)
	b.Allow()
	b.Done(false)
	fail(t, b, 2)
	if b.State() != StateClosed {
		t.Errorf("failures must be consecutive, got %s", b.State())
	}
}

func TestBreaker_HalfOpen(t *testing.T) {
	tests := []struct {
		name   string
		failed bool
		want   State
	}{
		{"probe succeeds", false, StateClosed},
		{"probe fails", true, StateOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, clk, _ := newTestBreaker(1, 1)
			fail(t, b, 1)
			clk.advance(time.Second)

			if b.State() != StateHalfOpen {
				t.Fatalf("expected half-open after cooldown, got %s", b.State())
			}
			if err := b.Allow(); err != nil {
				t.Fatalf("expected a probe, got %v", err)
			}
			if err := b.Allow(); !errors.Is(err, ErrBreakerOpen) {
				t.Errorf("expected a single probe, got %v", err)
			}
			b.Done(tt.failed)
			if b.State() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, b.State())
			}
		})
	}
}

func TestBreaker_AbandonReturnsProbe(t *testing.T) {
	b, clk, _ := newTestBreaker(1, 1)
	fail(t, b, 1)
	clk.advance(time.Second)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected a probe, got %v", err)
	}
	b.Abandon()
	if b.State() != StateHalfOpen {
		t.Errorf("abandoning must not change the state, got %s", b.State())
	}
	if err := b.Allow(); err != nil {
		t.Errorf("expected the probe slot back, got %v", err)
	}
}

func TestBreaker_Reset(t *testing.T) {
	b, _, _ := newTestBreaker(1, 1)
	fail(t, b, 1)
	b.Reset()
	if b.State() != StateClosed {
		t.Errorf("expected closed, got %s", b.State())
	}
}

func TestState_String(t *testing.T) {
	for s, want := range map[State]string{StateClosed: "closed", StateOpen: "open", StateHalfOpen: "half-open", State(9): "unknown"} {
		if s.String() != want {
			t.Errorf("expected %s, got %s", want, s.String())
		}
	}
}
