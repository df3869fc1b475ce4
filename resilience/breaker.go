package resilience

import (
	"errors"
	"sync"
	"time"
)

// State is the position of a Breaker.
type State int

const (
	// StateClosed lets every exchange through.
	StateClosed State = iota
	// StateOpen rejects every exchange.
	StateOpen
	// StateHalfOpen lets a few probes through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned while the breaker rejects exchanges.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// Breaker fails fast after MaxFailures consecutive failures. After the
// cooldown it lets Probes exchanges through; all of them succeeding closes
// it again, any failure reopens it.
type Breaker struct {
	cfg      BreakerConfig
	now      func() time.Time
	onChange func(from, to State)

	mu        sync.Mutex
	state     State
	failures  int
	openedAt  time.Time
	probing   int
	successes int
}

// NewBreaker creates a closed breaker. onChange, if set, is called with
// the breaker locked and must not call back into it.
func NewBreaker(cfg BreakerConfig, onChange func(from, to State)) *Breaker {
	c := Config{Breaker: cfg}
	c.Breaker.Enabled = true
	c.ApplyDefaults()
	return &Breaker{cfg: c.Breaker, now: time.Now, onChange: onChange}
}

// Allow reserves a pass. Every allowed exchange must be reported with
// Done or Abandon.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case StateClosed:
		return nil
	case StateHalfOpen:
		if b.probing < b.cfg.Probes {
			b.probing++
			return nil
		}
	}
	return ErrBreakerOpen
}

// Done reports the outcome of an allowed exchange.
func (b *Breaker) Done(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.current()
	if failed {
		b.failures++
		if state == StateHalfOpen || b.failures >= b.cfg.MaxFailures {
			b.openedAt = b.now()
			b.to(StateOpen)
		}
		return
	}
	switch state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.cfg.Probes {
			b.to(StateClosed)
		}
	}
}

// Abandon gives back a pass whose exchange ended without an outcome.
func (b *Breaker) Abandon() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current() == StateHalfOpen && b.probing > 0 {
		b.probing--
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// Reset closes the breaker.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.to(StateClosed)
}

// current moves an expired open breaker to half-open. Callers hold mu.
func (b *Breaker) current() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		b.to(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) to(next State) {
	if b.state == next {
		return
	}
	prev := b.state
	b.state = next
	b.probing, b.successes = 0, 0
	if next == StateClosed {
		b.failures = 0
	}
	if b.onChange != nil {
		b.onChange(prev, next)
	}
}
