package resilience

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token bucket refilled at Rate tokens per second.
type Limiter struct {
	rate  float64
	burst float64
	now   func() time.Time

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// NewLimiter creates a full bucket.
func NewLimiter(cfg LimiterConfig) *Limiter {
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	c := Config{Limiter: cfg}
	c.ApplyDefaults()
	l := &Limiter{rate: c.Limiter.Rate, burst: float64(c.Limiter.Burst), now: time.Now}
	l.tokens, l.last = l.burst, l.now()
	return l
}

// Allow takes a token if one is available.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// Wait takes a token, sleeping until one is due or ctx ends. A token
// reserved by a cancelled wait is given back.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	l.refill()
	l.tokens--
	deficit := -l.tokens
	l.mu.Unlock()
	if deficit <= 0 {
		return nil
	}

	timer := time.NewTimer(time.Duration(deficit / l.rate * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		l.tokens++
		l.mu.Unlock()
		return ctx.Err()
	}
}

// Tokens returns the tokens currently available.
func (l *Limiter) Tokens() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	return l.tokens
}

func (l *Limiter) refill() {
	now := l.now()
	l.tokens = min(l.burst, l.tokens+now.Sub(l.last).Seconds()*l.rate)
	l.last = now
}
