package resilience

import (
	"context"
	"errors"
	"time"
)

// Bulkhead errors.
var (
	ErrBulkheadFull    = errors.New("too many exchanges in flight")
	ErrBulkheadTimeout = errors.New("timed out waiting for an exchange slot")
)

// Bulkhead bounds concurrent exchanges with a semaphore.
type Bulkhead struct {
	cfg BulkheadConfig
	sem chan struct{}
}

// NewBulkhead creates a bulkhead. MaxInFlight below 1 is raised to 1.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 1
	}
	return &Bulkhead{cfg: cfg, sem: make(chan struct{}, cfg.MaxInFlight)}
}

// Acquire takes a slot, waiting at most MaxWait. The returned func gives
// it back.
func (b *Bulkhead) Acquire(ctx context.Context) (release func(), err error) {
	select {
	case b.sem <- struct{}{}:
		return b.release, nil
	default:
	}
	if b.cfg.MaxWait <= 0 {
		return nil, ErrBulkheadFull
	}

	timer := time.NewTimer(b.cfg.MaxWait)
	defer timer.Stop()
	select {
	case b.sem <- struct{}{}:
		return b.release, nil
	case <-timer.C:
		return nil, ErrBulkheadTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *Bulkhead) release() { <-b.sem }

// InFlight returns the number of slots in use.
func (b *Bulkhead) InFlight() int { return len(b.sem) }

// Capacity returns MaxInFlight.
func (b *Bulkhead) Capacity() int { return cap(b.sem) }
