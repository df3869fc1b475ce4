package resilience

import (
	"context"
	"errors"

	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/transport"
)

// Guard holds the guards built from a Config. Nil fields are disabled.
type Guard struct {
	Breaker  *Breaker
	Bulkhead *Bulkhead
	Limiter  *Limiter
}

// NewGuard builds the enabled guards. Breaker state changes are logged.
func NewGuard(cfg Config, log *logger.Logger) *Guard {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("resilience")

	g := &Guard{}
	if cfg.Breaker.Enabled {
		g.Breaker = NewBreaker(cfg.Breaker, func(from, to State) {
			log.Warn("circuit breaker state changed", logger.Fields("from", from.String(), "to", to.String()))
		})
	}
	if cfg.Bulkhead.MaxInFlight > 0 {
		g.Bulkhead = NewBulkhead(cfg.Bulkhead)
	}
	if cfg.Limiter.Rate > 0 {
		g.Limiter = NewLimiter(cfg.Limiter)
	}
	return g
}

// BreakerState returns the breaker state, closed when there is none.
func (g *Guard) BreakerState() State {
	if g == nil || g.Breaker == nil {
		return StateClosed
	}
	return g.Breaker.State()
}

// Middleware wraps a transport with the limiter, then the bulkhead, then
// the breaker. A rejected exchange fails as a connection error and never
// reaches the wire.
func (g *Guard) Middleware() transport.Middleware {
	return func(next transport.Transport) transport.Transport {
		if g == nil {
			return next
		}
		return transport.Func(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			if g.Limiter != nil {
				if err := g.Limiter.Wait(ctx); err != nil {
					return nil, contextError(req.URL, err)
				}
			}
			if g.Bulkhead != nil {
				release, err := g.Bulkhead.Acquire(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil, contextError(req.URL, err)
					}
					return nil, transport.NewConnectionError(req.URL, err)
				}
				defer release()
			}
			if g.Breaker == nil {
				return next.Send(ctx, req)
			}

			if err := g.Breaker.Allow(); err != nil {
				return nil, transport.NewConnectionError(req.URL, err)
			}
			resp, err := next.Send(ctx, req)
			if transport.IsCancelled(err) {
				g.Breaker.Abandon()
				return resp, err
			}
			g.Breaker.Done(err != nil || resp.StatusCode >= 500)
			return resp, err
		})
	}
}

// Middleware builds a Guard from cfg and returns its middleware.
func Middleware(cfg Config, log *logger.Logger) transport.Middleware {
	return NewGuard(cfg, log).Middleware()
}

func contextError(url string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return transport.NewTimeoutError(url, err)
	}
	return transport.NewCancelledError(url, err)
}
