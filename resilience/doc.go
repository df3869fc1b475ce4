// Package resilience guards a transport against a failing or overloaded
// server. None of it retries: a guarded exchange either reaches the wire
// once or fails fast as a connection failure.
//
//   - Breaker stops dispatching after consecutive failures and probes again
//     after a cooldown.
//   - Bulkhead bounds the exchanges in flight.
//   - Limiter paces dispatch with a token bucket.
//
// Middleware stacks the enabled guards onto any transport:
//
//	wire := resilience.Middleware(cfg.Resilience, log)(httpTransport)
package resilience
