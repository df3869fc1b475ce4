// Package transport moves restkit requests over the wire.
//
// A Transport sends one fully-resolved request and returns the raw
// response. It never classifies status codes: any answer from the server,
// including 4xx and 5xx, is a successful Send. Errors are reserved for
// exchanges that produced no status at all and are reported as *Error
// with KindTimeout, KindConnection or KindCancelled.
//
// The HTTP implementation wraps net/http with TLS from the security
// package:
//
//	t, err := transport.NewHTTP(transport.Config{Timeout: time.Minute})
//	resp, err := t.Send(ctx, &transport.Request{Method: "GET", URL: "https://api.example.com/me"})
//
// Cross-cutting behavior is layered with middleware:
//
//	t = transport.Chain(
//		transport.WithLogging(log),
//		transport.WithTracing(),
//		transport.WithRequestID("X-Request-ID"),
//	)(t)
//
// Non-blocking dispatch goes through AsyncTransport. Any blocking
// Transport can be lifted with Async, which runs Send on its own goroutine
// and invokes the handler exactly once.
package transport
