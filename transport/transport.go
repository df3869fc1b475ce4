package transport

import "context"

// Transport sends a request and blocks until the response arrives.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// Handler receives the outcome of an asynchronous exchange.
type Handler func(*Response, error)

// AsyncTransport sends a request without blocking. The handler runs
// exactly once, on a goroutine owned by the transport.
type AsyncTransport interface {
	Transport
	SendAsync(ctx context.Context, req *Request, handler Handler)
}

// Func adapts a function to the Transport interface.
type Func func(ctx context.Context, req *Request) (*Response, error)

// Send calls f.
func (f Func) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Async lifts a blocking transport. A transport that already implements
// AsyncTransport is returned unchanged.
func Async(t Transport) AsyncTransport {
	if at, ok := t.(AsyncTransport); ok {
		return at
	}
	return asyncTransport{Transport: t}
}

type asyncTransport struct {
	Transport
}

func (a asyncTransport) SendAsync(ctx context.Context, req *Request, handler Handler) {
	go func() {
		handler(a.Send(ctx, req))
	}()
}
