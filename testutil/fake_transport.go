package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/kbukum/restkit/transport"
)

// Reply is one scripted answer of a FakeTransport.
type Reply struct {
	// Status is answered as given. Zero scripts an answer that carries no
	// status, which classifies as a connection failure.
	Status  int
	Headers map[string]string
	// Body is sent raw when []byte or string, JSON encoded otherwise.
	Body any
	// Err replaces the answer with a transport failure.
	Err error
}

// JSON returns a reply carrying a JSON body.
func JSON(status int, body any) Reply {
	return Reply{Status: status, Body: body}
}

// Status returns a reply without body.
func Status(status int) Reply {
	return Reply{Status: status}
}

// Timeout returns a reply that fails with a transport timeout.
func Timeout() Reply {
	return Reply{Err: transport.NewTimeoutError("", context.DeadlineExceeded)}
}

// Refused returns a reply that fails as if the connection was refused.
func Refused() Reply {
	return Reply{Err: transport.NewConnectionError("", errConnectionRefused)}
}

var errConnectionRefused = errors.New("connect: connection refused")

// FakeTransport is a scripted transport. Replies are consumed in order;
// once the queue is empty the handler, if any, answers, then 200.
type FakeTransport struct {
	mu       sync.Mutex
	replies  []Reply
	handler  func(*transport.Request) Reply
	requests []*transport.Request
	gate     chan struct{}
	arrived  chan struct{}
}

var _ transport.AsyncTransport = (*FakeTransport)(nil)

// NewFakeTransport creates a fake with queued replies.
func NewFakeTransport(replies ...Reply) *FakeTransport {
	return &FakeTransport{replies: replies, arrived: make(chan struct{}, 64)}
}

// Enqueue appends replies.
func (f *FakeTransport) Enqueue(replies ...Reply) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, replies...)
	return f
}

// Handle answers requests once the queue is empty.
func (f *FakeTransport) Handle(h func(*transport.Request) Reply) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
	return f
}

// Echo answers every request with its own body.
func (f *FakeTransport) Echo() *FakeTransport {
	return f.Handle(func(req *transport.Request) Reply {
		return Reply{Status: http.StatusOK, Body: req.Body}
	})
}

// Hold makes Send block until the returned release is called or the
// request context ends.
func (f *FakeTransport) Hold() (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gate = gate
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Arrived receives once per request that reached the fake.
func (f *FakeTransport) Arrived() <-chan struct{} { return f.arrived }

// Requests returns the recorded requests.
func (f *FakeTransport) Requests() []*transport.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*transport.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// LastRequest returns the most recent request, or nil.
func (f *FakeTransport) LastRequest() *transport.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

// Send records req and returns the next scripted answer.
func (f *FakeTransport) Send(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req.Clone())
	gate, handler := f.gate, f.handler
	reply, queued := Reply{Status: http.StatusOK}, false
	if len(f.replies) > 0 {
		reply, queued = f.replies[0], true
		f.replies = f.replies[1:]
	}
	f.mu.Unlock()

	if !queued && handler != nil {
		reply = handler(req)
	}

	select {
	case f.arrived <- struct{}{}:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, transport.NewCancelledError(req.URL, ctx.Err())
		}
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return reply.response()
}

// SendAsync runs Send on a new goroutine.
func (f *FakeTransport) SendAsync(ctx context.Context, req *transport.Request, handler transport.Handler) {
	go func() {
		handler(f.Send(ctx, req))
	}()
}

func (r Reply) response() (*transport.Response, error) {
	status := r.Status
	headers := make(map[string]string, len(r.Headers)+1)
	for k, v := range r.Headers {
		headers[k] = v
	}

	var body []byte
	switch v := r.Body.(type) {
	case nil:
	case []byte:
		body = v
	case string:
		body = []byte(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		body = data
	}
	if len(body) > 0 {
		if _, ok := headers["Content-Type"]; !ok {
			headers["Content-Type"] = "application/json"
		}
	}

	return &transport.Response{
		StatusCode: status,
		Reason:     http.StatusText(status),
		Headers:    headers,
		Body:       body,
	}, nil
}
