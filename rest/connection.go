package rest

import (
	"context"
	"sync"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/observability"
)

// Mode selects blocking or non-blocking dispatch.
type Mode int

const (
	// Blocking dispatch returns the local callback's result to the caller.
	Blocking Mode = iota
	// NonBlocking dispatch returns at once; callbacks run on completion.
	NonBlocking
)

// String returns the mode name.
func (m Mode) String() string {
	if m == NonBlocking {
		return "non_blocking"
	}
	return "blocking"
}

// Result is what the local callback hands back: the affected object and,
// optionally, extra information for the remote callback.
type Result struct {
	Object   any
	UserInfo any
	Conn     *Connection
}

// Value returns UserInfo when set, Object otherwise. It is what the remote
// callback receives.
func (r Result) Value() any {
	if r.UserInfo != nil {
		return r.UserInfo
	}
	return r.Object
}

// LocalFunc is the internal callback. It runs first, for every terminal
// outcome except cancellation.
type LocalFunc func(conn *Connection) Result

// RemoteFunc is the caller's callback for non-blocking dispatch.
type RemoteFunc func(obj any, conn *Connection)

type state int

const (
	statePending state = iota
	stateCompleting
	stateDone
)

// Connection is one exchange. Its accessors are safe for concurrent use;
// the completion handler may run on any goroutine.
type Connection struct {
	id            string
	mode          Mode
	request       *Request
	shouldPost    bool
	authenticated bool
	local         LocalFunc
	remote        RemoteFunc

	ctx      context.Context
	cancel   context.CancelFunc
	exchange *observability.Exchange
	done     chan struct{}

	mu        sync.Mutex
	state     state
	response  *Response
	verdict   Verdict
	err       *errors.AppError
	timedOut  bool
	cancelled bool
	result    Result
}

func newConnection(ctx context.Context, id string, mode Mode, req *Request, cfg callConfig) *Connection {
	ctx, cancel := context.WithCancel(ctx)
	return &Connection{
		id:         id,
		mode:       mode,
		request:    req,
		shouldPost: cfg.shouldPost,
		local:      cfg.local,
		remote:     cfg.remote,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// ID returns the connection id used for log correlation.
func (c *Connection) ID() string { return c.id }

// Mode returns the dispatch mode.
func (c *Connection) Mode() Mode { return c.mode }

// ShouldPost reports whether the call confirms state on the server.
func (c *Connection) ShouldPost() bool { return c.shouldPost }

// Request returns a copy of the dispatched request.
func (c *Connection) Request() *Request { return c.request.Clone() }

// Authenticated reports whether session credentials were attached.
func (c *Connection) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// Response returns the response, nil when none was obtained.
func (c *Connection) Response() *Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.response
}

// Verdict returns the outcome, VerdictPending until completion.
func (c *Connection) Verdict() Verdict {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verdict
}

// Succeeded reports a success verdict.
func (c *Connection) Succeeded() bool { return c.Verdict() == VerdictSuccess }

// Err returns the diagnostic of a failed exchange.
func (c *Connection) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		return nil
	}
	return c.err
}

// TimedOut reports whether the transport deadline passed.
func (c *Connection) TimedOut() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timedOut
}

// Cancelled reports whether the outcome was discarded.
func (c *Connection) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// Cancel discards the exchange. If the completion handler has not fired,
// neither callback runs and Cancel returns true. Once completion has
// begun Cancel is a no-op.
func (c *Connection) Cancel() bool {
	c.mu.Lock()
	if c.state != statePending {
		c.mu.Unlock()
		return false
	}
	c.state = stateDone
	c.cancelled = true
	c.verdict = VerdictCancelled
	c.err = errors.Cancelled()
	c.result = Result{Conn: c}
	c.mu.Unlock()

	c.cancel()
	if c.exchange != nil {
		c.exchange.End(context.WithoutCancel(c.ctx), VerdictCancelled.String(), -1,
			string(errors.ErrCodeCancelled), nil)
	}
	close(c.done)
	return true
}

// Done is closed once both callbacks have returned, or on cancellation.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Wait blocks until the exchange completes or ctx ends. Ending ctx does
// not cancel the exchange. The error follows the rules of Executor.Do.
func (c *Connection) Wait(ctx context.Context) (Result, error) {
	select {
	case <-c.done:
		return c.outcome()
	case <-ctx.Done():
		return Result{Conn: c}, ctx.Err()
	}
}

// claim moves a pending connection into completion. It fails when the
// connection was cancelled first.
func (c *Connection) claim() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != statePending {
		return false
	}
	c.state = stateCompleting
	return true
}

func (c *Connection) settle(resp *Response, verdict Verdict, err *errors.AppError, timedOut bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.response = resp
	c.verdict = verdict
	c.err = err
	c.timedOut = timedOut
}

func (c *Connection) setAuthenticated(v bool) {
	c.mu.Lock()
	c.authenticated = v
	c.mu.Unlock()
}

// deliver runs the local callback, then the remote one in non-blocking
// mode, then closes Done.
func (c *Connection) deliver() {
	var result Result
	if c.local != nil {
		result = c.local(c)
	} else if resp := c.Response(); resp != nil {
		result = Result{Object: resp.Body()}
	}
	result.Conn = c

	if c.mode == NonBlocking && c.remote != nil {
		c.remote(result.Value(), c)
	}

	c.mu.Lock()
	c.result = result
	c.state = stateDone
	c.mu.Unlock()
	c.cancel()
	close(c.done)
}

func (c *Connection) outcome() (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, raised(c.err)
}

// raised filters the errors that Do and Wait return. Classification
// failures other than critical and connection failures stay on the
// connection.
func raised(err *errors.AppError) error {
	if err == nil {
		return nil
	}
	switch err.Code {
	case errors.ErrCodeClassification, errors.ErrCodePermissionDenied, errors.ErrCodeUnexpectedStatus:
		return nil
	}
	return err
}
