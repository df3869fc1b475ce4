package rest

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/session"
	"github.com/kbukum/restkit/transport"
)

// Executor dispatches requests on behalf of a session.
type Executor struct {
	transport transport.AsyncTransport
	session   *session.Context
	log       *logger.Logger
	metrics   *observability.Metrics
	baseURL   string
	newID     func() string
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the executor logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics records exchange metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithBaseURL sets the base URL used by unauthenticated calls when no
// session is active.
func WithBaseURL(u string) Option {
	return func(e *Executor) { e.baseURL = strings.TrimRight(u, "/") }
}

// WithIDGenerator replaces the connection id generator.
func WithIDGenerator(f func() string) Option {
	return func(e *Executor) { e.newID = f }
}

// NewExecutor creates an executor. A blocking-only transport is lifted
// with transport.Async for non-blocking dispatch.
func NewExecutor(t transport.Transport, sess *session.Context, opts ...Option) *Executor {
	e := &Executor{
		transport: transport.Async(t),
		session:   sess,
		log:       logger.Nop(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.session == nil {
		e.session = session.NewContext(e.log)
	}
	e.log = e.log.WithComponent("rest")
	return e
}

// Session returns the session context the executor reads credentials from.
func (e *Executor) Session() *session.Context { return e.session }

// Do dispatches req and blocks until the local callback returns.
//
// The returned error is set for outcomes the caller cannot ignore:
// TIMEOUT, CONNECTION_FAILED, CRITICAL_SERVER_ERROR, CANCELLED,
// NO_ACTIVE_SESSION and INVALID_INPUT. Other classification failures are
// reported through Result.Conn.Err().
func (e *Executor) Do(ctx context.Context, req *Request, opts ...CallOption) (Result, error) {
	conn, treq := e.prepare(ctx, req, Blocking, newCallConfig(opts))
	if treq != nil {
		resp, err := e.transport.Send(conn.ctx, treq)
		e.complete(conn, resp, err)
	}
	<-conn.done
	return conn.outcome()
}

// Start dispatches req and returns at once. Callbacks run on a transport
// goroutine; Done is closed after both have returned.
func (e *Executor) Start(ctx context.Context, req *Request, opts ...CallOption) *Connection {
	conn, treq := e.prepare(ctx, req, NonBlocking, newCallConfig(opts))
	if treq != nil {
		e.transport.SendAsync(conn.ctx, treq, func(resp *transport.Response, err error) {
			e.complete(conn, resp, err)
		})
	}
	return conn
}

// prepare builds the connection and the wire request. When the request is
// rejected before dispatch, the rejection is delivered like any other
// outcome and the returned transport request is nil.
func (e *Executor) prepare(ctx context.Context, req *Request, mode Mode, cfg callConfig) (*Connection, *transport.Request) {
	req = req.Clone()
	conn := newConnection(ctx, e.newID(), mode, req, cfg)
	log := e.log.WithConnection(conn.id)

	treq, authenticated, err := e.build(req, cfg)
	if err != nil {
		e.reject(conn, err)
		return conn, nil
	}
	conn.setAuthenticated(authenticated)

	u, _ := url.Parse(treq.URL)
	var path string
	if u != nil {
		path = u.Path
	}
	conn.ctx, conn.exchange = observability.BeginExchange(conn.ctx, e.metrics, req.Method,
		attribute.String(observability.AttrConnectionID, conn.id),
		attribute.String(observability.AttrURLPath, path),
		attribute.String(observability.AttrMode, mode.String()),
	)

	log.Debug("launching request", logger.Fields(
		logger.FieldMethod, treq.Method,
		logger.FieldURL, treq.URL,
		"mode", mode.String(),
		"authenticated", authenticated,
	))
	return conn, treq
}

// build resolves the session material into a transport request.
func (e *Executor) build(req *Request, cfg callConfig) (*transport.Request, bool, *errors.AppError) {
	if err := req.Validate(); err != nil {
		return nil, false, errors.Wrap(err)
	}

	headers := make(map[string]string, len(req.Headers)+3)
	for k, v := range req.Headers {
		headers[k] = v
	}

	base := e.baseURL
	authenticated := false
	ctrl, sessErr := e.session.Current()
	switch {
	case ctrl != nil:
		snap := ctrl.Snapshot()
		base = snap.BaseURL
		if cfg.auth {
			for k, v := range snap.AuthHeaders() {
				setHeader(headers, k, v)
			}
			authenticated = true
		} else if snap.IsImpersonating() {
			setHeader(headers, snap.Headers.Impersonation, snap.Impersonation)
		}
	case cfg.auth:
		return nil, false, errors.Wrap(sessErr)
	}

	target, urlErr := resolveURL(base, req.Path)
	if urlErr != nil {
		return nil, false, urlErr
	}

	body, err := req.encodeBody()
	if err != nil {
		return nil, false, errors.Wrap(err)
	}

	return &transport.Request{
		Method:  req.Method,
		URL:     target,
		Headers: headers,
		Body:    body,
		Timeout: req.Timeout,
	}, authenticated, nil
}

// setHeader sets key, replacing any entry that differs from it only in case.
func setHeader(headers map[string]string, key, value string) {
	for k := range headers {
		if k != key && strings.EqualFold(k, key) {
			delete(headers, k)
		}
	}
	headers[key] = value
}

func resolveURL(base, path string) (string, *errors.AppError) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	if base == "" {
		return "", errors.InvalidInput("path", "relative path without a base URL")
	}
	if path == "" {
		return base, nil
	}
	return base + "/" + strings.TrimLeft(path, "/"), nil
}

// reject delivers an outcome for a request that never left the process.
func (e *Executor) reject(conn *Connection, err *errors.AppError) {
	if !conn.claim() {
		return
	}
	conn.settle(nil, VerdictRejected, err, false)
	e.log.WithConnection(conn.id).Warn("request rejected", logger.Fields(
		logger.FieldMethod, conn.request.Method,
		logger.FieldCode, string(err.Code),
		logger.FieldError, err.Message,
	))
	if e.metrics != nil {
		e.metrics.RecordError(context.WithoutCancel(conn.ctx), string(err.Code))
	}
	if conn.mode == NonBlocking {
		go conn.deliver()
		return
	}
	conn.deliver()
}

// complete is the completion handler of every dispatched exchange.
func (e *Executor) complete(conn *Connection, tresp *transport.Response, terr error) {
	log := e.log.WithConnection(conn.id)

	if transport.IsCancelled(terr) {
		conn.Cancel()
	}
	if !conn.claim() {
		log.Debug("discarding outcome of cancelled exchange")
		return
	}

	var (
		resp     *Response
		verdict  Verdict
		appErr   *errors.AppError
		timedOut bool
	)
	switch {
	case terr == nil:
		var malformed *errors.AppError
		resp, malformed = newResponse(tresp)
		if malformed != nil {
			log.Warn("response body could not be decoded", logger.Fields(
				logger.FieldStatusCode, resp.StatusCode(),
				logger.FieldCode, string(malformed.Code),
				logger.FieldError, malformed.Cause.Error(),
			))
		}
		log.Debug("response received", logger.Fields(
			logger.FieldStatusCode, resp.StatusCode(),
			logger.FieldReason, resp.Reason(),
		))
		cls := Classify(resp.StatusCode(), resp.Body(), conn.shouldPost)
		verdict, appErr = cls.Verdict, cls.Err

	case transport.IsTimeout(terr):
		verdict, timedOut = VerdictTimeout, true
		appErr = errors.Timeout(conn.request.Method + " " + conn.request.Path).WithCause(terr)

	default:
		resp = connectionFailure(terr.Error())
		cls := Classify(0, nil, conn.shouldPost)
		verdict, appErr = cls.Verdict, cls.Err.WithCause(terr)
	}

	conn.settle(resp, verdict, appErr, timedOut)

	status := -1
	if resp != nil {
		status = resp.StatusCode()
	}
	var code string
	if appErr != nil {
		code = string(appErr.Code)
	}
	conn.exchange.End(context.WithoutCancel(conn.ctx), verdict.String(), status, code, appErr)

	e.logOutcome(log, conn, status, appErr)
	conn.deliver()
}

func (e *Executor) logOutcome(log *logger.Logger, conn *Connection, status int, err *errors.AppError) {
	if err == nil {
		return
	}
	fields := logger.Fields(
		logger.FieldMethod, conn.request.Method,
		logger.FieldCode, string(err.Code),
		logger.FieldVerdict, conn.Verdict().String(),
	)
	if status >= 0 {
		fields[logger.FieldStatusCode] = status
	}
	if t := err.Title(); t != "" {
		fields[logger.FieldTitle] = t
	}
	if d := err.Description(); d != "" {
		fields[logger.FieldDescription] = d
	}
	if err.Cause != nil {
		fields[logger.FieldError] = err.Cause.Error()
	}

	switch err.Code {
	case errors.ErrCodeCriticalServer:
		log.Error("critical server error", fields)
	case errors.ErrCodeUnexpectedStatus:
		log.Error("unexpected status code, report this error", fields)
	case errors.ErrCodeTimeout:
		log.Warn("request timed out", fields)
	case errors.ErrCodeConnectionFailed:
		log.Warn("connection failed", fields)
	default:
		log.Warn("request failed", fields)
	}
}
