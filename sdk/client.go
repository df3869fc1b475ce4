package sdk

import (
	"context"
	"sync"

	"github.com/kbukum/restkit/digest"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/resilience"
	"github.com/kbukum/restkit/rest"
	"github.com/kbukum/restkit/session"
	"github.com/kbukum/restkit/transport"
	"github.com/kbukum/restkit/user"
)

// RequestIDHeader carries the per-request id the transport stamps.
const RequestIDHeader = "X-Request-ID"

// Client wires a transport, a session context and an executor from a Config.
type Client struct {
	cfg      *Config
	log      *logger.Logger
	http     *transport.HTTP
	exec     *rest.Executor
	session  *session.Context
	digester digest.Digester
	guard    *resilience.Guard

	mu   sync.RWMutex
	user *user.User
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	log       *logger.Logger
	transport transport.Transport
	metrics   *observability.Metrics
}

// WithLogger sets the logger. Defaults to one built from Config.Logging.
func WithLogger(l *logger.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// WithTransport replaces the HTTP transport. Config.Transport is ignored.
func WithTransport(t transport.Transport) Option {
	return func(o *clientOptions) { o.transport = t }
}

// WithMetrics records exchange metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// New builds a client. cfg gets its defaults applied and is validated.
func New(cfg *Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.New(&cfg.Logging, cfg.Base.Name)
	}

	d, err := digest.New(cfg.Digest)
	if err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg, log: o.log, digester: d, guard: resilience.NewGuard(cfg.Resilience, o.log)}
	base := o.transport
	if base == nil {
		h, err := transport.NewHTTP(cfg.Transport)
		if err != nil {
			return nil, err
		}
		c.http, base = h, h
	}
	wire := transport.Chain(
		transport.WithRequestID(RequestIDHeader),
		transport.WithTracing(),
		transport.WithLogging(o.log),
		c.guard.Middleware(),
	)(base)

	c.session = session.NewContext(o.log)
	c.exec = rest.NewExecutor(wire, c.session,
		rest.WithLogger(o.log),
		rest.WithMetrics(o.metrics),
		rest.WithBaseURL(cfg.Session.URL()),
	)
	return c, nil
}

// Config returns the resolved configuration.
func (c *Client) Config() *Config { return c.cfg }

// Executor returns the connection executor.
func (c *Client) Executor() *rest.Executor { return c.exec }

// Session returns the session context.
func (c *Client) Session() *session.Context { return c.session }

// Digester returns the configured password digest.
func (c *Client) Digester() digest.Digester { return c.digester }

// Guard returns the resilience guards in front of the transport.
func (c *Client) Guard() *resilience.Guard { return c.guard }

// User returns the logged in user, or nil.
func (c *Client) User() *user.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Controller builds a login controller from the session configuration.
func (c *Client) Controller() (*session.LoginController, error) {
	s := c.cfg.Session
	return session.NewLoginController(session.Params{
		Username:      s.Username,
		Organization:  s.Organization,
		BaseURL:       s.URL(),
		Credential:    s.Credential(),
		Impersonation: s.Impersonate,
		Headers:       c.cfg.Headers,
	})
}

// Login logs in with the configured account.
func (c *Client) Login(ctx context.Context) (*user.User, error) {
	ctrl, err := c.Controller()
	if err != nil {
		return nil, err
	}
	return c.LoginWith(ctx, ctrl)
}

// LoginWith logs in with ctrl.
func (c *Client) LoginWith(ctx context.Context, ctrl *session.LoginController) (*user.User, error) {
	u, err := user.Login(ctx, c.exec, ctrl, user.WithDigester(c.digester), user.WithLogger(c.log))
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.user = u
	c.mu.Unlock()
	return u, nil
}

// Logout ends the session.
func (c *Client) Logout() {
	user.Logout(c.exec)
	c.mu.Lock()
	c.user = nil
	c.mu.Unlock()
}

// Close logs out and releases idle connections.
func (c *Client) Close(ctx context.Context) error {
	c.Logout()
	if c.http != nil {
		return c.http.Close(ctx)
	}
	return nil
}
