package sdk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/restkit/component"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/resilience"
)

// Component runs a Client as a lifecycle component: Start initializes
// telemetry, builds the client and logs in when credentials are
// configured; Stop logs out and flushes telemetry.
type Component struct {
	cfg  *Config
	opts []Option
	log  *logger.Logger

	mu       sync.RWMutex
	registry *component.Registry
	session  *sessionPart
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates the component. Nothing is dialed before Start.
func NewComponent(cfg *Config, opts ...Option) *Component {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Component{cfg: cfg, opts: opts, log: o.log}
}

// Name returns the component name.
func (c *Component) Name() string { return Name }

// Start brings up telemetry and the session.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.registry != nil {
		return fmt.Errorf("%s: already started", Name)
	}

	c.cfg.ApplyDefaults()
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	log := c.log
	if log == nil {
		log = logger.New(&c.cfg.Logging, c.cfg.Base.Name)
	}

	tel := &telemetry{cfg: c.cfg, log: log}
	sess := &sessionPart{cfg: c.cfg, log: log, tel: tel, opts: c.opts}
	reg := component.NewRegistry(log)
	for _, part := range []component.Component{tel, sess} {
		if err := reg.Register(part); err != nil {
			return err
		}
	}
	if err := reg.StartAll(ctx); err != nil {
		return err
	}
	c.registry, c.session = reg, sess

	d := c.describe()
	log.Info("restkit started", logger.Fields("details", d.Details))
	return nil
}

// Stop logs out and shuts telemetry down.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	reg := c.registry
	c.registry, c.session = nil, nil
	c.mu.Unlock()
	if reg == nil {
		return nil
	}
	return reg.StopAll(ctx)
}

// Health is healthy while a session is active.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.RLock()
	reg := c.registry
	c.mu.RUnlock()
	if reg == nil {
		return component.Health{Name: Name, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Aggregate(Name, reg.HealthAll(ctx))
}

// Describe summarizes the target server and account.
func (c *Component) Describe() component.Description {
	return c.describe()
}

func (c *Component) describe() component.Description {
	s := c.cfg.Session
	details := s.URL()
	if s.Organization != "" {
		details += " org=" + s.Organization
	}
	if s.Username != "" {
		details += " user=" + s.Username
	}
	return component.Description{Name: "REST SDK", Type: "rest-client", Details: details}
}

// Client returns the running client, or nil before Start.
func (c *Component) Client() *Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	return c.session.client
}

// telemetry owns the tracer and meter providers.
type telemetry struct {
	cfg *Config
	log *logger.Logger

	tp      *sdktrace.TracerProvider
	mp      *sdkmetric.MeterProvider
	metrics *observability.Metrics
}

func (t *telemetry) Name() string { return "telemetry" }

func (t *telemetry) Start(ctx context.Context) error {
	if t.cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, t.cfg.Tracing, t.log)
		if err != nil {
			return err
		}
		t.tp = tp
	}
	if t.cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, t.cfg.Metrics, t.log)
		if err != nil {
			return err
		}
		t.mp = mp
	}
	// Without an exporter the global provider is a no-op, or whatever the
	// embedding application installed.
	m, err := observability.NewMetrics(observability.Meter(observability.TracerName))
	if err != nil {
		return err
	}
	t.metrics = m
	return nil
}

func (t *telemetry) Stop(ctx context.Context) error {
	var errs []error
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
	}
	if t.mp != nil {
		errs = append(errs, t.mp.Shutdown(ctx))
	}
	t.tp, t.mp = nil, nil
	return errors.Join(errs...)
}

func (t *telemetry) Health(_ context.Context) component.Health {
	return component.Health{
		Name:    t.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("tracing=%t metrics=%t", t.tp != nil, t.mp != nil),
	}
}

// sessionPart owns the client and its login.
type sessionPart struct {
	cfg  *Config
	log  *logger.Logger
	tel  *telemetry
	opts []Option

	client *Client
}

func (s *sessionPart) Name() string { return "session" }

func (s *sessionPart) Start(ctx context.Context) error {
	opts := append([]Option{WithLogger(s.log), WithMetrics(s.tel.metrics)}, s.opts...)
	client, err := New(s.cfg, opts...)
	if err != nil {
		return err
	}
	if s.cfg.Session.HasCredentials() {
		if _, err := client.Login(ctx); err != nil {
			return errors.Join(err, client.Close(ctx))
		}
	}
	s.client = client
	return nil
}

func (s *sessionPart) Stop(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close(ctx)
	s.client = nil
	return err
}

func (s *sessionPart) Health(_ context.Context) component.Health {
	h := component.Health{Name: s.Name()}
	switch {
	case s.client == nil:
		h.Status, h.Message = component.StatusUnhealthy, "no client"
	case s.client.Guard().BreakerState() == resilience.StateOpen:
		h.Status, h.Message = component.StatusDegraded, "circuit open"
	case s.client.Session().Active():
		h.Status = component.StatusHealthy
	case s.cfg.Session.HasCredentials():
		h.Status, h.Message = component.StatusUnhealthy, "session lost"
	default:
		h.Status, h.Message = component.StatusDegraded, "no credentials configured"
	}
	return h
}
