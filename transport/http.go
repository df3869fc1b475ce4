package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// HTTP is the net/http transport.
type HTTP struct {
	client *http.Client
	config Config
}

var _ AsyncTransport = (*HTTP)(nil)

// Option configures the HTTP transport.
type Option func(*HTTP)

// WithHTTPClient replaces the underlying client. TLS settings from the
// config are not applied to a supplied client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) {
		h.client = c
	}
}

// NewHTTP creates an HTTP transport with the given configuration.
func NewHTTP(cfg Config, opts ...Option) (*HTTP, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.TLS != nil {
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			rt.TLSClientConfig = tlsCfg
		}
	}

	h := &HTTP{
		// The deadline is carried by the request context so that per-request
		// timeouts can exceed the default.
		client: &http.Client{Transport: rt},
		config: cfg,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Send executes the request and returns the raw response.
func (h *HTTP) Send(ctx context.Context, req *Request) (*Response, error) {
	timeout := h.config.Timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := h.buildRequest(ctx, req)
	if err != nil {
		return nil, NewConnectionError(req.URL, err)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(ctx, req.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyError(ctx, req.URL, fmt.Errorf("read response body: %w", err))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Reason:     reasonFromStatus(resp.Status, resp.StatusCode),
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}, nil
}

// SendAsync runs Send on a new goroutine and hands the outcome to handler.
func (h *HTTP) SendAsync(ctx context.Context, req *Request, handler Handler) {
	go func() {
		handler(h.Send(ctx, req))
	}()
}

// Close releases idle connections.
func (h *HTTP) Close(_ context.Context) error {
	h.client.CloseIdleConnections()
	return nil
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (h *HTTP) Unwrap() *http.Client {
	return h.client
}

// Config returns the transport configuration after defaults.
func (h *HTTP) Config() Config {
	return h.config
}

func (h *HTTP) buildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range h.config.Headers {
		httpReq.Header.Set(k, v)
	}
	// Request-specific headers override defaults.
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", h.config.UserAgent)
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	return httpReq, nil
}

// classifyError maps a net/http failure onto a transport error kind.
func classifyError(ctx context.Context, url string, err error) *Error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return NewCancelledError(url, err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return NewTimeoutError(url, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError(url, err)
	}
	return NewConnectionError(url, err)
}
