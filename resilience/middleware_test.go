package resilience

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/restkit/transport"
)

type scripted struct {
	mu     sync.Mutex
	calls  int
	status int
	err    error
	block  chan struct{}
}

func (s *scripted) Send(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	s.mu.Lock()
	s.calls++
	status, err, block := s.status, s.err, s.block
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, transport.NewCancelledError(req.URL, ctx.Err())
		}
	}
	if err != nil {
		return nil, err
	}
	return &transport.Response{StatusCode: status}, nil
}

func (s *scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var req = &transport.Request{Method: http.MethodGet, URL: "https://api.example.com/me"}

func TestMiddleware_Disabled(t *testing.T) {
	next := &scripted{status: http.StatusOK}
	wire := Middleware(Config{}, nil)(next)
	for i := 0; i < 10; i++ {
		if _, err := wire.Send(context.Background(), req); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if next.Calls() != 10 {
		t.Errorf("expected 10 calls, got %d", next.Calls())
	}
}

func TestMiddleware_BreakerOpens(t *testing.T) {
	tests := []struct {
		name string
		next *scripted
	}{
		{"connection errors", &scripted{err: transport.NewConnectionError(req.URL, errors.New("refused"))}},
		{"server errors", &scripted{status: http.StatusInternalServerError}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(Config{Breaker: BreakerConfig{Enabled: true, MaxFailures: 2, Cooldown: time.Hour}}, nil)
			wire := g.Middleware()(tt.next)

			wire.Send(context.Background(), req)
			wire.Send(context.Background(), req)
			if g.BreakerState() != StateOpen {
				t.Fatalf("expected open breaker, got %s", g.BreakerState())
			}

			_, err := wire.Send(context.Background(), req)
			if !transport.IsConnection(err) || !errors.Is(err, ErrBreakerOpen) {
				t.Errorf("expected connection error wrapping ErrBreakerOpen, got %v", err)
			}
			if tt.next.Calls() != 2 {
				t.Errorf("the open breaker must not reach the wire, got %d calls", tt.next.Calls())
			}
		})
	}
}

func TestMiddleware_ClientErrorsDoNotTrip(t *testing.T) {
	g := NewGuard(Config{Breaker: BreakerConfig{Enabled: true, MaxFailures: 1}}, nil)
	wire := g.Middleware()(&scripted{status: http.StatusConflict})
	for i := 0; i < 3; i++ {
		if _, err := wire.Send(context.Background(), req); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if g.BreakerState() != StateClosed {
		t.Errorf("4xx answers must not open the breaker, got %s", g.BreakerState())
	}
}

func TestMiddleware_CancelledDoesNotTrip(t *testing.T) {
	g := NewGuard(Config{Breaker: BreakerConfig{Enabled: true, MaxFailures: 1}}, nil)
	wire := g.Middleware()(&scripted{block: make(chan struct{})})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := wire.Send(ctx, req); !transport.IsCancelled(err) {
		t.Fatalf("expected cancelled, got %v", err)
	}
	if g.BreakerState() != StateClosed {
		t.Errorf("cancellation must not open the breaker, got %s", g.BreakerState())
	}
}

func TestMiddleware_BulkheadRejects(t *testing.T) {
	next := &scripted{status: http.StatusOK, block: make(chan struct{})}
	wire := Middleware(Config{Bulkhead: BulkheadConfig{MaxInFlight: 1}}, nil)(next)

	done := make(chan struct{})
	go func() {
		defer close(done)
		wire.Send(context.Background(), req)
	}()
	deadline := time.Now().Add(2 * time.Second)
	for next.Calls() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first exchange never reached the wire")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := wire.Send(context.Background(), req)
	if !transport.IsConnection(err) || !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("expected connection error wrapping ErrBulkheadFull, got %v", err)
	}
	close(next.block)
	<-done
}

func TestMiddleware_LimiterDeadline(t *testing.T) {
	next := &scripted{status: http.StatusOK}
	wire := Middleware(Config{Limiter: LimiterConfig{Rate: 0.01, Burst: 1}}, nil)(next)

	if _, err := wire.Send(context.Background(), req); err != nil {
		t.Fatalf("first send: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := wire.Send(ctx, req); !transport.IsTimeout(err) {
		t.Errorf("expected timeout while waiting for a token, got %v", err)
	}
	if next.Calls() != 1 {
		t.Errorf("expected 1 call, got %d", next.Calls())
	}
}
