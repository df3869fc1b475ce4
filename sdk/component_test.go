package sdk

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/restkit/component"
	"github.com/kbukum/restkit/logger"
)

func TestComponent_Lifecycle(t *testing.T) {
	srv := startServer(t)
	c := NewComponent(serverConfig(srv, "secret"), WithLogger(logger.Nop()))
	ctx := context.Background()

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if c.Client() != nil {
		t.Error("expected no client before start")
	}

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := c.Start(ctx); err == nil {
		t.Error("expected error starting twice")
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", h.Status, h.Message)
	}
	client := c.Client()
	if client == nil || client.User() == nil {
		t.Fatal("expected a logged in client")
	}
	if d := c.Describe(); !strings.Contains(d.Details, "org=acme user=alice") || d.Type != "rest-client" {
		t.Errorf("unexpected description %+v", d)
	}

	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if client.Session().Active() {
		t.Error("Stop should log out")
	}
	if h := c.Health(ctx); h.Status != component.StatusUnhealthy || h.Message != "not started" {
		t.Errorf("expected not started, got %+v", h)
	}
}

func TestComponent_NoCredentials(t *testing.T) {
	srv := startServer(t)
	cfg := serverConfig(srv, "")
	cfg.Session.Username = ""
	c := NewComponent(cfg, WithLogger(logger.Nop()))
	ctx := context.Background()

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Stop(ctx)

	h := c.Health(ctx)
	if h.Status != component.StatusDegraded {
		t.Errorf("expected degraded, got %s", h.Status)
	}
	if !strings.Contains(h.Message, "no credentials") {
		t.Errorf("unexpected message %q", h.Message)
	}
	if len(srv.Requests()) != 0 {
		t.Error("no login should be attempted")
	}
}

func TestComponent_LoginFailure(t *testing.T) {
	srv := startServer(t)
	c := NewComponent(serverConfig(srv, "wrong"), WithLogger(logger.Nop()))

	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail")
	}
	if c.Client() != nil {
		t.Error("a failed start must not expose a client")
	}
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", h.Status)
	}
}

func TestComponent_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	srv := startServer(t)
	c := NewComponent(serverConfig(srv, "secret"), WithLogger(logger.Nop()))
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Stop(ctx)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "exchange.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 1 {
		t.Errorf("expected the login exchange to be counted once, got %d", total)
	}
}
