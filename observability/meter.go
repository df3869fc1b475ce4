package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/restkit/logger"
)

// InitMeter initializes the OpenTelemetry meter provider with a periodic
// OTLP HTTP reader and installs it globally.
func InitMeter(ctx context.Context, config MeterConfig, log *logger.Logger) (*sdkmetric.MeterProvider, error) {
	config.ApplyDefaults()
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(config.Interval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	if log != nil {
		log.Info("meter initialized", logger.Fields(
			logger.FieldService, config.ServiceName,
			"endpoint", config.Endpoint,
			"interval", config.Interval.String(),
		))
	}
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the exchange instruments.
type Metrics struct {
	exchangeTotal    metric.Int64Counter
	exchangeDuration metric.Float64Histogram
	exchangeActive   metric.Int64UpDownCounter
	errorTotal       metric.Int64Counter
}

// NewMetrics creates the exchange instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	exchangeTotal, err := meter.Int64Counter("exchange.total",
		metric.WithDescription("Completed exchanges by method and verdict"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating exchange.total counter: %w", err)
	}

	exchangeDuration, err := meter.Float64Histogram("exchange.duration",
		metric.WithDescription("Duration of exchanges in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating exchange.duration histogram: %w", err)
	}

	exchangeActive, err := meter.Int64UpDownCounter("exchange.active",
		metric.WithDescription("Exchanges launched and not yet completed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating exchange.active gauge: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Exchange errors by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		exchangeTotal:    exchangeTotal,
		exchangeDuration: exchangeDuration,
		exchangeActive:   exchangeActive,
		errorTotal:       errorTotal,
	}, nil
}

// RecordExchangeStart counts an exchange as active.
func (m *Metrics) RecordExchangeStart(ctx context.Context) {
	m.exchangeActive.Add(ctx, 1)
}

// RecordExchangeEnd records a finished exchange.
func (m *Metrics) RecordExchangeEnd(ctx context.Context, method, verdict string, duration time.Duration) {
	m.exchangeActive.Add(ctx, -1)
	m.exchangeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("verdict", verdict),
	))
	m.exchangeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
	))
}

// RecordError counts an error by code.
func (m *Metrics) RecordError(ctx context.Context, code string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}
