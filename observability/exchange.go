package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Exchange tracks the span and metrics of one exchange from launch to
// completion. A nil *Metrics disables metric recording.
type Exchange struct {
	span    trace.Span
	metrics *Metrics
	method  string
	start   time.Time
	once    sync.Once
}

// BeginExchange opens the exchange span and counts the exchange as active.
func BeginExchange(ctx context.Context, metrics *Metrics, method string, attrs ...attribute.KeyValue) (context.Context, *Exchange) {
	ctx, span := StartSpan(ctx, SpanExchange,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs, attribute.String(AttrHTTPMethod, method))...),
	)
	if metrics != nil {
		metrics.RecordExchangeStart(ctx)
	}
	return ctx, &Exchange{span: span, metrics: metrics, method: method, start: time.Now()}
}

// Span returns the exchange span.
func (e *Exchange) Span() trace.Span { return e.span }

// End closes the exchange. statusCode < 0 means no response was obtained.
// errCode is empty for a successful exchange. Only the first call counts.
func (e *Exchange) End(ctx context.Context, verdict string, statusCode int, errCode string, err error) {
	e.once.Do(func() {
		duration := time.Since(e.start)
		e.span.SetAttributes(
			attribute.String(AttrVerdict, verdict),
			attribute.Int64("duration_ms", duration.Milliseconds()),
		)
		if statusCode >= 0 {
			e.span.SetAttributes(attribute.Int(AttrStatusCode, statusCode))
		}
		if errCode != "" {
			e.span.SetAttributes(attribute.String(AttrErrorCode, errCode))
		}
		if err != nil {
			SetSpanError(trace.ContextWithSpan(ctx, e.span), err)
		}
		e.span.End()

		if e.metrics != nil {
			e.metrics.RecordExchangeEnd(ctx, e.method, verdict, duration)
			if errCode != "" {
				e.metrics.RecordError(ctx, errCode)
			}
		}
	})
}

// Duration returns the time since the exchange began.
func (e *Exchange) Duration() time.Duration {
	return time.Since(e.start)
}
