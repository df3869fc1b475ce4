package transport

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
)

// Middleware transforms a Transport by wrapping it.
type Middleware func(Transport) Transport

// Chain composes multiple middlewares into one. The first middleware is
// outermost (executes first on the way in, last on the way out).
//
// Chain(a, b, c)(t) is equivalent to a(b(c(t))).
func Chain(middlewares ...Middleware) Middleware {
	return func(inner Transport) Transport {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// WithLogging logs each exchange at debug level and failures at warn.
// Sensitive headers are redacted.
func WithLogging(log *logger.Logger) Middleware {
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("transport")
	return func(inner Transport) Transport {
		return Func(func(ctx context.Context, req *Request) (*Response, error) {
			start := time.Now()
			log.Debug("sending request", logger.Fields(
				logger.FieldMethod, req.Method,
				logger.FieldURL, req.URL,
				logger.FieldHeaders, logger.RedactHeaders(req.Headers),
			))

			resp, err := inner.Send(ctx, req)
			fields := logger.DurationFields("send", time.Since(start))
			fields[logger.FieldMethod] = req.Method
			fields[logger.FieldURL] = req.URL
			if err != nil {
				fields[logger.FieldError] = err.Error()
				if k, ok := KindOf(err); ok {
					fields[logger.FieldReason] = k.String()
				}
				log.Warn("request failed", fields)
				return resp, err
			}
			fields[logger.FieldStatusCode] = resp.StatusCode
			fields[logger.FieldReason] = resp.Reason
			log.Debug("response received", fields)
			return resp, nil
		})
	}
}

// WithTracing wraps each send in a client span and propagates the trace
// context through the request headers.
func WithTracing() Middleware {
	return func(inner Transport) Transport {
		return Func(func(ctx context.Context, req *Request) (*Response, error) {
			ctx, span := observability.StartSpan(ctx, observability.SpanSend,
				trace.WithSpanKind(trace.SpanKindClient))
			defer span.End()

			observability.SetSpanAttribute(ctx, observability.AttrHTTPMethod, req.Method)
			if u, err := url.Parse(req.URL); err == nil {
				observability.SetSpanAttribute(ctx, observability.AttrURLPath, u.Path)
			}

			out := req.Clone()
			if out.Headers == nil {
				out.Headers = make(map[string]string)
			}
			observability.InjectHeaders(ctx, out.Headers)

			resp, err := inner.Send(ctx, out)
			if err != nil {
				observability.SetSpanError(ctx, err)
				return resp, err
			}
			observability.SetSpanAttribute(ctx, observability.AttrStatusCode, resp.StatusCode)
			return resp, nil
		})
	}
}

// WithRequestID stamps each request with a fresh UUID under header,
// unless the request already carries one.
func WithRequestID(header string) Middleware {
	return func(inner Transport) Transport {
		return Func(func(ctx context.Context, req *Request) (*Response, error) {
			if _, ok := req.Headers[header]; ok {
				return inner.Send(ctx, req)
			}
			out := req.Clone()
			out.SetHeader(header, uuid.NewString())
			return inner.Send(ctx, out)
		})
	}
}
