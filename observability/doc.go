// Package observability wires restkit exchanges into OpenTelemetry.
//
// Every exchange can be wrapped in an Exchange tracker that opens a span,
// counts the exchange as active and, when it ends, records the verdict,
// the status code and the duration. Exporters are optional: without
// InitTracer/InitMeter the global no-op providers make all of this free.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, cfg.Tracing, log)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, cfg.Metrics, log)
//	defer mp.Shutdown(ctx)
//	metrics, err := observability.NewMetrics(observability.Meter("restkit"))
package observability
