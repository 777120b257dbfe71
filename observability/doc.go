// Package observability wires OpenTelemetry tracing and metrics into endpoint
// handlers.
//
// Providers are initialised once by the application:
//
//	tp, err := observability.InitTracer(ctx, cfg, "users-api", "1.0.0")
//	defer tp.Shutdown(ctx)
//
// Handlers built by the render and appchunk packages open one span per request
// and, when given a *Metrics, count registrations, requests and rejections:
//
//	metrics, err := observability.NewMetrics(observability.Meter())
//	mixin := render.NewMixin(target, log, render.WithMetrics(metrics))
package observability
