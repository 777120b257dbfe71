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

	"github.com/kbukum/endpointkit/logger"
)

// InitMeter initializes the OpenTelemetry meter provider and installs it globally.
// The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, cfg Config, serviceName, serviceVersion string) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(ctx, serviceName, serviceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(time.Duration(cfg.MetricInterval)*time.Second))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", serviceName,
		"endpoint", cfg.Endpoint,
		"interval_s", cfg.MetricInterval,
	))

	return mp, nil
}

// Meter returns the package meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Outcomes recorded on endpoint metrics.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics holds the endpoint instruments. A nil *Metrics records nothing.
type Metrics struct {
	registrations   metric.Int64Counter
	requests        metric.Int64Counter
	requestDuration metric.Float64Histogram
	rejections      metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	registrations, err := meter.Int64Counter("endpoint.registrations",
		metric.WithDescription("Endpoint registrations by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating endpoint.registrations counter: %w", err)
	}

	requests, err := meter.Int64Counter("endpoint.requests",
		metric.WithDescription("Requests served by endpoint handlers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating endpoint.requests counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("endpoint.request.duration",
		metric.WithDescription("Time from request to render in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating endpoint.request.duration histogram: %w", err)
	}

	rejections, err := meter.Int64Counter("endpoint.rejections",
		metric.WithDescription("Requests refused because a component was invalid"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating endpoint.rejections counter: %w", err)
	}

	return &Metrics{
		registrations:   registrations,
		requests:        requests,
		requestDuration: requestDuration,
		rejections:      rejections,
	}, nil
}

// RecordRegistration counts one registration attempt.
func (m *Metrics) RecordRegistration(ctx context.Context, service, endpoint, outcome string) {
	if m == nil {
		return
	}
	m.registrations.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrService, service),
		attribute.String(AttrEndpoint, endpoint),
		attribute.String(AttrOutcome, outcome),
	))
}

// RecordRequest counts a served request and its duration.
func (m *Metrics) RecordRequest(ctx context.Context, service, endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrService, service),
		attribute.String(AttrEndpoint, endpoint),
		attribute.String(AttrOutcome, outcome),
	))
	m.requestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrService, service),
		attribute.String(AttrEndpoint, endpoint),
	))
}

// RecordRejection counts a request refused with code.
func (m *Metrics) RecordRejection(ctx context.Context, service, endpoint, code string) {
	if m == nil {
		return
	}
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrService, service),
		attribute.String(AttrEndpoint, endpoint),
		attribute.String(AttrCode, code),
	))
}
