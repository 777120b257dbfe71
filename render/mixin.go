package render

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/kbukum/endpointkit/endpoint"
	"github.com/kbukum/endpointkit/errors"
	"github.com/kbukum/endpointkit/instance"
	"github.com/kbukum/endpointkit/logger"
	"github.com/kbukum/endpointkit/observability"
)

const spanKind = "render"

// Option configures a Mixin.
type Option func(*Mixin)

// WithMetrics records registrations and requests on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(x *Mixin) { x.metrics = m }
}

// WithRendererName sets the name reported in RENDERER_INVALID errors.
// It defaults to the target's Name() when it has one.
func WithRendererName(name string) Option {
	return func(x *Mixin) { x.name = name }
}

// Mixin registers sources' endpoints on its target's server.
type Mixin struct {
	target  Target
	name    string
	log     *logger.Logger
	metrics *observability.Metrics
}

// NewMixin creates a Mixin rendering through target.
func NewMixin(target Target, log *logger.Logger, opts ...Option) *Mixin {
	m := &Mixin{
		target: target,
		name:   "renderer",
		log:    logger.OrGlobal(log).WithComponent("render"),
	}
	if named, ok := target.(interface{ Name() string }); ok && named.Name() != "" {
		m.name = named.Name()
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RenderResponsesFor registers svc's endpoints under rootPath, or only those
// named in subset. It reports whether at least one endpoint was registered;
// an empty selection succeeds.
func (m *Mixin) RenderResponsesFor(svc Source, rootPath string, subset ...string) bool {
	return m.RenderResponsesForReport(svc, rootPath, subset...).OK()
}

// RenderResponsesForReport is RenderResponsesFor returning every endpoint's outcome.
func (m *Mixin) RenderResponsesForReport(svc Source, rootPath string, subset ...string) Report {
	if isNil(svc) {
		m.log.Error("Cannot render responses", logger.MergeWithError(nil, ErrNoSource))
		return Report{Err: ErrNoSource}
	}

	report := Report{Service: svc.Name()}
	log := m.log.WithFields(logger.Fields(logger.FieldService, report.Service))

	names := subset
	if len(names) == 0 {
		all, err := svc.EndpointNames()
		if err != nil {
			log.Error("Cannot list endpoints", logger.MergeWithError(nil, err))
			report.Err = err
			return report
		}
		names = all
	}
	if len(names) == 0 {
		log.Debug("No endpoints to render")
		return report
	}

	server := m.target.HTTPServer()
	if server == nil {
		log.Error("Cannot render responses", logger.MergeWithError(nil, ErrNoServer))
		report.Err = ErrNoServer
		return report
	}

	for _, name := range names {
		outcome := m.register(server, svc, rootPath, name)
		report.Outcomes = append(report.Outcomes, outcome)

		result := observability.OutcomeOK
		if outcome.Err != nil {
			result = observability.OutcomeFailed
			log.Error("Failed to register endpoint", logger.MergeWithError(logger.Fields(
				logger.FieldEndpoint, name,
				logger.FieldVerb, outcome.Verb,
				logger.FieldPath, outcome.Path,
			), outcome.Err))
		} else {
			log.Debug("Registered endpoint", logger.Fields(
				logger.FieldEndpoint, name,
				logger.FieldVerb, outcome.Verb,
				logger.FieldPath, outcome.Path,
			))
		}
		m.metrics.RecordRegistration(context.Background(), report.Service, name, result)
	}

	registered := len(report.Registered())
	if registered == 0 {
		log.Error("No endpoints registered", logger.Fields(logger.FieldCount, len(names)))
	} else {
		log.Info("Rendered responses", logger.Fields(
			logger.FieldCount, registered,
			"failed", len(names)-registered,
		))
	}
	return report
}

func (m *Mixin) register(server endpoint.Server, svc Source, rootPath, name string) Outcome {
	out := Outcome{Endpoint: name}

	process, ok := svc.MethodForEndpoint(name)
	if !ok || process == nil {
		out.Err = ErrNoProcessMethod
		return out
	}
	render, ok := m.target.RenderMethodForEndpoint(name)
	if !ok || render == nil {
		out.Err = ErrNoRenderMethod
		return out
	}
	def, ok := svc.EndpointDef(name)
	if !ok {
		out.Err = ErrNoDefinition
		return out
	}

	out.Verb = def.Verb()
	out.Path = endpoint.JoinPath(rootPath, def.URLSubpath)
	if !server.Supports(out.Verb) {
		out.Err = fmt.Errorf("%w: %s", ErrUnknownVerb, out.Verb)
		return out
	}
	if err := server.Handle(out.Verb, out.Path, m.compose(svc, name, process, render)); err != nil {
		out.Err = err
	}
	return out
}

// compose builds the request handler for one endpoint. The handler returns
// once ready has rendered the result or the request has ended, whichever
// comes first; a ready call after that is dropped.
func (m *Mixin) compose(svc Source, name string, process endpoint.ProcessFunc, render endpoint.RenderFunc) endpoint.Handler {
	service := svc.Name()
	log := m.log.WithFields(logger.EndpointFields(service, name))

	return func(req *endpoint.Request, res endpoint.Response, next endpoint.Next) {
		ctx := requestContext(req)
		if !instance.IsValid(svc) {
			m.metrics.RecordRejection(ctx, service, name, string(errors.ErrCodeServiceInvalid))
			next(errors.ServiceInvalid(service, name))
			return
		}

		start := time.Now()
		ctx, span := observability.StartEndpointSpan(ctx, spanKind, service, name)
		if req != nil && req.Request != nil {
			req = req.WithContext(ctx)
		}

		var called atomic.Bool
		gate := endpoint.NewGate()
		process(req, func(data any, err error, status ...int) {
			if !called.CompareAndSwap(false, true) {
				log.Warn("Ready called more than once")
				return
			}
			ran := gate.Finish(func() {
				if !instance.IsValid(m.target) {
					rerr := errors.RendererInvalid(m.name, service, name)
					m.metrics.RecordRejection(ctx, service, name, string(rerr.Code))
					observability.EndSpan(span, rerr)
					next(rerr)
					return
				}

				result := observability.OutcomeOK
				if err != nil {
					result = observability.OutcomeError
				}
				render(req, res, next, data, err, status...)
				observability.EndSpan(span, err)
				m.metrics.RecordRequest(ctx, service, name, result, time.Since(start))
			})
			if !ran {
				log.Warn("Ready called after the request ended")
			}
		})

		if err := gate.Wait(ctx); err != nil {
			log.Warn("Request ended before ready", logger.MergeWithError(nil, err))
			observability.EndSpan(span, err)
			m.metrics.RecordRequest(ctx, service, name, observability.OutcomeError, time.Since(start))
		}
	}
}

// isNil reports whether svc is nil or a typed nil pointer.
func isNil(svc Source) bool {
	if svc == nil {
		return true
	}
	v := reflect.ValueOf(svc)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func requestContext(req *endpoint.Request) context.Context {
	if req == nil || req.Request == nil {
		return context.Background()
	}
	return req.Context()
}
