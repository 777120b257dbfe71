package appchunk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/endpointkit/component"
	"github.com/kbukum/endpointkit/endpoint"
	apperrors "github.com/kbukum/endpointkit/errors"
	"github.com/kbukum/endpointkit/logger"
	"github.com/kbukum/endpointkit/observability"
	"github.com/kbukum/endpointkit/render"
	"github.com/kbukum/endpointkit/service"
)

const spanKind = "chunk"

var (
	// ErrNoServer is returned when a chunk is built without a server.
	ErrNoServer = errors.New("no http server")
	// ErrNothingRegistered is returned when none of a chunk's endpoints could be registered.
	ErrNothingRegistered = errors.New("no endpoints registered")
	// ErrInvalid is reported when an invalid chunk is asked to start or render.
	ErrInvalid = errors.New("chunk is invalid")
)

// Options configures a Chunk.
type Options struct {
	Name     string
	RootPath string
	// Endpoints declares the chunk's own endpoints.
	Endpoints endpoint.Table
	// Handlers serves each of Endpoints.
	Handlers endpoint.HandlerMap
	Server   endpoint.Server
	// RenderMethods renders other services' endpoints by name.
	RenderMethods endpoint.RenderMethodMap
	// Default renders endpoints missing from RenderMethods. Nil means none.
	Default endpoint.RenderFunc
	Logger  *logger.Logger
	Metrics *observability.Metrics
}

// Chunk is a registry of self-contained handlers that also renders
// responses for other services.
type Chunk struct {
	*service.Registry[endpoint.Handler]
	*render.Mixin

	rootPath      string
	server        endpoint.Server
	renderMethods endpoint.RenderMethodMap
	defaultRender endpoint.RenderFunc
	log           *logger.Logger
	metrics       *observability.Metrics

	mu     sync.RWMutex
	routes []component.Route
	err    error
}

var (
	_ render.Target       = (*Chunk)(nil)
	_ component.Component = (*Chunk)(nil)
)

// New builds a chunk and registers its endpoints on opts.Server.
//
// The returned chunk is never nil. A non-nil error means the chunk is invalid:
// its registered handlers refuse requests with SERVER_APP_CHUNK_INVALID and
// it refuses to render for other services.
func New(opts Options) (*Chunk, error) {
	log := logger.OrGlobal(opts.Logger).
		WithComponent("appchunk").
		WithFields(logger.Fields("chunk", opts.Name))

	reg, err := service.New(opts.Name, service.Config[endpoint.Handler]{
		Endpoints: opts.Endpoints,
		Methods:   opts.Handlers,
		Logger:    opts.Logger,
	})

	c := &Chunk{
		Registry:      reg,
		rootPath:      opts.RootPath,
		server:        opts.Server,
		renderMethods: opts.RenderMethods,
		defaultRender: opts.Default,
		log:           log,
		metrics:       opts.Metrics,
	}
	if c.renderMethods == nil {
		c.renderMethods = endpoint.RenderMethodMap{}
	}
	c.Mixin = render.NewMixin(c, opts.Logger, render.WithMetrics(opts.Metrics))

	if err != nil {
		c.err = err
		return c, err
	}
	if opts.Server == nil {
		return c, c.fail(fmt.Errorf("chunk %s: %w", opts.Name, ErrNoServer))
	}
	if err := c.registerOwn(); err != nil {
		return c, c.fail(err)
	}
	return c, nil
}

func (c *Chunk) fail(err error) error {
	c.err = err
	if c.Invalidate() {
		c.log.Error("Chunk marked invalid", logger.MergeWithError(nil, err))
	}
	return err
}

// registerOwn registers every declared endpoint directly on the server.
// Failures are per endpoint; it errors only if nothing was registered.
func (c *Chunk) registerOwn() error {
	names, err := c.EndpointNames()
	if err != nil {
		return err
	}

	registered := 0
	for _, name := range names {
		h, _ := c.MethodForEndpoint(name)
		def, _ := c.EndpointDef(name)
		verb := def.Verb()
		path := endpoint.JoinPath(c.rootPath, def.URLSubpath)
		fields := logger.Fields(logger.FieldEndpoint, name, logger.FieldVerb, verb, logger.FieldPath, path)

		if !c.server.Supports(verb) {
			c.log.Error("Failed to register endpoint", logger.MergeWithError(fields, render.ErrUnknownVerb))
			c.metrics.RecordRegistration(context.Background(), c.Name(), name, observability.OutcomeFailed)
			continue
		}
		if err := c.server.Handle(verb, path, c.guard(name, h)); err != nil {
			c.log.Error("Failed to register endpoint", logger.MergeWithError(fields, err))
			c.metrics.RecordRegistration(context.Background(), c.Name(), name, observability.OutcomeFailed)
			continue
		}

		registered++
		c.addRoute(verb, path, c.Name()+"."+name)
		c.metrics.RecordRegistration(context.Background(), c.Name(), name, observability.OutcomeOK)
		c.log.Debug("Registered endpoint", fields)
	}

	if len(names) > 0 && registered == 0 {
		return fmt.Errorf("chunk %s: %w", c.Name(), ErrNothingRegistered)
	}
	c.log.Info("Chunk endpoints registered", logger.Fields(
		logger.FieldCount, registered,
		"failed", len(names)-registered,
	))
	return nil
}

// guard wraps h so requests are refused once the chunk is invalid. It waits
// for h to respond, or for the request to end, before returning.
func (c *Chunk) guard(name string, h endpoint.Handler) endpoint.Handler {
	chunk := c.Name()
	return func(req *endpoint.Request, res endpoint.Response, next endpoint.Next) {
		ctx := context.Background()
		if req != nil && req.Request != nil {
			ctx = req.Context()
		}
		if !c.IsValid() {
			c.metrics.RecordRejection(ctx, chunk, name, string(apperrors.ErrCodeServerAppChunkInvalid))
			next(apperrors.ServerAppChunkInvalid(chunk, name))
			return
		}

		start := time.Now()
		ctx, span := observability.StartEndpointSpan(ctx, spanKind, chunk, name)
		if req != nil && req.Request != nil {
			req = req.WithContext(ctx)
		}

		var nextErr error
		gate := endpoint.NewGate()
		h(req, gate.Response(res), gate.Next(func(err error) {
			nextErr = err
			next(err)
		}))

		if err := gate.Wait(ctx); err != nil {
			c.log.Warn("Request ended before the handler responded", logger.MergeWithError(
				logger.Fields(logger.FieldEndpoint, name), err))
			nextErr = err
		}

		result := observability.OutcomeOK
		if nextErr != nil {
			result = observability.OutcomeError
		}
		observability.EndSpan(span, nextErr)
		c.metrics.RecordRequest(ctx, chunk, name, result, time.Since(start))
	}
}

func (c *Chunk) addRoute(verb, path, handler string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes = append(c.routes, component.Route{Method: verb, Path: path, Handler: handler})
}

// RootPath returns the path the chunk's own endpoints are mounted under.
func (c *Chunk) RootPath() string {
	return endpoint.JoinPath(c.rootPath, "")
}

// HTTPServer returns the server the chunk registers on.
func (c *Chunk) HTTPServer() endpoint.Server {
	return c.server
}

// RenderMethodForEndpoint returns the render method used when rendering
// another service's endpoint called name.
func (c *Chunk) RenderMethodForEndpoint(name string) (endpoint.RenderFunc, bool) {
	if fn, ok := c.renderMethods[name]; ok && fn != nil {
		return fn, true
	}
	if c.defaultRender != nil {
		return c.defaultRender, true
	}
	return nil, false
}

// RenderResponsesFor registers svc's endpoints on the chunk's server.
// It refuses when the chunk itself is invalid.
func (c *Chunk) RenderResponsesFor(svc render.Source, rootPath string, subset ...string) bool {
	return c.RenderResponsesForReport(svc, rootPath, subset...).OK()
}

// RenderResponsesForReport is RenderResponsesFor returning every endpoint's
// outcome. Registered routes are added to Routes.
func (c *Chunk) RenderResponsesForReport(svc render.Source, rootPath string, subset ...string) render.Report {
	if !c.IsValid() {
		err := fmt.Errorf("chunk %s: %w", c.Name(), ErrInvalid)
		c.log.Error("Cannot render responses", logger.MergeWithError(nil, err))
		return render.Report{Err: err}
	}
	report := c.Mixin.RenderResponsesForReport(svc, rootPath, subset...)
	for _, o := range report.Registered() {
		c.addRoute(o.Verb, o.Path, report.Service+"."+o.Endpoint)
	}
	return report
}

// Err returns the reason the chunk was invalidated, if any.
func (c *Chunk) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Routes returns every route the chunk registered, its own and rendered ones.
func (c *Chunk) Routes() []component.Route {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]component.Route, len(c.routes))
	copy(out, c.routes)
	return out
}

// Start fails for an invalid chunk so the application does not come up half-wired.
func (c *Chunk) Start(_ context.Context) error {
	if !c.IsValid() {
		return fmt.Errorf("chunk %s: %w", c.Name(), ErrInvalid)
	}
	return nil
}

// Stop is a no-op; routes live as long as the server.
func (c *Chunk) Stop(_ context.Context) error { return nil }

// Health reports the chunk's validity.
func (c *Chunk) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !c.IsValid() {
		h.Status = component.StatusUnhealthy
		if err := c.Err(); err != nil {
			h.Message = err.Error()
		}
	}
	return h
}

// Describe implements component.Describable.
func (c *Chunk) Describe() component.Description {
	return component.Description{
		Name:    c.Name(),
		Type:    "chunk",
		Details: fmt.Sprintf("root=%s endpoints=%d routes=%d", c.RootPath(), len(c.Table()), len(c.Routes())),
	}
}
