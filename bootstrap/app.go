package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/endpointkit/appchunk"
	"github.com/kbukum/endpointkit/component"
	"github.com/kbukum/endpointkit/logger"
	"github.com/kbukum/endpointkit/observability"
	"github.com/kbukum/endpointkit/render"
	"github.com/kbukum/endpointkit/server"
)

// App is an endpointkit application. C is the config type; any struct
// embedding AppConfig satisfies Config.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Server     *server.Server
	Metrics    *observability.Metrics
	Renderer   *render.JSON
	Summary    *Summary

	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook

	chunks    []*appchunk.Chunk
	system    *appchunk.Chunk
	telemetry []func(context.Context) error
}

// NewApp applies defaults, validates the config, initializes the logger and
// creates the HTTP server with the standard middleware installed.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetAppConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Renderer:        render.NewJSON(nil),
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.renderer != nil {
		app.Renderer = o.renderer
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	// Instruments from the global meter follow the SDK provider once
	// initTelemetry installs it.
	metrics, err := observability.NewMetrics(observability.Meter())
	if err != nil {
		app.Logger.Warn("Endpoint metrics disabled", logger.MergeWithError(nil, err))
	}
	app.Metrics = metrics

	app.Components = component.NewRegistry(app.Logger)
	app.Server = server.New(base.Server, app.Logger)
	app.Server.ApplyMiddleware()
	app.Summary = NewSummary(base.Name, base.Version, o.summaryOut)
	return app, nil
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback for the configure phase, where chunks
// are built and services rendered.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run starts the application, blocks until SIGINT, SIGTERM or ctx is done,
// then shuts down gracefully.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)
	return a.Shutdown(context.Background())
}

// Start runs the startup sequence without blocking: telemetry, configure
// callbacks, system endpoints, components, hooks and the summary.
func (a *App[C]) Start(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.initTelemetry(ctx); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}
	if err := a.registerSystem(); err != nil {
		return fmt.Errorf("system endpoints: %w", err)
	}
	// The server goes last so it starts after every chunk and stops first.
	if err := a.Components.Register(server.NewComponent(a.Server)); err != nil {
		return err
	}
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.MergeWithError(nil, err))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.Summary.Display(ctx, a.Components, a.Logger)
	return nil
}

func (a *App[C]) initTelemetry(ctx context.Context) error {
	base := a.Cfg.GetAppConfig()
	if !base.Observability.Enabled {
		return nil
	}
	tp, err := observability.InitTracer(ctx, base.Observability, a.Name, a.Version)
	if err != nil {
		return err
	}
	a.telemetry = append(a.telemetry, tp.Shutdown)

	mp, err := observability.InitMeter(ctx, base.Observability, a.Name, a.Version)
	if err != nil {
		return err
	}
	a.telemetry = append(a.telemetry, mp.Shutdown)
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}
	a.Logger.Info("Running configuration callbacks", logger.Fields("count", len(a.onConfigure)))
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (a *App[C]) registerSystem() error {
	chunk, err := a.Server.RegisterSystemEndpoints(a.Name, a.Components.HealthAll)
	if err != nil {
		return err
	}
	a.system = chunk
	return a.Components.Register(chunk)
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown runs the stop hooks, stops components in reverse order and
// flushes telemetry, all within the graceful timeout.
func (a *App[C]) Shutdown(ctx context.Context) error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(ctx, a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.MergeWithError(nil, err))
		shutdownErr = err
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.MergeWithError(nil, err))
		shutdownErr = err
	}
	for _, stop := range a.telemetry {
		if err := stop(ctx); err != nil {
			a.Logger.Error("Telemetry shutdown error", logger.MergeWithError(nil, err))
			if shutdownErr == nil {
				shutdownErr = err
			}
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
