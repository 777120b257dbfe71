// Package builtin provides the system endpoints every endpointkit server
// exposes: health, liveness, readiness, info, version and runtime metrics.
//
// They are an ordinary endpoint table served by an appchunk.Chunk, so they go
// through the same registration and validity checks as application endpoints.
package builtin

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/kbukum/endpointkit/appchunk"
	"github.com/kbukum/endpointkit/component"
	"github.com/kbukum/endpointkit/endpoint"
	"github.com/kbukum/endpointkit/logger"
	"github.com/kbukum/endpointkit/observability"
	"github.com/kbukum/endpointkit/version"
)

// ChunkName is the name of the chunk serving the system endpoints.
const ChunkName = "system"

// startTime records when the process started for uptime calculation.
var startTime = time.Now()

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// Options configures the system endpoints.
type Options struct {
	ServiceName string
	// RootPath prefixes every system endpoint. Defaults to "/".
	RootPath string
	Checker  HealthChecker
	Logger   *logger.Logger
	Metrics  *observability.Metrics
}

// Table returns the system endpoint table.
func Table() endpoint.Table {
	return endpoint.Table{
		{Name: "health", URLSubpath: "/health"},
		{Name: "liveness", URLSubpath: "/liveness"},
		{Name: "readiness", URLSubpath: "/readiness"},
		{Name: "info", URLSubpath: "/info"},
		{Name: "version", URLSubpath: "/version"},
		{Name: "metrics", URLSubpath: "/metrics"},
	}
}

// Handlers returns a handler for every entry in Table.
func Handlers(opts Options) endpoint.HandlerMap {
	return endpoint.HandlerMap{
		"health":    Health(opts.ServiceName, opts.Checker),
		"liveness":  Liveness(opts.ServiceName),
		"readiness": Readiness(opts.ServiceName, opts.Checker),
		"info":      Info(opts.ServiceName),
		"version":   Version(),
		"metrics":   Metrics(),
	}
}

// New registers the system endpoints on server through a chunk.
func New(server endpoint.Server, opts Options) (*appchunk.Chunk, error) {
	return appchunk.New(appchunk.Options{
		Name:      ChunkName,
		RootPath:  opts.RootPath,
		Endpoints: Table(),
		Handlers:  Handlers(opts),
		Server:    server,
		Logger:    opts.Logger,
		Metrics:   opts.Metrics,
	})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Health reports overall status from the component statuses: any unhealthy
// component makes the service unhealthy (503), any degraded one degraded.
func Health(serviceName string, checker HealthChecker) endpoint.Handler {
	return func(req *endpoint.Request, res endpoint.Response, _ endpoint.Next) {
		status := component.StatusHealthy
		var components []component.Health
		if checker != nil {
			components = checker(req.Context())
			for _, ch := range components {
				if ch.Status == component.StatusUnhealthy {
					status = component.StatusUnhealthy
					break
				}
				if ch.Status == component.StatusDegraded {
					status = component.StatusDegraded
				}
			}
		}

		code := http.StatusOK
		if status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		res.Status(code).JSON(map[string]any{
			"status":     status,
			"service":    serviceName,
			"timestamp":  now(),
			"components": components,
		})
	}
}

// Liveness confirms the process can serve HTTP.
func Liveness(serviceName string) endpoint.Handler {
	return func(_ *endpoint.Request, res endpoint.Response, _ endpoint.Next) {
		res.JSON(map[string]any{
			"status":    "alive",
			"service":   serviceName,
			"timestamp": now(),
		})
	}
}

// Readiness reports not_ready (503) while any component is unhealthy.
func Readiness(serviceName string, checker HealthChecker) endpoint.Handler {
	return func(req *endpoint.Request, res endpoint.Response, _ endpoint.Next) {
		status, code := "ready", http.StatusOK
		if checker != nil {
			for _, ch := range checker(req.Context()) {
				if ch.Status == component.StatusUnhealthy {
					status, code = "not_ready", http.StatusServiceUnavailable
					break
				}
			}
		}
		res.Status(code).JSON(map[string]any{
			"status":    status,
			"service":   serviceName,
			"timestamp": now(),
		})
	}
}

// Info reports the service name, build and uptime.
func Info(serviceName string) endpoint.Handler {
	return func(_ *endpoint.Request, res endpoint.Response, _ endpoint.Next) {
		v := version.Get()
		res.JSON(map[string]any{
			"service":    serviceName,
			"version":    v.Short(),
			"build_time": v.BuildTime,
			"go_version": v.GoVersion,
			"uptime":     time.Since(startTime).String(),
			"timestamp":  now(),
		})
	}
}

// Version reports the full build information.
func Version() endpoint.Handler {
	return func(_ *endpoint.Request, res endpoint.Response, _ endpoint.Next) {
		res.JSON(version.Get())
	}
}

// Metrics reports goroutine and memory statistics.
func Metrics() endpoint.Handler {
	return func(_ *endpoint.Request, res endpoint.Response, _ endpoint.Next) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		res.JSON(map[string]any{
			"timestamp":  now(),
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       m.Alloc / 1024 / 1024,
				"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
				"sys_mb":         m.Sys / 1024 / 1024,
				"gc_runs":        m.NumGC,
			},
		})
	}
}
