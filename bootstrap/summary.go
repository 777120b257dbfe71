package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/endpointkit/component"
	"github.com/kbukum/endpointkit/logger"
)

// Summary prints what the application wired at startup: components, routes
// and live health.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary writing to out, or stdout when out is nil.
func NewSummary(serviceName, version string, out io.Writer) *Summary {
	if out == nil {
		out = os.Stdout
	}
	return &Summary{serviceName: serviceName, version: version, out: out}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display writes the summary and logs the route count.
func (s *Summary) Display(ctx context.Context, registry *component.Registry, log *logger.Logger) {
	routes := CollectRoutes(registry)

	fmt.Fprintf(s.out, "\n🚀 %s v%s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	components := registry.All()
	if len(components) > 0 {
		fmt.Fprintf(s.out, "\n📦 Components\n")
		for i, c := range components {
			line := c.Name()
			if d, ok := c.(component.Describable); ok {
				desc := d.Describe()
				line = fmt.Sprintf("%s [%s] %s", desc.Name, desc.Type, desc.Details)
			}
			fmt.Fprintf(s.out, "   %s %s\n", branch(i, len(components)), line)
		}
	}

	if len(routes) > 0 {
		fmt.Fprintf(s.out, "\n🌐 Routes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(s.out, "   %s %-7s %s → %s\n", branch(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	health := registry.HealthAll(ctx)
	if len(health) > 0 {
		fmt.Fprintf(s.out, "\n🏥 Health\n")
		for i, h := range health {
			msg := ""
			if h.Message != "" {
				msg = " (" + h.Message + ")"
			}
			fmt.Fprintf(s.out, "   %s %s %s: %s%s\n", branch(i, len(health)), healthIcon(h.Status), h.Name, h.Status, msg)
		}
	}
	fmt.Fprintln(s.out)

	log.Info("Routes registered", logger.Fields("count", len(routes), "components", len(components)))
}

// CollectRoutes merges the routes of every RouteProvider in registration
// order. The first provider to report a method and path names its handler,
// so chunk routes keep their service.endpoint names over the server's.
func CollectRoutes(registry *component.Registry) []component.Route {
	seen := make(map[string]bool)
	var routes []component.Route
	for _, c := range registry.All() {
		rp, ok := c.(component.RouteProvider)
		if !ok {
			continue
		}
		for _, r := range rp.Routes() {
			r.Method = strings.ToUpper(r.Method)
			key := r.Method + " " + r.Path
			if seen[key] {
				continue
			}
			seen[key] = true
			routes = append(routes, r)
		}
	}
	return routes
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
