package server

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/endpointkit/component"
)

// Routes returns every Gin route, API routes first, then system routes.
func (s *Server) Routes() []component.Route {
	ginRoutes := s.engine.Routes()
	sort.Slice(ginRoutes, func(i, j int) bool {
		return s.routeLess(ginRoutes[i], ginRoutes[j])
	})

	routes := make([]component.Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		handler := formatHandlerName(r.Handler)
		if s.system[r.Path] {
			handler += " (system)"
		}
		routes = append(routes, component.Route{Method: r.Method, Path: r.Path, Handler: handler})
	}
	return routes
}

func (s *Server) routeLess(a, b gin.RouteInfo) bool {
	aSys, bSys := s.system[a.Path], s.system[b.Path]
	if aSys != bSys {
		return !aSys
	}
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	return methodOrder(a.Method) < methodOrder(b.Method)
}

// formatHandlerName shortens Gin's handler path,
// e.g. "github.com/acme/api/port.(*UserPort).List-fm" becomes "UserPort.List".
// Closures such as the endpoint adapter are reported by their enclosing function.
func formatHandlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	for len(parts) > 1 && strings.HasPrefix(parts[len(parts)-1], "func") {
		parts = parts[:len(parts)-1]
	}
	if len(parts) > 1 && strings.ToLower(parts[0]) == parts[0] {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}

// methodOrder returns a sort key for HTTP methods (GET first, DELETE last).
func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
