package render

import (
	"github.com/kbukum/endpointkit/endpoint"
	"github.com/kbukum/endpointkit/logger"
)

// Source exposes endpoints and their processing methods.
// Sources that also implement instance.Validity are checked per request.
type Source interface {
	Name() string
	EndpointNames() ([]string, error)
	EndpointDef(name string) (endpoint.Definition, bool)
	MethodForEndpoint(name string) (endpoint.ProcessFunc, bool)
}

// Target supplies the server and render methods used by a Mixin.
// Targets that also implement instance.Validity are checked before rendering.
type Target interface {
	HTTPServer() endpoint.Server
	RenderMethodForEndpoint(name string) (endpoint.RenderFunc, bool)
}

// Unimplemented is embedded by targets that do not override every hook.
// Each default logs and returns nothing.
type Unimplemented struct {
	Log *logger.Logger
}

var _ Target = Unimplemented{}

// HTTPServer is not implemented.
func (u Unimplemented) HTTPServer() endpoint.Server {
	logger.OrGlobal(u.Log).Error("HTTPServer not implemented")
	return nil
}

// RenderMethodForEndpoint is not implemented.
func (u Unimplemented) RenderMethodForEndpoint(name string) (endpoint.RenderFunc, bool) {
	logger.OrGlobal(u.Log).Error("RenderMethodForEndpoint not implemented",
		logger.Fields(logger.FieldEndpoint, name))
	return nil, false
}

// Static is a Target over a fixed server and render method map.
// Endpoints missing from Methods fall back to Default when it is set.
type Static struct {
	Server  endpoint.Server
	Methods endpoint.RenderMethodMap
	Default endpoint.RenderFunc
}

var _ Target = (*Static)(nil)

// HTTPServer returns s.Server.
func (s *Static) HTTPServer() endpoint.Server { return s.Server }

// RenderMethodForEndpoint looks name up in s.Methods, then s.Default.
func (s *Static) RenderMethodForEndpoint(name string) (endpoint.RenderFunc, bool) {
	if fn, ok := s.Methods[name]; ok && fn != nil {
		return fn, true
	}
	if s.Default != nil {
		return s.Default, true
	}
	return nil, false
}
