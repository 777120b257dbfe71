package server

import (
	"github.com/kbukum/endpointkit/appchunk"
	"github.com/kbukum/endpointkit/server/builtin"
)

// RegisterSystemEndpoints serves the builtin health, info, version and
// metrics endpoints at the root of the server.
func (s *Server) RegisterSystemEndpoints(serviceName string, checker builtin.HealthChecker) (*appchunk.Chunk, error) {
	chunk, err := builtin.New(s, builtin.Options{
		ServiceName: serviceName,
		Checker:     checker,
		Logger:      s.log,
	})
	for _, r := range chunk.Routes() {
		s.system[r.Path] = true
	}
	return chunk, err
}
