// Package server is the HTTP server endpoints are registered on.
//
// Server wraps a Gin engine behind a ServeMux with h2c, so REST routes and
// other http.Handlers can share one port. It implements endpoint.Server:
// render.Mixin and appchunk.Chunk register their handlers through Supports
// and Handle, and errors their handlers pass to next reach the ErrorHandler
// middleware, which writes them as JSON error bodies.
//
// # Middleware
//
// Gin middleware (server/middleware), applied by ApplyMiddleware:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation
//   - ErrorHandler: renders errors signalled through next
//   - RateLimit: per-client sliding window, when configured
//
// Handler-level middleware wraps the whole mux: CORS, body size limits and
// request logging.
//
// # System endpoints
//
// RegisterSystemEndpoints serves /health, /liveness, /readiness, /info,
// /version and /metrics through a server/builtin chunk.
package server
