// Package component defines the lifecycle contract shared by the HTTP server,
// app chunks and anything else the bootstrap package starts and stops.
//
// Components are registered with a Registry, started in registration order
// and stopped in reverse order. Components that implement Describable or
// RouteProvider are picked up by the startup summary.
package component
