// Package middleware provides the HTTP middleware installed by
// server.ApplyMiddleware.
//
// Middleware that needs Gin's context (recovery, request IDs, rate limiting,
// error rendering) is a gin.HandlerFunc. Middleware that only needs the
// request and writer (CORS, body limits, request logging) uses the standard
// func(http.Handler) http.Handler signature and wraps the whole server.
package middleware

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middleware. The first in the list is the outermost
// (runs first on a request, last on a response).
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
