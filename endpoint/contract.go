package endpoint

import (
	"context"
	"net/http"
)

// Request is an inbound request as seen by endpoint methods.
type Request struct {
	*http.Request

	// Params holds route parameters resolved by the server, e.g. "id" for "/users/:id".
	Params map[string]string
}

// Param returns the named route parameter, or "" if absent.
func (r *Request) Param(name string) string {
	if r == nil || r.Params == nil {
		return ""
	}
	return r.Params[name]
}

// Response is the response channel handed to handlers and renderers.
// Status and Set are chainable; JSON writes the body and ends the response.
type Response interface {
	Status(code int) Response
	Set(headers map[string]string) Response
	JSON(payload any)
}

// Next hands control back to the server framework. A nil error passes the
// request on; a non-nil error (normally an *errors.AppError carrying a code
// and message) is delivered to the framework's error pipeline.
type Next func(err error)

// Handler serves an endpoint end to end: it processes the request and writes
// the response, or signals next. It may finish on another goroutine, but it
// must end with a call to Response.JSON or next.
type Handler func(req *Request, res Response, next Next)

// ReadyFunc completes a processing method. It must be called exactly once,
// from any goroutine.
// An optional status is forwarded to the render method.
type ReadyFunc func(data any, err error, status ...int)

// ProcessFunc produces the result for an endpoint without writing a response.
type ProcessFunc func(req *Request, ready ReadyFunc)

// RenderFunc turns a processing result into a response.
type RenderFunc func(req *Request, res Response, next Next, data any, err error, status ...int)

// MethodMap maps endpoint names to processing methods.
type MethodMap map[string]ProcessFunc

// RenderMethodMap maps endpoint names to render methods.
type RenderMethodMap map[string]RenderFunc

// HandlerMap maps endpoint names to self-contained handlers.
type HandlerMap map[string]Handler

// Server is the HTTP server handle endpoints are registered on.
type Server interface {
	// Supports reports whether the server can route the lowercase verb.
	Supports(verb string) bool
	// Handle registers h for verb and path.
	Handle(verb, path string, h Handler) error
}

// WithContext returns a shallow copy of r carrying ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	return &Request{Request: r.Request.WithContext(ctx), Params: r.Params}
}
