// Package endpointtest provides in-memory stand-ins for the endpoint
// collaborators: a Server that records registrations, a Response that records
// calls, and a Next that captures what was signalled.
package endpointtest

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/kbukum/endpointkit/endpoint"
)

// Route is a registration captured by Server.
type Route struct {
	Verb    string
	Path    string
	Handler endpoint.Handler
}

// Server records registrations. It supports only the verbs it was created with.
type Server struct {
	mu     sync.Mutex
	verbs  map[string]bool
	routes []Route
}

var _ endpoint.Server = (*Server)(nil)

// NewServer creates a Server supporting the given verbs, or get/post/put/patch/delete
// when none are given.
func NewServer(verbs ...string) *Server {
	if len(verbs) == 0 {
		verbs = []string{"get", "post", "put", "patch", "delete"}
	}
	s := &Server{verbs: make(map[string]bool, len(verbs))}
	for _, v := range verbs {
		s.verbs[strings.ToLower(v)] = true
	}
	return s
}

// Supports reports whether verb was configured.
func (s *Server) Supports(verb string) bool {
	return s.verbs[verb]
}

// Handle records the registration. Registering the same verb and path twice fails.
func (s *Server) Handle(verb, path string, h endpoint.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.routes {
		if r.Verb == verb && r.Path == path {
			return fmt.Errorf("route %s %s already registered", verb, path)
		}
	}
	s.routes = append(s.routes, Route{Verb: verb, Path: path, Handler: h})
	return nil
}

// Routes returns registrations in order.
func (s *Server) Routes() []Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Route, len(s.routes))
	copy(out, s.routes)
	return out
}

// Route returns the handler registered for verb and path.
func (s *Server) Route(verb, path string) (endpoint.Handler, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.routes {
		if r.Verb == verb && r.Path == path {
			return r.Handler, true
		}
	}
	return nil, false
}

// Serve invokes the handler registered for verb and path with a fresh request,
// Response and Next. It returns nil values if nothing is registered there.
func (s *Server) Serve(verb, path string) (*Response, *Next) {
	h, ok := s.Route(verb, path)
	if !ok {
		return nil, nil
	}
	res := NewResponse()
	next := &Next{}
	h(NewRequest(verb, path), res, next.Func())
	return res, next
}

// NewRequest builds an endpoint.Request for tests.
func NewRequest(verb, path string) *endpoint.Request {
	return &endpoint.Request{
		Request: httptest.NewRequest(strings.ToUpper(verb), path, nil),
		Params:  map[string]string{},
	}
}

// Call is a single method call recorded by Response.
type Call struct {
	Method string
	Arg    any
}

// Response records Status, Set and JSON calls in order.
type Response struct {
	Calls   []Call
	Code    int
	Headers map[string]string
	Body    any
	Written bool
}

var _ endpoint.Response = (*Response)(nil)

// NewResponse creates an empty Response.
func NewResponse() *Response {
	return &Response{Headers: map[string]string{}}
}

// Status records the status code.
func (r *Response) Status(code int) endpoint.Response {
	r.Calls = append(r.Calls, Call{Method: "status", Arg: code})
	r.Code = code
	return r
}

// Set records headers.
func (r *Response) Set(headers map[string]string) endpoint.Response {
	r.Calls = append(r.Calls, Call{Method: "set", Arg: headers})
	for k, v := range headers {
		r.Headers[k] = v
	}
	return r
}

// JSON records the payload.
func (r *Response) JSON(payload any) {
	r.Calls = append(r.Calls, Call{Method: "json", Arg: payload})
	r.Body = payload
	r.Written = true
}

// Methods returns the names of the recorded calls in order.
func (r *Response) Methods() []string {
	out := make([]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		out = append(out, c.Method)
	}
	return out
}

// Next captures invocations of an endpoint.Next.
type Next struct {
	Called bool
	Err    error
	Count  int
}

// Func returns the endpoint.Next that records into n.
func (n *Next) Func() endpoint.Next {
	return func(err error) {
		n.Called = true
		n.Count++
		n.Err = err
	}
}
