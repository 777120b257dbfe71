package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/endpointkit/endpoint"
	"github.com/kbukum/endpointkit/logger"
)

// anyVerb registers a handler for every method.
const anyVerb = "*"

// ginVerbs maps lowercase endpoint verbs to Gin methods.
var ginVerbs = map[string]string{
	"get":     http.MethodGet,
	"post":    http.MethodPost,
	"put":     http.MethodPut,
	"patch":   http.MethodPatch,
	"delete":  http.MethodDelete,
	"head":    http.MethodHead,
	"options": http.MethodOptions,
	"all":     anyVerb,
	"any":     anyVerb,
}

var _ endpoint.Server = (*Server)(nil)

// Supports reports whether verb can be routed.
func (s *Server) Supports(verb string) bool {
	_, ok := ginVerbs[verb]
	return ok
}

// Handle registers h for verb and path. Gin's route conflicts are returned
// as errors instead of panics.
func (s *Server) Handle(verb, path string, h endpoint.Handler) (err error) {
	method, ok := ginVerbs[verb]
	if !ok {
		return fmt.Errorf("verb %q not supported", verb)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("register %s %s: %v", verb, path, r)
		}
	}()

	if method == anyVerb {
		s.engine.Any(path, Adapt(h))
	} else {
		s.engine.Handle(method, path, Adapt(h))
	}
	s.log.Debug("Route registered", logger.Fields(logger.FieldVerb, verb, logger.FieldPath, path))
	return nil
}

// Adapt turns an endpoint.Handler into a Gin handler. Route parameters are
// copied to Request.Params. An error passed to next is attached to the Gin
// context and aborts the chain.
func Adapt(h endpoint.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}
		req := &endpoint.Request{Request: c.Request, Params: params}

		h(req, &ginResponse{c: c}, func(err error) {
			if err != nil {
				_ = c.Error(err)
				c.Abort()
				return
			}
			c.Next()
		})
	}
}

// ginResponse implements endpoint.Response on a Gin context.
type ginResponse struct {
	c      *gin.Context
	status int
}

func (r *ginResponse) Status(code int) endpoint.Response {
	r.status = code
	return r
}

func (r *ginResponse) Set(headers map[string]string) endpoint.Response {
	for k, v := range headers {
		r.c.Header(k, v)
	}
	return r
}

func (r *ginResponse) JSON(payload any) {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	r.c.JSON(status, payload)
}
