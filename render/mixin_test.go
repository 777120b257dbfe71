package render

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/endpointkit/endpoint"
	"github.com/kbukum/endpointkit/endpoint/endpointtest"
	"github.com/kbukum/endpointkit/errors"
	"github.com/kbukum/endpointkit/instance"
	"github.com/kbukum/endpointkit/logger"
	"github.com/kbukum/endpointkit/service"
)

func bufLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", buf)
}

// fakeSource is a Source whose method map may be incomplete, which a
// service.Service would refuse at construction.
type fakeSource struct {
	*instance.Named
	table   endpoint.Table
	methods endpoint.MethodMap
}

func newFakeSource(name string, table endpoint.Table, methods endpoint.MethodMap) *fakeSource {
	return &fakeSource{Named: instance.NewNamed(name), table: table, methods: methods}
}

func (f *fakeSource) EndpointNames() ([]string, error) { return f.table.Names(), nil }

func (f *fakeSource) EndpointDef(name string) (endpoint.Definition, bool) {
	return f.table.Lookup(name)
}

func (f *fakeSource) MethodForEndpoint(name string) (endpoint.ProcessFunc, bool) {
	fn, ok := f.methods[name]
	return fn, ok
}

// validityTarget is a Static target with a validity flag and a name.
type validityTarget struct {
	*instance.Named
	Static
}

func echo(data any, status ...int) endpoint.ProcessFunc {
	return func(_ *endpoint.Request, ready endpoint.ReadyFunc) { ready(data, nil, status...) }
}

func usersService(t *testing.T) *service.Service {
	t.Helper()
	svc, err := service.NewService("users", service.Config[endpoint.ProcessFunc]{
		Endpoints: endpoint.Table{
			{Name: "list", URLSubpath: "/users"},
			{Name: "create", HTTPMethod: "POST", URLSubpath: "/users"},
			{Name: "get", URLSubpath: "/users/:id"},
		},
		Methods: endpoint.MethodMap{
			"list":   echo([]string{"ann", "bob"}),
			"create": echo(map[string]any{"id": 1}, http.StatusCreated),
			"get":    echo(5),
		},
		Logger: logger.NewNop(),
	})
	require.NoError(t, err)
	return svc
}

func jsonTarget(server endpoint.Server) *Static {
	return &Static{Server: server, Default: NewJSON(nil).Render}
}

func TestRenderResponsesFor_FullTable(t *testing.T) {
	server := endpointtest.NewServer()
	m := NewMixin(jsonTarget(server), logger.NewNop())

	ok := m.RenderResponsesFor(usersService(t), "/api/")
	require.True(t, ok)

	routes := server.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, "get", routes[0].Verb)
	assert.Equal(t, "/api/users", routes[0].Path)
	assert.Equal(t, "post", routes[1].Verb)
	assert.Equal(t, "/api/users", routes[1].Path)
	assert.Equal(t, "/api/users/:id", routes[2].Path)

	res, next := server.Serve("post", "/api/users")
	require.NotNil(t, res)
	assert.False(t, next.Called)
	assert.Equal(t, []string{"status", "json"}, res.Methods())
	assert.Equal(t, http.StatusCreated, res.Code)
	assert.Equal(t, map[string]any{"id": 1}, res.Body)

	res, _ = server.Serve("get", "/api/users/:id")
	assert.Equal(t, map[string]any{"data": 5}, res.Body)
}

func TestRenderResponsesFor_EmptySelection(t *testing.T) {
	server := endpointtest.NewServer()
	svc, err := service.NewService("empty", service.Config[endpoint.ProcessFunc]{
		Endpoints: endpoint.Table{},
		Logger:    logger.NewNop(),
	})
	require.NoError(t, err)

	m := NewMixin(jsonTarget(server), logger.NewNop())
	assert.True(t, m.RenderResponsesFor(svc, "/api"))
	assert.Empty(t, server.Routes())
}

func TestRenderResponsesFor_NilSource(t *testing.T) {
	m := NewMixin(jsonTarget(endpointtest.NewServer()), logger.NewNop())
	assert.False(t, m.RenderResponsesFor(nil, "/api"))

	report := m.RenderResponsesForReport(nil, "/api")
	assert.ErrorIs(t, report.Err, ErrNoSource)
}

func TestRenderResponsesFor_InvalidServiceRejectsRequests(t *testing.T) {
	called := false
	process := func(_ *endpoint.Request, ready endpoint.ReadyFunc) {
		called = true
		ready(nil, nil)
	}
	src := newFakeSource("users",
		endpoint.Table{{Name: "list", URLSubpath: "/users"}, {Name: "get", URLSubpath: "/users/:id"}},
		endpoint.MethodMap{"list": process},
	)
	src.Invalidate()

	server := endpointtest.NewServer()
	m := NewMixin(jsonTarget(server), logger.NewNop())
	require.True(t, m.RenderResponsesFor(src, "/"))

	res, next := server.Serve("get", "/users")
	require.NotNil(t, next)
	assert.False(t, called, "processing method must not run for an invalid service")
	assert.Equal(t, 1, next.Count)
	assert.Equal(t, errors.ErrCodeServiceInvalid, errors.CodeOf(next.Err))
	assert.Empty(t, res.Calls)

	appErr, ok := errors.AsAppError(next.Err)
	require.True(t, ok)
	assert.Equal(t, "users", appErr.Details["service"])
	assert.Equal(t, "list", appErr.Details["endpoint"])
}

func TestRenderResponsesFor_InvalidRendererRejectsRequests(t *testing.T) {
	rendered := false
	target := &validityTarget{
		Named: instance.NewNamed("json"),
		Static: Static{
			Server: endpointtest.NewServer(),
			Default: func(_ *endpoint.Request, _ endpoint.Response, _ endpoint.Next, _ any, _ error, _ ...int) {
				rendered = true
			},
		},
	}
	m := NewMixin(target, logger.NewNop())
	require.True(t, m.RenderResponsesFor(usersService(t), "/api"))

	target.Invalidate()
	res, next := target.Server.(*endpointtest.Server).Serve("get", "/api/users")

	assert.False(t, rendered)
	assert.Empty(t, res.Calls)
	assert.Equal(t, errors.ErrCodeRendererInvalid, errors.CodeOf(next.Err))
	appErr, _ := errors.AsAppError(next.Err)
	assert.Equal(t, "json", appErr.Details["renderer"])
}

func TestRenderResponsesFor_PartialFailure(t *testing.T) {
	var buf bytes.Buffer
	src := newFakeSource("users",
		endpoint.Table{
			{Name: "list", URLSubpath: "/users"},
			{Name: "create", HTTPMethod: "post", URLSubpath: "/users"},
			{Name: "delete", HTTPMethod: "delete", URLSubpath: "/users/:id"},
		},
		endpoint.MethodMap{"list": echo(nil), "delete": echo(nil)},
	)

	server := endpointtest.NewServer()
	m := NewMixin(jsonTarget(server), bufLogger(&buf))
	report := m.RenderResponsesForReport(src, "/api")

	assert.True(t, report.OK())
	assert.Len(t, report.Registered(), 2)
	require.Len(t, report.Failed(), 1)
	assert.Equal(t, "create", report.Failed()[0].Endpoint)
	assert.ErrorIs(t, report.Failed()[0].Err, ErrNoProcessMethod)
	assert.Len(t, server.Routes(), 2)
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Failed to register endpoint")))
}

func TestRenderResponsesFor_FullFailure(t *testing.T) {
	var buf bytes.Buffer
	src := newFakeSource("users",
		endpoint.Table{
			{Name: "a", HTTPMethod: "fetch", URLSubpath: "/a"},
			{Name: "b", HTTPMethod: "brew", URLSubpath: "/b"},
		},
		endpoint.MethodMap{"a": echo(nil), "b": echo(nil)},
	)

	server := endpointtest.NewServer()
	m := NewMixin(jsonTarget(server), bufLogger(&buf))
	report := m.RenderResponsesForReport(src, "/")

	assert.False(t, report.OK())
	assert.Empty(t, server.Routes())
	for _, o := range report.Failed() {
		assert.ErrorIs(t, o.Err, ErrUnknownVerb)
	}
	assert.Contains(t, buf.String(), "method not known by server")
}

func TestRenderResponsesFor_SubsetInOrder(t *testing.T) {
	server := endpointtest.NewServer()
	m := NewMixin(jsonTarget(server), logger.NewNop())

	require.True(t, m.RenderResponsesFor(usersService(t), "/v1", "get", "list"))

	routes := server.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "/v1/users/:id", routes[0].Path)
	assert.Equal(t, "/v1/users", routes[1].Path)
}

func TestRenderResponsesFor_UnknownSubsetName(t *testing.T) {
	server := endpointtest.NewServer()
	m := NewMixin(jsonTarget(server), logger.NewNop())

	report := m.RenderResponsesForReport(usersService(t), "/", "missing")
	assert.False(t, report.OK())
	require.Len(t, report.Failed(), 1)
	assert.ErrorIs(t, report.Failed()[0].Err, ErrNoProcessMethod)
}

func TestRenderResponsesFor_MissingRenderMethod(t *testing.T) {
	server := endpointtest.NewServer()
	target := &Static{Server: server, Methods: endpoint.RenderMethodMap{"list": NewJSON(nil).Render}}
	m := NewMixin(target, logger.NewNop())

	report := m.RenderResponsesForReport(usersService(t), "/")
	assert.True(t, report.OK())
	assert.Len(t, report.Registered(), 1)
	for _, o := range report.Failed() {
		assert.ErrorIs(t, o.Err, ErrNoRenderMethod)
	}
}

func TestRenderResponsesFor_DuplicateRouteFailsEndpoint(t *testing.T) {
	server := endpointtest.NewServer()
	m := NewMixin(jsonTarget(server), logger.NewNop())

	require.True(t, m.RenderResponsesFor(usersService(t), "/api"))
	assert.False(t, m.RenderResponsesFor(usersService(t), "/api"))
	assert.Len(t, server.Routes(), 3)
}

func TestRenderResponsesFor_UnimplementedTarget(t *testing.T) {
	var buf bytes.Buffer
	m := NewMixin(Unimplemented{Log: bufLogger(&buf)}, logger.NewNop())

	report := m.RenderResponsesForReport(usersService(t), "/api")
	assert.ErrorIs(t, report.Err, ErrNoServer)
	assert.False(t, report.OK())
	assert.Contains(t, buf.String(), "HTTPServer not implemented")
}

func TestComposedHandler_ReadyOnlyOnce(t *testing.T) {
	var buf bytes.Buffer
	src := newFakeSource("users",
		endpoint.Table{{Name: "list", URLSubpath: "/users"}},
		endpoint.MethodMap{"list": func(_ *endpoint.Request, ready endpoint.ReadyFunc) {
			ready("first", nil)
			ready("second", nil)
		}},
	)
	server := endpointtest.NewServer()
	m := NewMixin(jsonTarget(server), bufLogger(&buf))
	require.True(t, m.RenderResponsesFor(src, "/"))

	res, _ := server.Serve("get", "/users")
	assert.Equal(t, []string{"json"}, res.Methods())
	assert.Equal(t, map[string]any{"data": "first"}, res.Body)
	assert.Contains(t, buf.String(), "Ready called more than once")
}

func TestComposedHandler_ProcessErrorReachesNext(t *testing.T) {
	notFound := errors.NotFound("user", "7")
	src := newFakeSource("users",
		endpoint.Table{{Name: "get", URLSubpath: "/users/:id"}},
		endpoint.MethodMap{"get": func(_ *endpoint.Request, ready endpoint.ReadyFunc) {
			ready(nil, notFound)
		}},
	)
	server := endpointtest.NewServer()
	m := NewMixin(jsonTarget(server), logger.NewNop())
	require.True(t, m.RenderResponsesFor(src, "/"))

	res, next := server.Serve("get", "/users/:id")
	assert.Same(t, notFound, next.Err)
	assert.Empty(t, res.Calls)
}

func TestComposedHandler_ReadyFromAnotherGoroutine(t *testing.T) {
	src := newFakeSource("jobs",
		endpoint.Table{{Name: "slow", URLSubpath: "/slow"}},
		endpoint.MethodMap{"slow": func(_ *endpoint.Request, ready endpoint.ReadyFunc) {
			go func() {
				time.Sleep(20 * time.Millisecond)
				ready(map[string]any{"ok": true}, nil, http.StatusAccepted)
			}()
		}},
	)
	server := endpointtest.NewServer()
	m := NewMixin(jsonTarget(server), logger.NewNop())
	require.True(t, m.RenderResponsesFor(src, "/"))

	res, next := server.Serve("get", "/slow")
	require.True(t, res.Written, "handler must not return before ready renders")
	assert.Equal(t, http.StatusAccepted, res.Code)
	assert.Equal(t, map[string]any{"ok": true}, res.Body)
	assert.False(t, next.Called)
}

func TestComposedHandler_ReadyAfterRequestEndedIsDropped(t *testing.T) {
	var buf bytes.Buffer
	release := make(chan struct{})
	finished := make(chan struct{})
	src := newFakeSource("jobs",
		endpoint.Table{{Name: "stuck", URLSubpath: "/stuck"}},
		endpoint.MethodMap{"stuck": func(_ *endpoint.Request, ready endpoint.ReadyFunc) {
			go func() {
				<-release
				ready("late", nil)
				close(finished)
			}()
		}},
	)
	server := endpointtest.NewServer()
	m := NewMixin(jsonTarget(server), bufLogger(&buf))
	require.True(t, m.RenderResponsesFor(src, "/"))

	h, ok := server.Route("get", "/stuck")
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := endpointtest.NewRequest("get", "/stuck").WithContext(ctx)
	res := endpointtest.NewResponse()
	next := &endpointtest.Next{}
	h(req, res, next.Func())

	close(release)
	<-finished

	assert.Empty(t, res.Calls)
	assert.False(t, next.Called)
	assert.Contains(t, buf.String(), "Request ended before ready")
	assert.Contains(t, buf.String(), "Ready called after the request ended")
}

func TestRenderResponsesFor_TypedNilSource(t *testing.T) {
	m := NewMixin(jsonTarget(endpointtest.NewServer()), logger.NewNop())

	var svc *service.Service
	report := m.RenderResponsesForReport(svc, "/api")
	assert.ErrorIs(t, report.Err, ErrNoSource)
	assert.False(t, report.OK())
}
