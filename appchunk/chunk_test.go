package appchunk

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/endpointkit/component"
	"github.com/kbukum/endpointkit/endpoint"
	"github.com/kbukum/endpointkit/endpoint/endpointtest"
	"github.com/kbukum/endpointkit/errors"
	"github.com/kbukum/endpointkit/logger"
	"github.com/kbukum/endpointkit/render"
	"github.com/kbukum/endpointkit/service"
)

func bufLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", buf)
}

func countingHandler(calls *int) endpoint.Handler {
	return func(_ *endpoint.Request, res endpoint.Response, _ endpoint.Next) {
		*calls++
		res.JSON(map[string]any{"ok": true})
	}
}

func adminOptions(server endpoint.Server, calls *int) Options {
	return Options{
		Name:     "admin",
		RootPath: "/admin/",
		Endpoints: endpoint.Table{
			{Name: "stats", URLSubpath: "/stats"},
			{Name: "flush", HTTPMethod: "post", URLSubpath: "/cache/flush"},
		},
		Handlers: endpoint.HandlerMap{
			"stats": countingHandler(calls),
			"flush": countingHandler(calls),
		},
		Server: server,
		Logger: logger.NewNop(),
	}
}

func TestNew_RegistersOwnEndpoints(t *testing.T) {
	server := endpointtest.NewServer()
	calls := 0

	chunk, err := New(adminOptions(server, &calls))
	require.NoError(t, err)
	assert.True(t, chunk.IsValid())

	routes := server.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "get", routes[0].Verb)
	assert.Equal(t, "/admin/stats", routes[0].Path)
	assert.Equal(t, "post", routes[1].Verb)
	assert.Equal(t, "/admin/cache/flush", routes[1].Path)

	res, next := server.Serve("get", "/admin/stats")
	assert.Equal(t, 1, calls)
	assert.False(t, next.Called)
	assert.Equal(t, map[string]any{"ok": true}, res.Body)

	assert.Len(t, chunk.Routes(), 2)
	assert.NoError(t, chunk.Start(context.Background()))
	assert.Equal(t, component.StatusHealthy, chunk.Health(context.Background()).Status)
}

func TestGuard_InvalidChunkDoesNotInvokeHandler(t *testing.T) {
	server := endpointtest.NewServer()
	calls := 0
	chunk, err := New(adminOptions(server, &calls))
	require.NoError(t, err)

	chunk.Invalidate()
	res, next := server.Serve("post", "/admin/cache/flush")

	assert.Equal(t, 0, calls, "handler must not run after the guard signals")
	assert.Equal(t, 1, next.Count)
	assert.Equal(t, errors.ErrCodeServerAppChunkInvalid, errors.CodeOf(next.Err))
	assert.Empty(t, res.Calls)

	appErr, ok := errors.AsAppError(next.Err)
	require.True(t, ok)
	assert.Equal(t, "admin", appErr.Details["chunk"])
	assert.Equal(t, "flush", appErr.Details["endpoint"])
}

func TestGuard_HandlerErrorPassesThrough(t *testing.T) {
	server := endpointtest.NewServer()
	boom := errors.NotFound("stat", "x")
	_, err := New(Options{
		Name:      "admin",
		Endpoints: endpoint.Table{{Name: "stats", URLSubpath: "/stats"}},
		Handlers: endpoint.HandlerMap{"stats": func(_ *endpoint.Request, _ endpoint.Response, next endpoint.Next) {
			next(boom)
		}},
		Server: server,
		Logger: logger.NewNop(),
	})
	require.NoError(t, err)

	_, next := server.Serve("get", "/stats")
	assert.Same(t, boom, next.Err)
}

func TestNew_MissingHandlerInvalidates(t *testing.T) {
	server := endpointtest.NewServer()
	calls := 0
	opts := adminOptions(server, &calls)
	delete(opts.Handlers, "flush")

	chunk, err := New(opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrMissingMethod)
	require.NotNil(t, chunk)
	assert.False(t, chunk.IsValid())
	assert.Empty(t, server.Routes(), "an invalid chunk stops before self-registration")
	assert.Error(t, chunk.Start(context.Background()))
	assert.Equal(t, component.StatusUnhealthy, chunk.Health(context.Background()).Status)
}

func TestNew_NoServerInvalidates(t *testing.T) {
	calls := 0
	chunk, err := New(adminOptions(nil, &calls))
	assert.ErrorIs(t, err, ErrNoServer)
	assert.False(t, chunk.IsValid())
	assert.ErrorIs(t, chunk.Err(), ErrNoServer)
}

func TestNew_PartialRegistration(t *testing.T) {
	var buf bytes.Buffer
	server := endpointtest.NewServer("get")
	calls := 0
	opts := adminOptions(server, &calls)
	opts.Logger = bufLogger(&buf)

	chunk, err := New(opts)
	require.NoError(t, err)
	assert.True(t, chunk.IsValid())
	assert.Len(t, server.Routes(), 1)
	assert.Contains(t, buf.String(), "method not known by server")
}

func TestNew_NothingRegisteredInvalidates(t *testing.T) {
	server := endpointtest.NewServer("put")
	calls := 0

	chunk, err := New(adminOptions(server, &calls))
	assert.ErrorIs(t, err, ErrNothingRegistered)
	assert.False(t, chunk.IsValid())
}

func TestNew_EmptyTableIsValid(t *testing.T) {
	chunk, err := New(Options{
		Name:      "empty",
		Endpoints: endpoint.Table{},
		Server:    endpointtest.NewServer(),
		Logger:    logger.NewNop(),
	})
	require.NoError(t, err)
	assert.True(t, chunk.IsValid())
}

func usersService(t *testing.T) *service.Service {
	t.Helper()
	svc, err := service.NewService("users", service.Config[endpoint.ProcessFunc]{
		Endpoints: endpoint.Table{
			{Name: "list", URLSubpath: "/"},
			{Name: "count", URLSubpath: "/count"},
		},
		Methods: endpoint.MethodMap{
			"list":  func(_ *endpoint.Request, ready endpoint.ReadyFunc) { ready([]string{"ann"}, nil) },
			"count": func(_ *endpoint.Request, ready endpoint.ReadyFunc) { ready(1, nil) },
		},
		Logger: logger.NewNop(),
	})
	require.NoError(t, err)
	return svc
}

func TestChunk_RendersOtherServices(t *testing.T) {
	server := endpointtest.NewServer()
	calls := 0
	opts := adminOptions(server, &calls)
	opts.RenderMethods = endpoint.RenderMethodMap{"count": render.NewJSON(nil).Render}

	chunk, err := New(opts)
	require.NoError(t, err)

	report := chunk.RenderResponsesForReport(usersService(t), "/admin/users")
	assert.True(t, report.OK())
	require.Len(t, report.Registered(), 1)
	assert.ErrorIs(t, report.Failed()[0].Err, render.ErrNoRenderMethod)

	res, _ := server.Serve("get", "/admin/users/count")
	assert.Equal(t, map[string]any{"data": 1}, res.Body)
	assert.Len(t, chunk.Routes(), 3)
}

func TestChunk_DefaultRenderMethod(t *testing.T) {
	server := endpointtest.NewServer()
	calls := 0
	opts := adminOptions(server, &calls)
	opts.Default = render.NewJSON(nil).Render

	chunk, err := New(opts)
	require.NoError(t, err)
	assert.True(t, chunk.RenderResponsesFor(usersService(t), "/users"))
	assert.Len(t, server.Routes(), 4)
}

func TestChunk_InvalidRendererRejectsAtRequestTime(t *testing.T) {
	server := endpointtest.NewServer()
	calls := 0
	opts := adminOptions(server, &calls)
	opts.Default = render.NewJSON(nil).Render

	chunk, err := New(opts)
	require.NoError(t, err)
	require.True(t, chunk.RenderResponsesFor(usersService(t), "/users"))

	chunk.Invalidate()
	_, next := server.Serve("get", "/users/count")
	assert.Equal(t, errors.ErrCodeRendererInvalid, errors.CodeOf(next.Err))

	appErr, _ := errors.AsAppError(next.Err)
	assert.Equal(t, "admin", appErr.Details["renderer"])
}

func TestChunk_InvalidChunkRefusesToRender(t *testing.T) {
	calls := 0
	chunk, _ := New(adminOptions(nil, &calls))

	report := chunk.RenderResponsesForReport(usersService(t), "/users")
	assert.ErrorIs(t, report.Err, ErrInvalid)
	assert.False(t, report.OK())
}

func TestChunk_Describe(t *testing.T) {
	calls := 0
	chunk, err := New(adminOptions(endpointtest.NewServer(), &calls))
	require.NoError(t, err)

	d := chunk.Describe()
	assert.Equal(t, "chunk", d.Type)
	assert.Equal(t, "root=/admin endpoints=2 routes=2", d.Details)
	assert.Equal(t, "/admin", chunk.RootPath())
}

func TestGuard_WaitsForAsyncHandler(t *testing.T) {
	server := endpointtest.NewServer()
	boom := errors.NotFound("report", "q3")
	_, err := New(Options{
		Name: "reports",
		Endpoints: endpoint.Table{
			{Name: "ready", URLSubpath: "/ready"},
			{Name: "missing", URLSubpath: "/missing"},
		},
		Handlers: endpoint.HandlerMap{
			"ready": func(_ *endpoint.Request, res endpoint.Response, _ endpoint.Next) {
				go func() {
					time.Sleep(20 * time.Millisecond)
					res.Status(202).JSON(map[string]any{"queued": true})
				}()
			},
			"missing": func(_ *endpoint.Request, _ endpoint.Response, next endpoint.Next) {
				go func() {
					time.Sleep(20 * time.Millisecond)
					next(boom)
				}()
			},
		},
		Server: server,
		Logger: logger.NewNop(),
	})
	require.NoError(t, err)

	res, _ := server.Serve("get", "/ready")
	require.True(t, res.Written, "guard must wait for the handler to respond")
	assert.Equal(t, 202, res.Code)

	_, next := server.Serve("get", "/missing")
	assert.Same(t, boom, next.Err)
}

func TestGuard_DropsWritesAfterRequestEnds(t *testing.T) {
	server := endpointtest.NewServer()
	release := make(chan struct{})
	finished := make(chan struct{})
	_, err := New(Options{
		Name:      "reports",
		Endpoints: endpoint.Table{{Name: "stuck", URLSubpath: "/stuck"}},
		Handlers: endpoint.HandlerMap{"stuck": func(_ *endpoint.Request, res endpoint.Response, _ endpoint.Next) {
			go func() {
				<-release
				res.JSON("late")
				close(finished)
			}()
		}},
		Server: server,
		Logger: logger.NewNop(),
	})
	require.NoError(t, err)

	h, ok := server.Route("get", "/stuck")
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := endpointtest.NewResponse()
	h(endpointtest.NewRequest("get", "/stuck").WithContext(ctx), res, (&endpointtest.Next{}).Func())

	close(release)
	<-finished
	assert.Empty(t, res.Calls)
}
