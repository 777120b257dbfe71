package bootstrap

import (
	"errors"
	"fmt"

	"github.com/kbukum/endpointkit/appchunk"
	"github.com/kbukum/endpointkit/endpoint"
	"github.com/kbukum/endpointkit/render"
)

// ErrUnknownChunk is returned by Chunk when no chunk of that name is configured.
var ErrUnknownChunk = errors.New("chunk not configured")

// Chunk builds the configured chunk called name on the app's server and
// registers it as a component. Its own endpoints are served by handlers;
// services it renders use renderMethods, falling back to the app renderer.
//
// An invalid chunk is returned with its error and is not registered.
func (a *App[C]) Chunk(name string, handlers endpoint.HandlerMap, renderMethods endpoint.RenderMethodMap) (*appchunk.Chunk, error) {
	cc, ok := a.Cfg.GetAppConfig().ChunkConfig(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChunk, name)
	}

	chunk, err := appchunk.New(appchunk.Options{
		Name:          cc.Name,
		RootPath:      cc.RootPath,
		Endpoints:     cc.Endpoints,
		Handlers:      handlers,
		Server:        a.Server,
		RenderMethods: renderMethods,
		Default:       a.Renderer.Render,
		Logger:        a.Logger,
		Metrics:       a.Metrics,
	})
	if err != nil {
		return chunk, err
	}
	if err := a.Components.Register(chunk); err != nil {
		return chunk, err
	}
	a.chunks = append(a.chunks, chunk)
	return chunk, nil
}

// Render registers svc's endpoints under rootPath through a standalone
// renderer bound to the app's server and JSON renderer.
func (a *App[C]) Render(svc render.Source, rootPath string, subset ...string) render.Report {
	target := &render.Static{Server: a.Server, Default: a.Renderer.Render}
	mixin := render.NewMixin(target, a.Logger, render.WithMetrics(a.Metrics), render.WithRendererName("json"))
	return mixin.RenderResponsesForReport(svc, rootPath, subset...)
}

// Chunks returns the chunks built through Chunk, in build order.
func (a *App[C]) Chunks() []*appchunk.Chunk {
	out := make([]*appchunk.Chunk, len(a.chunks))
	copy(out, a.chunks)
	return out
}
