package endpoint

import (
	"context"
	"sync"
)

// Gate ties a Response and Next to the lifetime of the request they belong
// to. Writes are serialized, and once the serving handler stops waiting the
// gate is closed and later writes are dropped.
type Gate struct {
	mu       sync.Mutex
	closed   bool
	finished bool
	done     chan struct{}
}

// NewGate returns an open gate.
func NewGate() *Gate {
	return &Gate{done: make(chan struct{})}
}

// Do runs fn unless the gate is closed and reports whether it ran.
func (g *Gate) Do(fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	fn()
	return true
}

// Finish runs fn unless the gate is closed and marks the response complete.
// It reports whether fn ran.
func (g *Gate) Finish(fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	fn()
	if !g.finished {
		g.finished = true
		close(g.done)
	}
	return true
}

// Wait blocks until the response is complete or ctx is done, then closes the
// gate. It returns ctx's error when the request ended first.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.done:
	case <-ctx.Done():
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	if g.finished {
		return nil
	}
	return ctx.Err()
}

// Response wraps res so each call goes through the gate. JSON completes it.
func (g *Gate) Response(res Response) Response {
	return &gatedResponse{res: res, gate: g}
}

// Next wraps next so it goes through the gate and completes it.
func (g *Gate) Next(next Next) Next {
	return func(err error) {
		g.Finish(func() { next(err) })
	}
}

type gatedResponse struct {
	res  Response
	gate *Gate
}

func (r *gatedResponse) Status(code int) Response {
	r.gate.Do(func() { r.res.Status(code) })
	return r
}

func (r *gatedResponse) Set(headers map[string]string) Response {
	r.gate.Do(func() { r.res.Set(headers) })
	return r
}

func (r *gatedResponse) JSON(payload any) {
	r.gate.Finish(func() { r.res.JSON(payload) })
}
