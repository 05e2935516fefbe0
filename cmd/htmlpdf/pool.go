package main

import (
	"context"
	"runtime"
	"sync"

	"github.com/alnah/htmlpdf"
)

// Renderer is the interface for the rendering service.
type Renderer interface {
	Render(ctx context.Context, req htmlpdf.Request) (htmlpdf.Result, error)
}

// Compile-time interface implementation check.
var _ Renderer = (*htmlpdf.Renderer)(nil)

// Pool abstracts renderer pool operations for testability.
type Pool interface {
	Acquire() Renderer
	Release(Renderer)
	Size() int
}

// RendererPool manages a pool of htmlpdf.Renderer instances for parallel
// processing. Each renderer owns its own browser process, enabling true
// parallelism. Renderers are created lazily on first acquire to avoid
// startup delay.
type RendererPool struct {
	size      int
	opts      []htmlpdf.Option
	renderers []*htmlpdf.Renderer
	sem       chan Renderer
	mu        sync.Mutex
	created   int
	closed    bool
}

// NewRendererPool creates a pool with capacity for n Renderer instances,
// each built with opts. Renderers are created lazily when acquired, not at
// pool creation.
func NewRendererPool(n int, opts ...htmlpdf.Option) *RendererPool {
	if n < 1 {
		n = 1
	}

	return &RendererPool{
		size:      n,
		opts:      opts,
		renderers: make([]*htmlpdf.Renderer, 0, n),
		sem:       make(chan Renderer, n),
	}
}

// Compile-time check that RendererPool implements Pool.
var _ Pool = (*RendererPool)(nil)

// Acquire gets a renderer from the pool, creating one if needed. Blocks if
// all renderers are in use.
func (p *RendererPool) Acquire() Renderer {
	select {
	case r := <-p.sem:
		return r
	default:
	}

	p.mu.Lock()
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		r, err := htmlpdf.New(p.opts...)
		if err != nil {
			// Acquire cannot return an error without breaking the Pool
			// interface; the failure surfaces on the first Render call
			// against this stand-in instead.
			return failedRenderer{err: err}
		}

		p.mu.Lock()
		p.renderers = append(p.renderers, r)
		p.mu.Unlock()

		return r
	}
	p.mu.Unlock()

	return <-p.sem
}

// Release returns a renderer to the pool.
func (p *RendererPool) Release(r Renderer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.sem <- r
	}
}

// Close releases all browser resources.
func (p *RendererPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	renderers := p.renderers
	p.mu.Unlock()

	var lastErr error
	for _, r := range renderers {
		if err := r.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Size returns the pool capacity.
func (p *RendererPool) Size() int {
	return p.size
}

// failedRenderer stands in for a renderer whose construction failed, so the
// error surfaces from Render instead of Acquire.
type failedRenderer struct{ err error }

func (f failedRenderer) Render(context.Context, htmlpdf.Request) (htmlpdf.Result, error) {
	return htmlpdf.Result{}, f.err
}

// resolvePoolSize determines the optimal pool size.
// Priority: explicit flag > GOMAXPROCS-based calculation.
func resolvePoolSize(flagWorkers int) int {
	if flagWorkers > 0 {
		return flagWorkers
	}

	available := runtime.GOMAXPROCS(0)
	n := available / 2

	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}
