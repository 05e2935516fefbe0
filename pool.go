package htmlpdf

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// Group sizing constants.
const (
	// MinGroupSize ensures at least one renderer is available.
	MinGroupSize = 1

	// MaxGroupSize caps browser processes to limit memory (~200MB each).
	MaxGroupSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// Group manages a pool of Renderer instances for parallel processing. Each
// Renderer owns its own browser process, so Renders across different
// Renderers proceed with true parallelism rather than contending for one
// browser's sessions. Renderers are created lazily on first acquire to
// avoid paying every browser's startup cost up front.
type Group struct {
	size      int
	opts      []Option
	factory   func(opts ...Option) (*Renderer, error)
	mu        sync.Mutex
	renderers []*Renderer
	created   int
	closed    bool
	sem       chan *Renderer
}

// NewGroup creates a Group with capacity for n Renderers, each built with
// opts.
func NewGroup(n int, opts ...Option) *Group {
	if n < 1 {
		n = 1
	}
	return &Group{
		size:      n,
		opts:      opts,
		factory:   New,
		renderers: make([]*Renderer, 0, n),
		sem:       make(chan *Renderer, n),
	}
}

// Render acquires a Renderer, runs req through it, and returns it to the
// group. ctx bounds both the acquisition of a free Renderer and the render
// itself.
func (g *Group) Render(ctx context.Context, req Request) (Result, error) {
	r, err := g.acquire(ctx)
	if err != nil {
		return Result{}, err
	}
	defer g.release(r)
	return r.Render(ctx, req)
}

// acquire gets a Renderer from the group, creating one if the group hasn't
// reached its size yet, or waits for one to be released.
func (g *Group) acquire(ctx context.Context) (*Renderer, error) {
	select {
	case r, ok := <-g.sem:
		if ok {
			return r, nil
		}
	default:
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil, ErrClosed
	}
	if g.created < g.size {
		g.created++
		g.mu.Unlock()

		r, err := g.factory(g.opts...)
		if err != nil {
			g.mu.Lock()
			g.created--
			g.mu.Unlock()
			return nil, err
		}

		g.mu.Lock()
		g.renderers = append(g.renderers, r)
		g.mu.Unlock()
		return r, nil
	}
	g.mu.Unlock()

	select {
	case r, ok := <-g.sem:
		if !ok {
			return nil, ErrClosed
		}
		return r, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrPoolExhausted, ctx.Err())
	}
}

func (g *Group) release(r *Renderer) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()
	g.sem <- r
}

// Close closes every Renderer the group has created. Returns an aggregated
// error if multiple renderers fail to close.
func (g *Group) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	close(g.sem)
	renderers := g.renderers
	g.mu.Unlock()

	var errs []error
	for _, r := range renderers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the group's capacity.
func (g *Group) Size() int {
	return g.size
}

// ResolveGroupSize determines the optimal group size. Priority: explicit
// workers > GOMAXPROCS-based calculation.
func ResolveGroupSize(workers int) int {
	if workers > 0 {
		return workers
	}

	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinGroupSize {
		return MinGroupSize
	}
	if n > MaxGroupSize {
		return MaxGroupSize
	}
	return n
}
