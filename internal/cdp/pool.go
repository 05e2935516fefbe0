package cdp

import (
	"context"
	"sync"

	"github.com/alnah/htmlpdf/internal/logging"
)

// SessionPool is a fixed-size, non-queueing checkout/checkin pool of
// Sessions. It never blocks a Checkout past the caller's context deadline,
// and it never grows beyond size sessions concurrently outstanding. In
// OnDemand mode it instead spawns one fresh session per Checkout and
// retires it unconditionally on Checkin, trading throughput for isolation.
type SessionPool struct {
	size     int
	maxUses  int
	onDemand bool
	factory  func(ctx context.Context) (*Session, error)
	logger   *logging.Logger

	mu      sync.Mutex
	created int
	closed  bool
	all     map[*Session]struct{}
	idle    chan *Session
}

// NewSessionPool builds a pool that lazily creates up to size sessions via
// factory.
func NewSessionPool(size, maxUses int, onDemand bool, factory func(ctx context.Context) (*Session, error), logger *logging.Logger) *SessionPool {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SessionPool{
		size:     size,
		maxUses:  maxUses,
		onDemand: onDemand,
		factory:  factory,
		logger:   logger,
		all:      make(map[*Session]struct{}),
		idle:     make(chan *Session, size),
	}
}

// Checkout returns an idle session, lazily creating one if the pool hasn't
// reached size yet, or waits for one to be checked in. It returns
// ErrPoolExhausted the instant ctx is done with nothing available, so a
// zero-value (already-expired) context fails immediately rather than
// blocking at all.
func (p *SessionPool) Checkout(ctx context.Context) (*Session, error) {
	if p.onDemand {
		return p.factory(ctx)
	}

	select {
	case sess, ok := <-p.idle:
		if !ok {
			return nil, ErrPoolClosed
		}
		return sess, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()
		sess, err := p.factory(ctx)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}
		p.mu.Lock()
		p.all[sess] = struct{}{}
		p.mu.Unlock()
		return sess, nil
	}
	p.mu.Unlock()

	select {
	case sess, ok := <-p.idle:
		if !ok {
			return nil, ErrPoolClosed
		}
		return sess, nil
	case <-ctx.Done():
		return nil, ErrPoolExhausted
	}
}

// Checkin returns sess to the pool, or retires it and schedules a
// replacement if it has hit its use budget or failed fatally.
func (p *SessionPool) Checkin(sess *Session) {
	if p.onDemand {
		sess.Retire()
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		sess.Retire()
		return
	}
	retire := sess.ShouldRetire()
	if retire {
		delete(p.all, sess)
	}
	p.mu.Unlock()

	if !retire {
		p.idle <- sess
		return
	}

	sess.Retire()
	go p.replace()
}

func (p *SessionPool) replace() {
	sess, err := p.factory(context.Background())
	if err != nil {
		p.logger.Error("cdp: failed to replace retired session", "error", err)
		p.mu.Lock()
		p.created--
		p.mu.Unlock()
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		sess.Retire()
		return
	}
	p.all[sess] = struct{}{}
	p.mu.Unlock()
	p.idle <- sess
}

// Drain discards every currently idle session without replacing them and
// resets the creation counter, used after a supervisor restart when idle
// sessions belong to a browser process that no longer exists.
func (p *SessionPool) Drain() {
	p.mu.Lock()
	p.created = 0
	drained := make([]*Session, 0, len(p.idle))
loop:
	for {
		select {
		case sess := <-p.idle:
			drained = append(drained, sess)
		default:
			break loop
		}
	}
	for _, sess := range drained {
		delete(p.all, sess)
	}
	p.mu.Unlock()

	for _, sess := range drained {
		sess.MarkDead()
	}
}

// Close retires every session the pool knows about and stops accepting new
// checkouts.
func (p *SessionPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	all := make([]*Session, 0, len(p.all))
	for sess := range p.all {
		all = append(all, sess)
	}
	p.all = make(map[*Session]struct{})
	close(p.idle)
	// Empty the buffer so a later Checkout sees the closed channel instead
	// of receiving a session that is about to be retired.
	for range p.idle {
	}
	p.mu.Unlock()

	for _, sess := range all {
		sess.Retire()
	}
}
