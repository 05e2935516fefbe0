package cdp

import (
	"context"
	"sync"

	"github.com/alnah/htmlpdf/internal/logging"
)

type sessionState int

const (
	sessionIdle sessionState = iota
	sessionBusy
	sessionRetired
)

// Session is a worker bound to one browser Target/BrowserContext. It runs
// at most one Protocol at a time and serializes access to that protocol
// between its own goroutine (via Run) and Connection's inbound reader (via
// HandleInbound) with a single mutex, so call/output step functions can
// assume they run without racing an incoming message.
type Session struct {
	mu       sync.Mutex
	state    sessionState
	useCount int
	maxUses  int
	fatal    error

	connection        *Connection
	targetID          string
	browserContextID  string
	devtoolsSessionID string

	current *Protocol
	logger  *logging.Logger
}

// NewSession creates a Session bound to conn. It must be started with Start
// before it can run print protocols.
func NewSession(conn *Connection, maxUses int, logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{connection: conn, maxUses: maxUses, logger: logger, state: sessionIdle}
}

// Dispatch implements Dispatcher for the protocol steps this session runs.
func (s *Session) Dispatch(method string, params any) (int64, error) {
	return s.connection.dispatch(s, method, params)
}

// DevToolsSessionID returns the CDP-assigned session id, empty until Start
// has completed.
func (s *Session) DevToolsSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.devtoolsSessionID
}

// HasActiveProtocol reports whether a protocol is currently running, used
// by Connection to decide which sessions receive a browser-scoped event
// with no sessionId of its own.
func (s *Session) HasActiveProtocol() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// UseCount returns how many use-counting protocols this session has
// completed.
func (s *Session) UseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.useCount
}

// ShouldRetire reports whether the session must not be reused: it has
// failed fatally or exhausted its use budget.
func (s *Session) ShouldRetire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == sessionRetired
}

// Start runs the bootstrap protocol (create context, create target, attach)
// and records the resulting identifiers.
func (s *Session) Start(ctx context.Context, cfg BootstrapConfig) error {
	proto := buildBootstrapProtocol(cfg)
	out, err := s.RunSync(ctx, proto)
	if err != nil {
		return err
	}
	if out.Err != nil {
		return out.Err
	}
	attached := out.Value.(bootstrapResult)
	s.mu.Lock()
	s.browserContextID = attached.BrowserContextID
	s.targetID = attached.TargetID
	s.devtoolsSessionID = attached.SessionID
	s.mu.Unlock()
	s.connection.bindSession(attached.SessionID, s)
	return nil
}

// Run drives protocol p to completion asynchronously, invoking resultFn
// exactly once with its outcome. It rejects a second concurrent Run with
// ErrBusy, and rejects any Run on a retired session with ErrRetired.
func (s *Session) Run(ctx context.Context, p *Protocol, resultFn func(Outcome)) error {
	s.mu.Lock()
	if s.state == sessionRetired {
		s.mu.Unlock()
		return ErrRetired
	}
	if s.current != nil {
		s.mu.Unlock()
		return ErrBusy
	}
	s.current = p
	s.state = sessionBusy

	done := make(chan Outcome, 1)
	p.result = func(o Outcome) { done <- o }
	p.advance(s)
	s.mu.Unlock()

	go func() {
		var out Outcome
		select {
		case out = <-done:
		case <-ctx.Done():
			s.forceDone(p)
			out = Outcome{Err: ErrTimeout}
		}
		s.finish(p, out)
		resultFn(out)
	}()
	return nil
}

// RunSync is Run's synchronous counterpart, used internally for bootstrap
// and by callers that already run on their own goroutine.
func (s *Session) RunSync(ctx context.Context, p *Protocol) (Outcome, error) {
	result := make(chan Outcome, 1)
	err := s.Run(ctx, p, func(o Outcome) { result <- o })
	if err != nil {
		return Outcome{}, err
	}
	return <-result, nil
}

// HandleInbound feeds one message routed by Connection to the currently
// running protocol, if any. Messages arriving with no active protocol are
// discarded.
func (s *Session) HandleInbound(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.current.deliver(msg, s)
}

func (s *Session) forceDone(p *Protocol) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == p {
		p.done = true
	}
}

func (s *Session) finish(p *Protocol, out Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != p {
		return
	}
	if p.Counts {
		s.useCount++
	}
	if isFatal(out.Err) {
		s.fatal = out.Err
	}
	s.current = nil
	if s.fatal != nil || (s.maxUses > 0 && s.useCount >= s.maxUses) {
		s.state = sessionRetired
	} else {
		s.state = sessionIdle
	}
}

// Fail forces the session and any in-flight protocol to fail with err, used
// when the owning Connection observes the browser died.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	p := s.current
	s.fatal = err
	s.state = sessionRetired
	s.current = nil
	s.mu.Unlock()
	if p != nil {
		p.finish(Outcome{Err: err})
	}
}

// Retire detaches the session's target and marks it unusable. Best-effort:
// if the connection is already gone this is a no-op past the state change.
func (s *Session) Retire() {
	s.mu.Lock()
	s.state = sessionRetired
	s.mu.Unlock()
	if s.connection != nil {
		s.connection.UnregisterSession(s)
	}
}

// MarkDead marks the session retired without attempting to talk to its
// connection, used when the connection itself is already known gone (a
// supervisor restart draining stale idle sessions).
func (s *Session) MarkDead() {
	s.mu.Lock()
	s.state = sessionRetired
	s.mu.Unlock()
}
