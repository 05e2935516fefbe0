package cdp

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/alnah/htmlpdf/internal/hints"
	"github.com/alnah/htmlpdf/internal/logging"
)

// Connection multiplexes one browser process's pipe transport across many
// Sessions. It owns the call-id counter and the two routing tables: pending
// call id -> Session, and attached devtools sessionId -> Session.
type Connection struct {
	transport *Transport
	logger    *logging.Logger
	onFatal   func(error)

	mu           sync.Mutex
	nextID       int64
	closed       bool
	calls        map[int64]*Session
	sessionsByID map[string]*Session
}

// Open spawns a browser process and starts routing its DevTools pipe.
// onFatal, if non-nil, is invoked once if the transport dies unexpectedly
// so a supervisor can restart it.
func Open(opts LaunchOptions, logger *logging.Logger, onFatal func(error)) (*Connection, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	transport, err := Spawn(opts)
	if err != nil {
		return nil, err
	}
	c := &Connection{
		transport:    transport,
		logger:       logger,
		onFatal:      onFatal,
		nextID:       1,
		calls:        make(map[int64]*Session),
		sessionsByID: make(map[string]*Session),
	}
	go c.readLoop()
	return c, nil
}

// Close asks the browser to exit and stops routing.
func (c *Connection) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.transport.Stop(5 * time.Second)
}

func (c *Connection) bindSession(devtoolsSessionID string, s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionsByID[devtoolsSessionID] = s
}

// UnregisterSession detaches s's target and drops its routing entries.
// Best-effort: errors from the detach calls are logged, not returned, since
// the caller (Session.Retire, SessionPool teardown) has no useful recovery.
func (c *Connection) UnregisterSession(s *Session) {
	id := s.DevToolsSessionID()
	if id == "" {
		return
	}
	if _, err := c.dispatch(s, "Target.detachFromTarget", map[string]any{"sessionId": id}); err != nil {
		c.logger.Debug("cdp: detach failed", "sessionId", id, "error", err)
	}

	c.mu.Lock()
	delete(c.sessionsByID, id)
	for callID, sess := range c.calls {
		if sess == s {
			delete(c.calls, callID)
		}
	}
	c.mu.Unlock()
}

// dispatch assigns a call id, records the routing entry, and writes the
// framed call to the transport.
func (c *Connection) dispatch(s *Session, method string, params any) (int64, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrTransportClosed
	}
	id := c.nextID
	c.nextID++
	c.calls[id] = s
	c.mu.Unlock()

	frame, err := json.Marshal(outboundCall{
		ID:        id,
		SessionID: s.DevToolsSessionID(),
		Method:    method,
		Params:    params,
	})
	if err != nil {
		return 0, fmt.Errorf("cdp: marshaling %s: %w", method, err)
	}
	if err := c.transport.Send(frame); err != nil {
		return 0, err
	}
	return id, nil
}

func (c *Connection) readLoop() {
	for {
		frame, err := c.transport.Recv()
		if err != nil {
			c.onTransportClosed(err)
			return
		}
		var msg Message
		if err := json.Unmarshal(frame, &msg); err != nil {
			c.logger.Warn("cdp: malformed message", "error", err)
			continue
		}
		c.route(msg)
	}
}

func (c *Connection) route(msg Message) {
	if msg.ID != 0 {
		c.mu.Lock()
		sess, ok := c.calls[msg.ID]
		if ok {
			delete(c.calls, msg.ID)
		}
		c.mu.Unlock()
		if ok {
			sess.HandleInbound(msg)
		}
		return
	}

	if msg.Method == "Inspector.targetCrashed" {
		c.logger.Error("cdp: target crashed", "sessionId", msg.SessionID, "hint", hints.ForBrowserCrash())
	}

	if msg.SessionID != "" {
		c.mu.Lock()
		sess, ok := c.sessionsByID[msg.SessionID]
		c.mu.Unlock()
		if ok {
			sess.HandleInbound(msg)
		}
		return
	}

	// Browser-scoped event with no sessionId: fan out to every session
	// with a protocol in flight, since any of them could be waiting on it.
	c.mu.Lock()
	targets := make([]*Session, 0, len(c.sessionsByID))
	for _, sess := range c.sessionsByID {
		if sess.HasActiveProtocol() {
			targets = append(targets, sess)
		}
	}
	c.mu.Unlock()
	for _, sess := range targets {
		sess.HandleInbound(msg)
	}
}

func (c *Connection) onTransportClosed(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	victims := make(map[*Session]struct{})
	for _, sess := range c.calls {
		victims[sess] = struct{}{}
	}
	for _, sess := range c.sessionsByID {
		victims[sess] = struct{}{}
	}
	c.calls = make(map[int64]*Session)
	c.sessionsByID = make(map[string]*Session)
	c.mu.Unlock()

	for sess := range victims {
		sess.Fail(ErrBrowserDied)
	}

	if c.onFatal != nil {
		c.onFatal(fmt.Errorf("%w: %v", ErrBrowserDied, err))
	}
}
