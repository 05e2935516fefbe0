package cdp

import (
	"context"
	"sync"
	"time"

	"github.com/alnah/htmlpdf/internal/hints"
	"github.com/alnah/htmlpdf/internal/logging"
)

// SupervisorConfig assembles everything needed to (re)build the three-layer
// tree: browser process, Connection, and SessionPool.
type SupervisorConfig struct {
	Launch       LaunchOptions
	Bootstrap    BootstrapConfig
	PoolSize     int
	MaxUses      int
	OnDemand     bool
	InitTimeout  time.Duration
	Logger       *logging.Logger
}

// Supervisor owns the browser process, its Connection, and the SessionPool
// built on top of it. When the Connection reports the browser died, the
// supervisor launches a replacement browser and rebinds the pool to it,
// discarding stale idle sessions rather than trying to resurrect them.
type Supervisor struct {
	cfg    SupervisorConfig
	logger *logging.Logger

	mu   sync.RWMutex
	conn *Connection
	pool *SessionPool
}

// NewSupervisor launches a browser, opens its connection, and builds the
// session pool on top of it.
func NewSupervisor(cfg SupervisorConfig) (*Supervisor, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Supervisor{cfg: cfg, logger: logger}
	if err := s.startConnection(); err != nil {
		return nil, err
	}
	s.pool = NewSessionPool(cfg.PoolSize, cfg.MaxUses, cfg.OnDemand, s.newSession, logger)
	return s, nil
}

// Pool returns the current session pool. It remains the same object across
// browser restarts; only the sessions it hands out change.
func (s *Supervisor) Pool() *SessionPool {
	return s.pool
}

// Close tears down the pool and the current browser process.
func (s *Supervisor) Close() error {
	s.pool.Close()
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	return conn.Close()
}

func (s *Supervisor) startConnection() error {
	conn, err := Open(s.cfg.Launch, s.logger, s.onFatal)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	return nil
}

func (s *Supervisor) currentConnection() *Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

func (s *Supervisor) newSession(ctx context.Context) (*Session, error) {
	conn := s.currentConnection()
	sess := NewSession(conn, s.cfg.MaxUses, s.logger)

	initCtx := ctx
	if s.cfg.InitTimeout > 0 {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, s.cfg.InitTimeout)
		defer cancel()
	}
	if err := sess.Start(initCtx, s.cfg.Bootstrap); err != nil {
		return nil, err
	}
	return sess, nil
}

// onFatal is called from Connection's reader goroutine once, when the
// transport dies unexpectedly. It restarts the browser and drops every
// idle session in the pool, since they point at targets in a browser
// process that no longer exists.
func (s *Supervisor) onFatal(err error) {
	s.logger.Error("cdp: connection lost, restarting browser", "error", err, "hint", hints.ForBrowserCrash())
	if restartErr := s.startConnection(); restartErr != nil {
		s.logger.Error("cdp: failed to restart browser", "error", restartErr, "hint", hints.ForSpawnFailed())
		return
	}
	s.pool.Drain()
}
