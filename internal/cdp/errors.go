package cdp

import "errors"

// Sentinel errors for the protocol engine. Callers should use errors.Is
// against these rather than comparing strings.
var (
	// ErrSpawnFailed means the browser subprocess could not be started.
	ErrSpawnFailed = errors.New("cdp: browser spawn failed")

	// ErrTransportClosed means the pipe transport is gone, either because
	// the browser exited or Stop was called.
	ErrTransportClosed = errors.New("cdp: transport closed")

	// ErrBrowserDied means the connection observed the transport close
	// unexpectedly (not via an explicit Stop).
	ErrBrowserDied = errors.New("cdp: browser process died")

	// ErrProtocolError wraps a CDP error response or a malformed message
	// that a protocol step could not make sense of.
	ErrProtocolError = errors.New("cdp: protocol error")

	// ErrTimeout means a Run call's context expired before the protocol
	// reached completion. The session that ran it is retired, since its
	// in-flight browser state is no longer trustworthy.
	ErrTimeout = errors.New("cdp: run timed out")

	// ErrBusy means Run was called on a Session that already has a
	// protocol in flight.
	ErrBusy = errors.New("cdp: session busy")

	// ErrRetired means Run or Start was called on a Session that has
	// already been retired.
	ErrRetired = errors.New("cdp: session retired")

	// ErrPoolExhausted means Checkout found no idle session and none
	// became available before the caller's context was done.
	ErrPoolExhausted = errors.New("cdp: session pool exhausted")

	// ErrPoolClosed means Checkout was called after Close. (Checkin after
	// Close returns nothing; it retires the session.)
	ErrPoolClosed = errors.New("cdp: session pool closed")
)

// isFatal reports whether err should force the session that produced it
// into retirement rather than returning to the idle pool.
func isFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrBrowserDied) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrProtocolError) ||
		errors.Is(err, ErrTransportClosed)
}
