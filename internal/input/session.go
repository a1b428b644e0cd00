package input

import "sync"

// sessionGate serializes the start/stop lifecycle of a restartable
// hook-backed session (input capture, hotkey registration). A session
// that stops, or that fails before becoming ready, leaves the gate
// restartable; the owner replaces its per-session channels when begin
// reports reset.
type sessionGate struct {
	mu      sync.Mutex
	started bool
	stopped bool
}

// begin admits a new session. launch is false while a session is
// already running; reset is true when a previous session ran and the
// owner's channels must be replaced before launching.
func (g *sessionGate) begin() (launch, reset bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started && !g.stopped {
		return false, false
	}
	reset = g.started
	g.started = true
	g.stopped = false
	return true, reset
}

// fail marks a session that never became ready as terminated, so the
// next begin launches again instead of treating the dead session as
// running.
func (g *sessionGate) fail() {
	g.mu.Lock()
	g.stopped = true
	g.mu.Unlock()
}

// end marks the running session stopped. It reports false when there is
// no running session to stop.
func (g *sessionGate) end() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started || g.stopped {
		return false
	}
	g.stopped = true
	return true
}
