package view

// Generation detects stale deferred work. Every reconciliation pass
// bumps the counter; a deferred callback captures the bumped value and
// does nothing if a newer pass has started by the time it fires, so
// timers never need hard cancellation.
type Generation struct {
	n uint64
}

// Bump starts a new generation and returns its token.
func (g *Generation) Bump() uint64 {
	g.n++
	return g.n
}

// Current reports the live generation token.
func (g *Generation) Current() uint64 {
	return g.n
}
