package harvest

import "sync/atomic"

// Session carries the control flags of one harvest. The flags may be set
// from any goroutine; the harvest reads them at its checkpoints.
type Session struct {
	running atomic.Bool
	paused  atomic.Bool
	stopped atomic.Bool
	floor   atomic.Int64
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{}
}

// Pause asks the harvest to suspend at its next checkpoint.
func (s *Session) Pause() { s.paused.Store(true) }

// Resume lets a paused harvest continue.
func (s *Session) Resume() { s.paused.Store(false) }

// Stop asks the harvest to end at its next checkpoint and return what it
// has collected so far. Stop also releases a pause.
func (s *Session) Stop() {
	s.stopped.Store(true)
	s.paused.Store(false)
}

// Running reports whether a harvest currently uses the session.
func (s *Session) Running() bool { return s.running.Load() }

// Paused reports whether a pause was requested.
func (s *Session) Paused() bool { return s.paused.Load() }

// Stopped reports whether a stop was requested.
func (s *Session) Stopped() bool { return s.stopped.Load() }

// setFloor sets the percentage the next harvest starts reporting from.
func (s *Session) setFloor(p int) { s.floor.Store(int64(p)) }

// begin returns a progress estimator for a new harvest over total items.
func (s *Session) begin(total int, cfg Config) *Estimator {
	floor := max(cfg.ProgressFloor, int(s.floor.Load()))
	return NewEstimator(floor, cfg.ProgressCeiling, total)
}
