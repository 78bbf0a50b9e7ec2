package harvest

import (
	"context"
	"sync"

	"github.com/fwojciec/roster"
)

var _ roster.HarvestController = (*Service)(nil)

// Service runs one harvest at a time and exposes its controls to other
// goroutines, such as an HTTP handler or a signal handler.
type Service struct {
	Runner *Runner

	mu      sync.Mutex
	session *Session
	last    roster.Progress
}

// NewService returns a Service using runner.
func NewService(runner *Runner) *Service {
	return &Service{Runner: runner}
}

// Start runs a harvest and blocks until it finishes. It returns ECONFLICT
// if another harvest is running.
func (s *Service) Start(ctx context.Context, fn roster.ProgressFunc) (*roster.Result, error) {
	s.mu.Lock()
	if s.session != nil {
		s.mu.Unlock()
		return nil, roster.Errorf(roster.ECONFLICT, "harvest already running")
	}
	sess := NewSession()
	sess.running.Store(true)
	s.session = sess
	s.last = roster.Progress{}
	s.mu.Unlock()

	defer func() {
		sess.running.Store(false)
		s.mu.Lock()
		s.session = nil
		s.mu.Unlock()
	}()

	return s.Runner.Run(ctx, sess, func(p roster.Progress) {
		s.mu.Lock()
		s.last = p
		s.mu.Unlock()
		if fn != nil {
			fn(p)
		}
	})
}

// Pause suspends the running harvest. It does nothing when idle.
func (s *Service) Pause() {
	if sess := s.current(); sess != nil {
		sess.Pause()
	}
}

// Resume continues a paused harvest. It does nothing when idle.
func (s *Service) Resume() {
	if sess := s.current(); sess != nil {
		sess.Resume()
	}
}

// Stop ends the running harvest early. It does nothing when idle.
func (s *Service) Stop() {
	if sess := s.current(); sess != nil {
		sess.Stop()
	}
}

// Status returns the control flags and the latest progress.
func (s *Service) Status() roster.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := roster.Status{Progress: s.last}
	if s.session != nil {
		st.Running = s.session.Running()
		st.Paused = s.session.Paused()
		st.Stopping = s.session.Stopped()
	}
	return st
}

func (s *Service) current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}
