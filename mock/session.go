package mock

import (
	"context"

	"github.com/fwojciec/roster"
)

var _ roster.SessionPreparer = (*SessionPreparer)(nil)

// SessionPreparer is a mock implementation of roster.SessionPreparer.
type SessionPreparer struct {
	PrepareFn func(ctx context.Context) error
}

func (p *SessionPreparer) Prepare(ctx context.Context) error {
	return p.PrepareFn(ctx)
}

var _ roster.GroupNamer = (*GroupNamer)(nil)

// GroupNamer is a mock implementation of roster.GroupNamer.
type GroupNamer struct {
	GroupNameFn func(ctx context.Context) (string, error)
}

func (n *GroupNamer) GroupName(ctx context.Context) (string, error) {
	return n.GroupNameFn(ctx)
}

var _ roster.HarvestController = (*HarvestController)(nil)

// HarvestController is a mock implementation of roster.HarvestController.
type HarvestController struct {
	PauseFn  func()
	ResumeFn func()
	StopFn   func()
	StatusFn func() roster.Status
}

func (c *HarvestController) Pause() {
	c.PauseFn()
}

func (c *HarvestController) Resume() {
	c.ResumeFn()
}

func (c *HarvestController) Stop() {
	c.StopFn()
}

func (c *HarvestController) Status() roster.Status {
	return c.StatusFn()
}
