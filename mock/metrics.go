package mock

import (
	"time"

	"github.com/fwojciec/roster"
)

var _ roster.HarvestMetrics = (*HarvestMetrics)(nil)

// HarvestMetrics is a mock implementation of roster.HarvestMetrics. Nil
// functions are ignored.
type HarvestMetrics struct {
	TickObservedFn    func(phase string, added int, d time.Duration)
	AttemptFinishedFn func(attempt int, err error)
	HarvestFinishedFn func(reason string, members int)
}

func (m *HarvestMetrics) TickObserved(phase string, added int, d time.Duration) {
	if m.TickObservedFn != nil {
		m.TickObservedFn(phase, added, d)
	}
}

func (m *HarvestMetrics) AttemptFinished(attempt int, err error) {
	if m.AttemptFinishedFn != nil {
		m.AttemptFinishedFn(attempt, err)
	}
}

func (m *HarvestMetrics) HarvestFinished(reason string, members int) {
	if m.HarvestFinishedFn != nil {
		m.HarvestFinishedFn(reason, members)
	}
}
