package harvest

import (
	"sync"
	"time"

	"github.com/fwojciec/roster"
	"golang.org/x/time/rate"
)

// Estimator maps a member count onto a percentage range. The returned
// value never decreases.
type Estimator struct {
	floor   int
	ceiling int
	total   int
	last    int
}

// NewEstimator returns an Estimator reporting between floor and ceiling
// for a list of about total items.
func NewEstimator(floor, ceiling, total int) *Estimator {
	ceiling = min(ceiling, 100)
	floor = min(max(floor, 0), ceiling)
	return &Estimator{
		floor:   floor,
		ceiling: ceiling,
		total:   max(total, 1),
		last:    floor,
	}
}

// Update returns the percentage for count members.
func (e *Estimator) Update(count int) int {
	p := e.floor + count*(e.ceiling-e.floor)/e.total
	return e.Raise(min(p, e.ceiling))
}

// Raise lifts the percentage to at least p and returns it.
func (e *Estimator) Raise(p int) int {
	if p > e.last {
		e.last = min(p, 100)
	}
	return e.last
}

// Last returns the highest percentage reported so far.
func (e *Estimator) Last() int {
	return e.last
}

// reporter forwards progress to a caller. The percentage is held monotonic
// and intermediate events are rate limited; status changes and forced
// events always pass.
type reporter struct {
	fn      roster.ProgressFunc
	clock   roster.Clock
	limiter *rate.Limiter

	mu   sync.Mutex
	last roster.Progress
}

func newReporter(fn roster.ProgressFunc, clock roster.Clock, interval time.Duration) *reporter {
	r := &reporter{fn: fn, clock: clock}
	if interval > 0 {
		r.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return r
}

func (r *reporter) report(p roster.Progress, force bool) {
	r.mu.Lock()
	p.Percent = min(max(p.Percent, r.last.Percent), 100)
	changed := p.Status != r.last.Status
	r.last = p
	pass := force || changed || r.limiter == nil || r.limiter.AllowN(r.clock.Now(), 1)
	r.mu.Unlock()

	if pass && r.fn != nil {
		r.fn(p)
	}
}

// raise lifts the displayed percentage without notifying.
func (r *reporter) raise(p int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last.Percent = min(max(r.last.Percent, p), 100)
}

func (r *reporter) percent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last.Percent
}

func (r *reporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last.Count
}
