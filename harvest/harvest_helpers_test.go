package harvest_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/goquery"
	"github.com/fwojciec/roster/harvest"
	"github.com/fwojciec/roster/mock"
	"github.com/fwojciec/roster/sim"
	"github.com/stretchr/testify/assert"
)

var testStart = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

// testConfig returns the default configuration with every progress event
// delivered.
func testConfig() harvest.Config {
	cfg := harvest.DefaultConfig()
	cfg.ProgressInterval = -1
	return cfg
}

func newHarvester(cfg harvest.Config, clock roster.Clock) *harvest.Harvester {
	return &harvest.Harvester{
		Finder:    harvest.NewSelectorFinder(),
		Extractor: goquery.NewExtractor(goquery.WithClock(clock)),
		Sizer:     goquery.NewSizeEstimator(),
		Clock:     clock,
		Config:    cfg,
	}
}

func newRunner(list *sim.List, cfg harvest.Config, clock roster.Clock) *harvest.Runner {
	return &harvest.Runner{
		Locator: &mock.ContainerLocator{
			LocateFn: func(context.Context) (roster.Container, error) { return list, nil },
		},
		Harvester: newHarvester(cfg, clock),
		Namer:     list,
		Clock:     clock,
		SourceURL: "https://chat.example.com/group/1",
		Config:    cfg,
	}
}

// recorder collects progress events.
type recorder struct {
	mu     sync.Mutex
	events []roster.Progress
}

func (r *recorder) record(p roster.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, p)
}

func (r *recorder) all() []roster.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]roster.Progress(nil), r.events...)
}

func (r *recorder) last() roster.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return roster.Progress{}
	}
	return r.events[len(r.events)-1]
}

func (r *recorder) statuses(status string) int {
	n := 0
	for _, p := range r.all() {
		if p.Status == status {
			n++
		}
	}
	return n
}

func assertMonotonic(t *testing.T, events []roster.Progress) {
	t.Helper()
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Percent, events[i-1].Percent, "event %d (%s) went backwards", i, events[i].Status)
	}
}

func memberNames(members []roster.Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}
