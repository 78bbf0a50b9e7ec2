package harvest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/roster"
)

// maxBaseline caps the percentage a retry attempt starts from.
const maxBaseline = 20

// Runner performs a complete harvest session: it prepares the page,
// locates the list and harvests it, retrying the whole sequence when any
// stage fails.
type Runner struct {
	Preparer  roster.SessionPreparer
	Locator   roster.ContainerLocator
	Harvester *Harvester
	Namer     roster.GroupNamer
	Metrics   roster.HarvestMetrics
	Clock     roster.Clock
	Logger    *slog.Logger

	// SourceURL is recorded on the result.
	SourceURL string

	// Config supplies Attempts, Backoff and ProgressInterval.
	Config Config
}

// Run harvests until an attempt succeeds or all attempts fail. A stopped
// session yields the partial result without error. Progress passed to fn
// never decreases across attempts.
func (r *Runner) Run(ctx context.Context, s *Session, fn roster.ProgressFunc) (*roster.Result, error) {
	if r.Locator == nil || r.Harvester == nil {
		return nil, roster.Errorf(roster.EINVALID, "locator and harvester required")
	}
	cfg := r.Config
	cfg.defaults()
	clock := r.clock()
	logger := r.logger()
	metrics := r.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if s == nil {
		s = NewSession()
	}

	rep := newReporter(fn, clock, cfg.ProgressInterval)
	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if s.Stopped() {
			return r.stopped(ctx, rep), nil
		}
		if attempt > 1 {
			logger.Info("retrying harvest", "attempt", attempt, "backoff", cfg.Backoff)
			rep.report(roster.Progress{Status: roster.StatusRetrying, Count: rep.count(), Percent: rep.percent()}, true)
			if err := clock.Sleep(ctx, cfg.Backoff); err != nil {
				return nil, err
			}
			if s.Stopped() {
				return r.stopped(ctx, rep), nil
			}
		}
		rep.raise(min(5*attempt, maxBaseline))

		out, err := r.attempt(ctx, s, rep)
		metrics.AttemptFinished(attempt, err)
		if err == nil {
			return r.complete(ctx, out, rep), nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		logger.Warn("harvest attempt failed", "attempt", attempt, "err", err)
	}
	return nil, fmt.Errorf("harvest failed after %d attempts: %w", cfg.Attempts, lastErr)
}

func (r *Runner) attempt(ctx context.Context, s *Session, rep *reporter) (*Outcome, error) {
	rep.report(roster.Progress{Status: roster.StatusPreparing, Percent: rep.percent()}, false)
	if r.Preparer != nil {
		if err := r.Preparer.Prepare(ctx); err != nil {
			return nil, fmt.Errorf("prepare: %w", err)
		}
	}

	rep.report(roster.Progress{Status: roster.StatusLocating, Percent: rep.percent()}, false)
	c, err := r.Locator.Locate(ctx)
	if err != nil {
		return nil, fmt.Errorf("locate: %w", err)
	}
	if c == nil {
		return nil, roster.Errorf(roster.ENOTFOUND, "scroll container not found")
	}

	s.setFloor(rep.percent())
	return r.Harvester.Harvest(ctx, c, s, func(p roster.Progress) {
		rep.report(p, p.Status == roster.StatusDone || p.Status == roster.StatusStopped)
	})
}

func (r *Runner) complete(ctx context.Context, out *Outcome, rep *reporter) *roster.Result {
	result := &roster.Result{
		GroupName:    r.groupName(ctx),
		SourceURL:    r.SourceURL,
		TotalMembers: len(out.Members),
		Members:      out.Members,
		ExtractedAt:  r.clock().Now().UTC(),
		Stopped:      out.Stopped,
	}
	if out.Stopped {
		rep.report(roster.Progress{Status: roster.StatusStopped, Count: len(out.Members), Percent: rep.percent()}, true)
	} else {
		rep.report(roster.Progress{Status: roster.StatusDone, Count: len(out.Members), Percent: 100}, true)
	}
	return result
}

// stopped returns the empty result of a session stopped between attempts.
func (r *Runner) stopped(ctx context.Context, rep *reporter) *roster.Result {
	rep.report(roster.Progress{Status: roster.StatusStopped, Percent: rep.percent()}, true)
	return &roster.Result{
		GroupName:   r.groupName(ctx),
		SourceURL:   r.SourceURL,
		Members:     []roster.Member{},
		ExtractedAt: r.clock().Now().UTC(),
		Stopped:     true,
	}
}

func (r *Runner) groupName(ctx context.Context) string {
	if r.Namer == nil {
		return ""
	}
	name, err := r.Namer.GroupName(ctx)
	if err != nil {
		r.logger().Debug("group name unavailable", "err", err)
		return ""
	}
	return roster.CleanName(name)
}

func (r *Runner) clock() roster.Clock {
	if r.Clock != nil {
		return r.Clock
	}
	return SystemClock{}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
