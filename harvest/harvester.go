package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/lru"
)

// Reason describes why a harvest ended.
type Reason string

const (
	ReasonEnd     Reason = "end"
	ReasonCap     Reason = "item_cap"
	ReasonIdle    Reason = "idle"
	ReasonStalled Reason = "stalled"
	ReasonTicks   Reason = "tick_cap"
	ReasonStopped Reason = "stopped"
)

// confirmPasses is the number of extra extractions run when the scan
// appears to have reached the end of the list.
const confirmPasses = 2

// Outcome is the result of a single harvest.
type Outcome struct {
	Members        []roster.Member
	Reason         Reason
	Stopped        bool
	Ticks          int
	SweepSteps     int
	EstimatedTotal int
}

// Harvester scrolls a virtualized list and collects every entry it
// renders. It scans downward at an adaptive pace, then sweeps the whole
// range once more at a fixed pace to pick up entries it missed.
type Harvester struct {
	Finder    roster.NodeFinder
	Extractor roster.NodeExtractor
	Sizer     roster.SizeEstimator
	Metrics   roster.HarvestMetrics
	Clock     roster.Clock
	Logger    *slog.Logger
	Config    Config
}

// Harvest runs one harvest of c. Stopping through s is not an error: the
// members collected so far are returned with Stopped set. Failing to read
// or scroll the container aborts the harvest.
func (h *Harvester) Harvest(ctx context.Context, c roster.Container, s *Session, report roster.ProgressFunc) (*Outcome, error) {
	if c == nil {
		return nil, roster.Errorf(roster.ENOTFOUND, "scroll container not found")
	}
	if h.Extractor == nil {
		return nil, roster.Errorf(roster.EINVALID, "node extractor required")
	}
	r := h.newRun(c, s, report)
	defer r.cleanup()
	return r.execute(ctx)
}

// run holds the state of one harvest.
type run struct {
	cfg       Config
	finder    roster.NodeFinder
	extractor roster.NodeExtractor
	sizer     roster.SizeEstimator
	metrics   roster.HarvestMetrics
	clock     roster.Clock
	logger    *slog.Logger

	c        roster.Container
	s        *Session
	report   roster.ProgressFunc
	progress *Estimator

	members *memberSet
	queries *lru.Cache[string, []roster.Node]
	memo    *nodeMemo
	ctrl    *Controller

	phase      string
	viewport   float64
	capped     bool
	ticks      int
	sweepSteps int
}

func (h *Harvester) newRun(c roster.Container, s *Session, report roster.ProgressFunc) *run {
	cfg := h.Config
	cfg.defaults()

	r := &run{
		cfg:       cfg,
		finder:    h.Finder,
		extractor: h.Extractor,
		sizer:     h.Sizer,
		metrics:   h.Metrics,
		clock:     h.Clock,
		logger:    h.Logger,
		c:         c,
		s:         s,
		report:    report,
		members:   newMemberSet(cfg.MaxItems),
		queries:   lru.New[string, []roster.Node](cfg.QueryCacheSize),
		memo:      newNodeMemo(cfg.NodeMemoTTL),
		ctrl:      NewController(cfg),
		phase:     roster.StatusScanning,
	}
	if r.finder == nil {
		r.finder = NewSelectorFinder()
	}
	if r.metrics == nil {
		r.metrics = nopMetrics{}
	}
	if r.clock == nil {
		r.clock = SystemClock{}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.s == nil {
		r.s = NewSession()
	}
	return r
}

func (r *run) execute(ctx context.Context) (*Outcome, error) {
	total := r.estimateTotal(ctx)
	r.progress = r.s.begin(total, r.cfg)

	m, err := r.c.Metrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("read scroll metrics: %w", err)
	}
	if m.ClientHeight <= 0 {
		return nil, roster.Errorf(roster.ENOTFOUND, "scroll container has no height")
	}
	r.viewport = m.ClientHeight
	r.logger.Debug("harvest started", "estimated_total", total, "viewport", r.viewport)

	if err := r.c.ScrollTo(ctx, 0); err != nil {
		return nil, fmt.Errorf("scroll to top: %w", err)
	}
	if err := r.clock.Sleep(ctx, r.cfg.SettleDelay); err != nil {
		return nil, err
	}
	r.extract(ctx)

	reason, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	if reason != ReasonStopped {
		r.logger.Debug("scan finished", "reason", reason, "count", r.members.len(), "ticks", r.ticks)
		stopped, err := r.sweep(ctx)
		if err != nil {
			return nil, err
		}
		if stopped {
			reason = ReasonStopped
		}
	}
	return r.finish(reason, total), nil
}

// scan advances through the list until it ends, a safety limit trips or
// the session is stopped.
func (r *run) scan(ctx context.Context) (Reason, error) {
	idle := 0
	for {
		if r.s.Stopped() {
			return ReasonStopped, nil
		}
		if r.s.Paused() {
			if err := r.waitWhilePaused(ctx); err != nil {
				return "", err
			}
			continue
		}
		if r.capped {
			r.logger.Info("item cap reached", "count", r.members.len())
			return ReasonCap, nil
		}
		if r.ticks >= r.cfg.MaxTicks {
			r.logger.Info("tick cap reached", "ticks", r.ticks, "count", r.members.len())
			return ReasonTicks, nil
		}
		r.ticks++

		before, err := r.c.Metrics(ctx)
		if err != nil {
			return "", fmt.Errorf("read scroll metrics: %w", err)
		}
		if err := r.c.ScrollTo(ctx, before.ScrollTop+r.ctrl.Step()*r.viewport); err != nil {
			return "", fmt.Errorf("scroll: %w", err)
		}
		start := r.clock.Now()
		if err := r.clock.Sleep(ctx, r.ctrl.Delay()); err != nil {
			return "", err
		}
		added := r.extract(ctx)
		r.ctrl.Observe(added, r.clock.Now().Sub(start))

		if r.capped {
			continue
		}

		after, err := r.c.Metrics(ctx)
		if err != nil {
			return "", fmt.Errorf("read scroll metrics: %w", err)
		}
		if after.ScrollTop-before.ScrollTop < r.cfg.MinAdvance || after.AtBottom(r.cfg.BottomTolerance) {
			grew, err := r.confirmEnd(ctx, after)
			if err != nil {
				return "", err
			}
			if r.s.Stopped() {
				return ReasonStopped, nil
			}
			if !grew {
				return ReasonEnd, nil
			}
			idle = 0
			continue
		}

		if added == 0 {
			idle++
		} else {
			idle = 0
		}
		if idle >= r.cfg.MaxIdleTicks {
			r.logger.Info("no new members", "ticks", idle, "count", r.members.len())
			return ReasonIdle, nil
		}
		if r.ctrl.FastStreak() >= r.cfg.MaxFastStreak {
			r.logger.Info("discovery stalled", "streak", r.ctrl.FastStreak(), "count", r.members.len())
			return ReasonStalled, nil
		}
	}
}

// confirmEnd re-extracts at the end of the scroll range, giving lazily
// loaded entries time to appear. It reports whether the list grew.
func (r *run) confirmEnd(ctx context.Context, at roster.ScrollMetrics) (bool, error) {
	for range confirmPasses {
		if r.s.Stopped() {
			return false, nil
		}
		if err := r.clock.Sleep(ctx, r.cfg.ConfirmDelay); err != nil {
			return false, err
		}
		r.requery(ctx)
		r.extract(ctx)
		m, err := r.c.Metrics(ctx)
		if err != nil {
			return false, fmt.Errorf("read scroll metrics: %w", err)
		}
		if m.ScrollHeight > at.ScrollHeight+r.cfg.MinAdvance {
			r.logger.Debug("list grew", "from", at.ScrollHeight, "to", m.ScrollHeight)
			return true, nil
		}
	}
	return false, nil
}

// sweep revisits the whole range in half-viewport steps. It reports
// whether the session was stopped.
func (r *run) sweep(ctx context.Context) (bool, error) {
	r.phase = roster.StatusSweeping
	if err := r.c.ScrollTo(ctx, 0); err != nil {
		return false, fmt.Errorf("scroll to top: %w", err)
	}
	if err := r.clock.Sleep(ctx, r.cfg.SweepDelay); err != nil {
		return false, err
	}
	r.requery(ctx)
	r.extract(ctx)

	for r.sweepSteps < r.cfg.MaxSweepSteps && !r.capped {
		if r.s.Stopped() {
			return true, nil
		}
		if r.s.Paused() {
			if err := r.waitWhilePaused(ctx); err != nil {
				return false, err
			}
			continue
		}
		m, err := r.c.Metrics(ctx)
		if err != nil {
			return false, fmt.Errorf("read scroll metrics: %w", err)
		}
		if m.AtBottom(r.cfg.BottomTolerance) {
			break
		}
		if err := r.c.ScrollTo(ctx, m.ScrollTop+r.viewport/2); err != nil {
			return false, fmt.Errorf("scroll: %w", err)
		}
		if err := r.clock.Sleep(ctx, r.cfg.SweepDelay); err != nil {
			return false, err
		}
		r.sweepSteps++
		r.extract(ctx)

		after, err := r.c.Metrics(ctx)
		if err != nil {
			return false, fmt.Errorf("read scroll metrics: %w", err)
		}
		if after.ScrollTop-m.ScrollTop < r.cfg.MinAdvance {
			break
		}
	}
	if r.sweepSteps >= r.cfg.MaxSweepSteps {
		r.logger.Info("sweep step cap reached", "steps", r.sweepSteps, "count", r.members.len())
	}

	if r.s.Stopped() {
		return true, nil
	}
	r.requery(ctx)
	r.extract(ctx)
	return false, nil
}

func (r *run) waitWhilePaused(ctx context.Context) error {
	r.logger.Info("harvest paused", "count", r.members.len())
	r.emit(roster.StatusPaused, r.progress.Last())
	for r.s.Paused() && !r.s.Stopped() {
		if err := r.clock.Sleep(ctx, r.cfg.PauseInterval); err != nil {
			return err
		}
	}
	if !r.s.Stopped() {
		r.logger.Info("harvest resumed", "count", r.members.len())
		r.emit(r.phase, r.progress.Last())
	}
	return nil
}

func (r *run) finish(reason Reason, total int) *Outcome {
	stopped := reason == ReasonStopped
	count := r.members.len()
	if stopped {
		r.emit(roster.StatusStopped, r.progress.Last())
	} else {
		r.emit(roster.StatusDone, r.progress.Raise(r.cfg.DoneFloor))
	}
	r.metrics.HarvestFinished(string(reason), count)
	r.logger.Info("harvest finished", "reason", reason, "count", count, "ticks", r.ticks, "sweep_steps", r.sweepSteps)

	return &Outcome{
		Members:        r.members.list(),
		Reason:         reason,
		Stopped:        stopped,
		Ticks:          r.ticks,
		SweepSteps:     r.sweepSteps,
		EstimatedTotal: total,
	}
}

func (r *run) cleanup() {
	r.queries.Clear()
	r.memo.clear()
	r.members.reset()
}

func (r *run) estimateTotal(ctx context.Context) int {
	if r.sizer == nil {
		return r.cfg.DefaultEstimate
	}
	n, err := r.sizer.EstimateTotal(ctx, r.c)
	if err != nil || n <= 0 || n > r.cfg.MaxItems {
		r.logger.Debug("size hint unavailable", "hint", n, "err", err)
		return r.cfg.DefaultEstimate
	}
	return n
}

// extract runs one extraction pass and reports progress.
func (r *run) extract(ctx context.Context) int {
	start := r.clock.Now()
	added := r.extractVisible(ctx)
	r.metrics.TickObserved(r.phase, added, r.clock.Now().Sub(start))
	r.emit(r.phase, r.progress.Update(r.members.len()))
	return added
}

func (r *run) emit(status string, percent int) {
	if r.report == nil {
		return
	}
	r.report(roster.Progress{Status: status, Count: r.members.len(), Percent: percent})
}

// extractVisible collects the entries rendered around the viewport and
// returns how many new members it added.
func (r *run) extractVisible(ctx context.Context) int {
	if r.capped {
		return 0
	}
	m, err := r.c.Metrics(ctx)
	if err != nil {
		r.logger.Debug("read scroll metrics failed", "err", err)
		return 0
	}
	nodes, err := r.candidates(ctx, m)
	if err != nil {
		r.logger.Debug("find item nodes failed", "err", err)
		return 0
	}

	buffer := m.ClientHeight * r.cfg.BufferMultiplier
	lo := m.ViewportTop - buffer
	hi := m.ViewportTop + m.ClientHeight + buffer

	now := r.clock.Now()
	r.memo.prune(now)

	added := 0
	for _, n := range nodes {
		if r.s.Stopped() {
			break
		}
		if !n.Bounds().Intersects(lo, hi) {
			continue
		}
		rec := r.extractOne(ctx, n, now)
		if rec == nil || !roster.ValidName(rec.Name) {
			continue
		}
		key := roster.NormalizeKey(rec.Name, rec.Phone)
		if key == "" || r.members.has(key) {
			continue
		}
		if r.members.len() >= r.cfg.MaxItems {
			r.capped = true
			break
		}
		r.members.add(roster.Member{
			Key:         key,
			Name:        roster.CleanName(rec.Name),
			Phone:       rec.Phone,
			IsAdmin:     rec.IsAdmin,
			ExtractedAt: rec.ExtractedAt,
		})
		added++
	}
	if r.members.len() >= r.cfg.MaxItems {
		r.capped = true
	}
	return added
}

func queryKey(m roster.ScrollMetrics) string {
	return fmt.Sprintf("%.0f:%.0f", m.ScrollTop, m.ScrollHeight)
}

// requery drops the nodes cached for the current scroll position, so the
// next extraction sees rows rendered since they were queried.
func (r *run) requery(ctx context.Context) {
	m, err := r.c.Metrics(ctx)
	if err != nil {
		return
	}
	r.queries.Remove(queryKey(m))
}

// candidates returns the item nodes for the current scroll position,
// reusing the nodes found at the same position earlier in the harvest.
func (r *run) candidates(ctx context.Context, m roster.ScrollMetrics) ([]roster.Node, error) {
	key := queryKey(m)
	if nodes, ok := r.queries.Get(key); ok {
		return nodes, nil
	}
	nodes, err := r.finder.FindItemNodes(ctx, r.c)
	if err != nil {
		return nil, err
	}
	r.queries.Set(key, nodes)
	return nodes, nil
}

// extractOne returns the record of a single node, or nil if the node does
// not describe an entry. Failures are absorbed.
func (r *run) extractOne(ctx context.Context, n roster.Node, now time.Time) (rec *roster.RawRecord) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Debug("node extraction panicked", "node", n.ID(), "panic", p)
			rec = nil
		}
	}()

	html, err := n.HTML(ctx)
	if err != nil {
		r.logger.Debug("read node markup failed", "node", n.ID(), "err", err)
		return nil
	}
	hash := xxhash.Sum64String(html)
	if rec, ok := r.memo.get(n.ID(), hash, now); ok {
		return rec
	}

	rec, err = r.extractor.Extract(ctx, snapshot{Node: n, html: html})
	if err != nil {
		r.logger.Debug("extract node failed", "node", n.ID(), "err", err)
		rec = nil
	}
	r.memo.put(n.ID(), hash, rec, now)
	return rec
}

// snapshot pins a node's markup to what was already read, so the
// extractor parses exactly the content that was hashed.
type snapshot struct {
	roster.Node
	html string
}

func (s snapshot) HTML(context.Context) (string, error) {
	return s.html, nil
}

var _ roster.HarvestMetrics = nopMetrics{}

type nopMetrics struct{}

func (nopMetrics) TickObserved(string, int, time.Duration) {}
func (nopMetrics) AttemptFinished(int, error)              {}
func (nopMetrics) HarvestFinished(string, int)             {}
