package harvest

import "time"

// Band classifies the recent discovery rate.
type Band int

const (
	BandMedium Band = iota
	BandHigh
	BandLow
)

func (b Band) String() string {
	switch b {
	case BandHigh:
		return "high"
	case BandLow:
		return "low"
	default:
		return "medium"
	}
}

// Controller adapts the scroll step and wait delay to the rate at which new
// members appear. Dense regions get small, slow steps; sparse regions get
// larger, faster ones.
type Controller struct {
	cfg Config

	samples []float64
	next    int
	filled  int
	pending int

	step       float64
	delay      time.Duration
	band       Band
	fastStreak int
}

// NewController returns a Controller in the medium band.
func NewController(cfg Config) *Controller {
	cfg.defaults()
	return &Controller{
		cfg:     cfg,
		samples: make([]float64, cfg.RateWindow),
		step:    cfg.DefaultStep,
		delay:   cfg.DefaultDelay,
	}
}

// Observe records that newItems were discovered over d.
func (c *Controller) Observe(newItems int, d time.Duration) {
	if d <= 0 {
		d = time.Millisecond
	}
	c.samples[c.next] = float64(newItems) / d.Seconds()
	c.next = (c.next + 1) % len(c.samples)
	c.filled = min(c.filled+1, len(c.samples))
	c.pending++

	if c.filled >= c.cfg.AdjustEvery && c.pending >= c.cfg.AdjustEvery {
		c.pending = 0
		c.adjust()
	}
}

func (c *Controller) adjust() {
	var sum float64
	for i := range c.filled {
		sum += c.samples[i]
	}
	mean := sum / float64(c.filled)

	switch {
	case mean > c.cfg.HighRate:
		c.band = BandHigh
		c.step = c.cfg.MinStep
		c.delay = c.cfg.SlowDelay
		c.fastStreak = 0
	case mean < c.cfg.LowRate:
		c.band = BandLow
		c.step = min(c.step*c.cfg.GrowFactor, c.cfg.MaxStep)
		c.delay = max(time.Duration(float64(c.delay)*0.8), c.cfg.FastDelay)
		c.fastStreak++
	default:
		c.band = BandMedium
		c.step = c.cfg.DefaultStep
		c.delay = c.cfg.DefaultDelay
		c.fastStreak = 0
	}
}

// Step returns the scroll distance as a fraction of the viewport height.
func (c *Controller) Step() float64 { return c.step }

// Delay returns how long to wait after scrolling.
func (c *Controller) Delay() time.Duration { return c.delay }

// Band returns the latest classification.
func (c *Controller) Band() Band { return c.band }

// FastStreak returns the number of consecutive low-rate classifications.
func (c *Controller) FastStreak() int { return c.fastStreak }
