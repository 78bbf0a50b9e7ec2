package harvest

import "time"

// Config holds the tunables of a harvest. Zero values are replaced by
// defaults, so a partially filled Config (e.g. decoded from YAML) is valid.
type Config struct {
	// Extraction.
	MaxItems         int           `yaml:"max_items"`
	BufferMultiplier float64       `yaml:"buffer_multiplier"`
	NodeMemoTTL      time.Duration `yaml:"node_memo_ttl"`
	QueryCacheSize   int           `yaml:"query_cache_size"`
	DefaultEstimate  int           `yaml:"default_estimate"`

	// Scan and sweep.
	SettleDelay     time.Duration `yaml:"settle_delay"`
	PauseInterval   time.Duration `yaml:"pause_interval"`
	ConfirmDelay    time.Duration `yaml:"confirm_delay"`
	SweepDelay      time.Duration `yaml:"sweep_delay"`
	MinAdvance      float64       `yaml:"min_advance"`
	BottomTolerance float64       `yaml:"bottom_tolerance"`
	MaxIdleTicks    int           `yaml:"max_idle_ticks"`
	MaxFastStreak   int           `yaml:"max_fast_streak"`
	MaxTicks        int           `yaml:"max_ticks"`
	MaxSweepSteps   int           `yaml:"max_sweep_steps"`

	// Discovery-rate control. Rates are new items per second, steps are
	// fractions of the viewport height.
	RateWindow   int           `yaml:"rate_window"`
	AdjustEvery  int           `yaml:"adjust_every"`
	HighRate     float64       `yaml:"high_rate"`
	LowRate      float64       `yaml:"low_rate"`
	MinStep      float64       `yaml:"min_step"`
	MaxStep      float64       `yaml:"max_step"`
	DefaultStep  float64       `yaml:"default_step"`
	GrowFactor   float64       `yaml:"grow_factor"`
	DefaultDelay time.Duration `yaml:"default_delay"`
	SlowDelay    time.Duration `yaml:"slow_delay"`
	FastDelay    time.Duration `yaml:"fast_delay"`

	// Progress. Percentages on the 0-100 scale.
	ProgressFloor   int `yaml:"progress_floor"`
	ProgressCeiling int `yaml:"progress_ceiling"`
	DoneFloor       int `yaml:"done_floor"`

	// ProgressInterval debounces notifications. Negative disables it.
	ProgressInterval time.Duration `yaml:"progress_interval"`

	// Retries.
	Attempts int           `yaml:"attempts"`
	Backoff  time.Duration `yaml:"backoff"`
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	var c Config
	c.defaults()
	return c
}

func (c *Config) defaults() {
	if c.MaxItems <= 0 {
		c.MaxItems = 5000
	}
	if c.BufferMultiplier <= 0 {
		c.BufferMultiplier = 0.5
	}
	if c.NodeMemoTTL <= 0 {
		c.NodeMemoTTL = 2 * time.Second
	}
	if c.QueryCacheSize <= 0 {
		c.QueryCacheSize = 64
	}
	if c.DefaultEstimate <= 0 {
		c.DefaultEstimate = 100
	}

	if c.SettleDelay <= 0 {
		c.SettleDelay = 500 * time.Millisecond
	}
	if c.PauseInterval <= 0 {
		c.PauseInterval = 200 * time.Millisecond
	}
	if c.ConfirmDelay <= 0 {
		c.ConfirmDelay = 300 * time.Millisecond
	}
	if c.SweepDelay <= 0 {
		c.SweepDelay = 200 * time.Millisecond
	}
	if c.MinAdvance <= 0 {
		c.MinAdvance = 2
	}
	if c.BottomTolerance <= 0 {
		c.BottomTolerance = 4
	}
	if c.MaxIdleTicks <= 0 {
		c.MaxIdleTicks = 15
	}
	if c.MaxFastStreak <= 0 {
		c.MaxFastStreak = 6
	}
	if c.MaxTicks <= 0 {
		c.MaxTicks = 2000
	}
	if c.MaxSweepSteps <= 0 {
		c.MaxSweepSteps = 400
	}

	if c.RateWindow <= 0 {
		c.RateWindow = 10
	}
	if c.AdjustEvery <= 0 {
		c.AdjustEvery = 5
	}
	if c.HighRate <= 0 {
		c.HighRate = 8
	}
	if c.LowRate <= 0 {
		c.LowRate = 2
	}
	if c.MinStep <= 0 {
		c.MinStep = 0.3
	}
	if c.MaxStep <= 0 {
		c.MaxStep = 0.9
	}
	if c.MaxStep < c.MinStep {
		c.MaxStep = c.MinStep
	}
	if c.DefaultStep <= 0 {
		c.DefaultStep = 0.6
	}
	c.DefaultStep = min(max(c.DefaultStep, c.MinStep), c.MaxStep)
	if c.GrowFactor <= 1 {
		c.GrowFactor = 1.25
	}
	if c.DefaultDelay <= 0 {
		c.DefaultDelay = 250 * time.Millisecond
	}
	if c.SlowDelay <= 0 {
		c.SlowDelay = 400 * time.Millisecond
	}
	if c.FastDelay <= 0 {
		c.FastDelay = 100 * time.Millisecond
	}

	if c.ProgressFloor <= 0 {
		c.ProgressFloor = 10
	}
	if c.ProgressCeiling <= 0 {
		c.ProgressCeiling = 90
	}
	if c.DoneFloor <= 0 {
		c.DoneFloor = 95
	}
	if c.ProgressInterval == 0 {
		c.ProgressInterval = 250 * time.Millisecond
	}

	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.Backoff <= 0 {
		c.Backoff = 2 * time.Second
	}
}
