package roster

import "time"

// Progress statuses reported while a harvest runs.
const (
	StatusPreparing = "preparing"
	StatusLocating  = "locating"
	StatusScanning  = "scanning"
	StatusPaused    = "paused"
	StatusSweeping  = "sweeping"
	StatusRetrying  = "retrying"
	StatusStopped   = "stopped"
	StatusDone      = "done"
)

// Progress is a progress notification. Percent never decreases within a
// session.
type Progress struct {
	Status  string `json:"status"`
	Count   int    `json:"count"`
	Percent int    `json:"progress"`
}

// ProgressFunc receives progress notifications.
type ProgressFunc func(Progress)

// Status is a snapshot of a harvest service.
type Status struct {
	Running  bool     `json:"running"`
	Paused   bool     `json:"paused"`
	Stopping bool     `json:"stopping"`
	Progress Progress `json:"progress"`
}

// HarvestController exposes the cooperative controls of a running harvest.
// All methods are safe to call from any goroutine and are idempotent.
type HarvestController interface {
	Pause()
	Resume()
	Stop()
	Status() Status
}

// HarvestMetrics records harvest activity.
type HarvestMetrics interface {
	// TickObserved is called after every extraction pass.
	TickObserved(phase string, added int, d time.Duration)

	// AttemptFinished is called after every session attempt; err is nil
	// on success.
	AttemptFinished(attempt int, err error)

	// HarvestFinished is called once a harvest completes or stops.
	HarvestFinished(reason string, members int)
}
