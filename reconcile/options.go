package reconcile

import (
	"time"

	"github.com/hupe1980/chatbridge/logging"
)

// DefaultInterval is the pause between two sweeps.
const DefaultInterval = 24 * time.Hour

// Config defines tuning parameters for the reconciliation loop.
type Config struct {
	// Interval between the end of one sweep and the start of the next.
	Interval time.Duration

	// DeleteConcurrency bounds parallel per-channel deletes when the store
	// has no batch delete.
	DeleteConcurrency int

	// SkipEmptyDirectory skips a sweep when the directory reports no live
	// channels while the store is not empty. Off by default: an empty live
	// set makes every stored conversation an orphan.
	SkipEmptyDirectory bool
}

// DefaultConfig provides production defaults: a daily sweep and four delete
// workers.
var DefaultConfig = Config{
	Interval:          DefaultInterval,
	DeleteConcurrency: 4,
}

// Options configures a Task or Manager using the functional options pattern.
type Options struct {
	Config

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// OnSweep, when set, receives every sweep result after it is logged.
	// It runs on the task goroutine and must not block.
	OnSweep func(SweepResult)
}

func defaultOptions() Options {
	return Options{Config: DefaultConfig, Logger: logging.NoOpLogger{}}
}

func (o *Options) normalize() {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.DeleteConcurrency <= 0 {
		o.DeleteConcurrency = 1
	}
	o.Logger = logging.WithComponent(o.Logger, "reconcile")
}
