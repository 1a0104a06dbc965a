package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/chatbridge/core"
	"github.com/sourcegraph/conc/pool"
)

var (
	// ErrAlreadyStarted is returned when Run is called on a Task more than once.
	ErrAlreadyStarted = errors.New("reconciliation task already started")

	// ErrSweepPanic wraps a panic raised by the store or the directory during
	// a sweep. The sweep fails; the loop carries on.
	ErrSweepPanic = errors.New("reconciliation sweep panicked")
)

// State is the position of a Task in its lifecycle:
//
//	Idle -> Running -> (Sweeping <-> Sleeping) -> Stopped
type State int32

const (
	// StateIdle: constructed, not yet started.
	StateIdle State = iota
	// StateRunning: started, about to perform the first sweep.
	StateRunning
	// StateSweeping: diffing stored against live channels and deleting orphans.
	StateSweeping
	// StateSleeping: waiting for the interval to elapse.
	StateSleeping
	// StateStopped: cancellation observed, loop exited.
	StateStopped
)

// String returns the lower case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSweeping:
		return "sweeping"
	case StateSleeping:
		return "sleeping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Stored    int      // stored channel ids
	Live      int      // live channel ids
	Orphans   []string // stored minus live, ascending
	Deleted   int64    // conversations actually removed
	Failed    []string // orphans whose delete failed, ascending
	Skipped   bool     // SkipEmptyDirectory guard tripped
	Err       error
}

// Task is the reconciliation loop. A Task runs at most once; use a Manager
// to restart.
type Task struct {
	store     core.ConversationStore
	directory core.ChannelDirectory
	opts      Options

	state   atomic.Int32
	started atomic.Bool
	sweeps  atomic.Int64
}

// NewTask binds a reconciliation loop to a store and a channel directory.
func NewTask(store core.ConversationStore, directory core.ChannelDirectory, optFns ...func(o *Options)) *Task {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.normalize()
	return newTask(store, directory, opts)
}

func newTask(store core.ConversationStore, directory core.ChannelDirectory, opts Options) *Task {
	return &Task{store: store, directory: directory, opts: opts}
}

// State returns the current lifecycle state.
func (t *Task) State() State { return State(t.state.Load()) }

// Sweeps returns the number of sweeps performed so far.
func (t *Task) Sweeps() int64 { return t.sweeps.Load() }

func (t *Task) setState(s State) { t.state.Store(int32(s)) }

// Run sweeps immediately and then once per interval until ctx is cancelled.
// It returns nil on cancellation; sweep failures are logged, never returned.
// Network calls of a sweep are not interrupted by ctx.
func (t *Task) Run(ctx context.Context) error {
	if !t.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	t.setState(StateRunning)
	defer t.setState(StateStopped)

	logger := t.opts.Logger
	logger.Info("Reconciliation task started", "interval", t.opts.Interval)

	sweepCtx := context.WithoutCancel(ctx)
	for ctx.Err() == nil {
		t.setState(StateSweeping)
		t.Sweep(sweepCtx)

		t.setState(StateSleeping)
		if !sleep(ctx, t.opts.Interval) {
			break
		}
	}

	logger.Info("Reconciliation task stopped", "sweeps", t.Sweeps())
	return nil
}

// sleep waits for d and reports false when ctx is cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Sweep performs one reconciliation pass and reports its outcome. The orphan
// set is computed on identifiers only; conversation content is never read.
// The sweep deletes, it never creates.
func (t *Task) Sweep(ctx context.Context) SweepResult {
	res := SweepResult{ID: uuid.NewString(), StartedAt: time.Now()}
	t.recoverSweep(ctx, &res)
	res.Duration = time.Since(res.StartedAt)

	t.sweeps.Add(1)
	t.report(res)
	if t.opts.OnSweep != nil {
		t.opts.OnSweep(res)
	}
	return res
}

func (t *Task) recoverSweep(ctx context.Context, res *SweepResult) {
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("%w: %v", ErrSweepPanic, r)
		}
	}()
	t.sweep(ctx, res)
}

func (t *Task) sweep(ctx context.Context, res *SweepResult) {
	stored := core.NewChannelSet()
	for id, err := range t.store.ListChannelIDs(ctx) {
		if err != nil {
			var se *core.StorageError
			if !errors.As(err, &se) {
				err = core.NewStorageError("list", "", err)
			}
			res.Err = err
			return
		}
		stored.Add(id)
	}
	res.Stored = stored.Len()

	live, err := t.directory.LiveChannelIDs(ctx)
	if err != nil {
		res.Err = &core.DirectoryError{Err: err}
		return
	}
	res.Live = live.Len()

	if res.Live == 0 && res.Stored > 0 && t.opts.SkipEmptyDirectory {
		res.Skipped = true
		return
	}

	res.Orphans = stored.Difference(live)
	if len(res.Orphans) == 0 {
		return
	}
	if bd, ok := t.store.(core.BatchDeleter); ok {
		t.deleteBatch(ctx, bd, res)
		return
	}
	t.deleteEach(ctx, res)
}

func (t *Task) deleteBatch(ctx context.Context, bd core.BatchDeleter, res *SweepResult) {
	n, err := bd.DeleteMany(ctx, res.Orphans)
	if err != nil {
		res.Failed = append([]string(nil), res.Orphans...)
		res.Err = err
		return
	}
	res.Deleted = n
}

func (t *Task) deleteEach(ctx context.Context, res *SweepResult) {
	var (
		mu   sync.Mutex
		errs []error
	)
	p := pool.New().WithMaxGoroutines(t.opts.DeleteConcurrency)
	for _, id := range res.Orphans {
		p.Go(func() {
			deleted, err := t.store.Delete(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				derr := &core.ReconciliationDeleteError{ChannelID: id, Err: err}
				t.opts.Logger.Error("Failed to delete orphaned conversation", "channel_id", id, "error", derr)
				res.Failed = append(res.Failed, id)
				errs = append(errs, derr)
				return
			}
			if deleted {
				res.Deleted++
			}
		})
	}
	p.Wait()
	sort.Strings(res.Failed)
	res.Err = errors.Join(errs...)
}

func (t *Task) report(res SweepResult) {
	logger := t.opts.Logger
	attrs := []any{
		"sweep_id", res.ID,
		"duration", res.Duration,
		"stored", res.Stored,
		"live", res.Live,
		"orphans", len(res.Orphans),
		"deleted", res.Deleted,
	}

	var dirErr *core.DirectoryError
	switch {
	case errors.As(res.Err, &dirErr):
		logger.Warn("Channel directory unavailable, sweep skipped", append(attrs, "error", res.Err)...)
	case res.Err != nil:
		logger.Error("Error in cleanup sweep", append(attrs, "failed", len(res.Failed), "error", res.Err)...)
	case res.Skipped:
		logger.Warn("Channel directory reported no live channels, sweep skipped", attrs...)
	case res.Deleted > 0:
		logger.Info("Cleaned up conversations from deleted channels", attrs...)
	default:
		logger.Debug("Sweep completed", attrs...)
	}
}
