package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/chatbridge/core"
)

// Manager owns the lifecycle of the reconciliation Task and guarantees that
// zero or one Task is live at any time. Start and Stop are idempotent and
// serialized.
type Manager struct {
	store core.ConversationStore
	opts  Options

	mu     sync.Mutex
	task   *Task
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a Manager for the given store. Options apply to every
// Task the Manager launches.
func NewManager(store core.ConversationStore, optFns ...func(o *Options)) *Manager {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.normalize()
	return &Manager{store: store, opts: opts}
}

// Start launches a Task bound to directory unless one is already live. It
// reports whether a new Task was launched.
func (m *Manager) Start(directory core.ChannelDirectory) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if directory == nil {
		m.opts.Logger.Error("Refusing to start reconciliation without a channel directory")
		return false
	}
	if m.task != nil && !isClosed(m.done) {
		m.opts.Logger.Debug("Reconciliation task already running")
		return false
	}
	if m.cancel != nil {
		// previous task exited on its own
		m.cancel()
	}

	task := newTask(m.store, directory, m.opts)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				m.opts.Logger.Error("Reconciliation task panicked", "panic", fmt.Sprint(r))
			}
		}()
		_ = task.Run(ctx)
	}()

	m.task, m.cancel, m.done = task, cancel, done
	m.opts.Logger.Info("Started database cleanup task")
	return true
}

// Stop requests cancellation and waits for the Task to exit, bounded by ctx.
// When ctx expires first the Task keeps stopping in the background, the
// error is returned and Stop may be called again. Stop without a live Task
// is a no-op. The lock is not held while waiting.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.task == nil {
		m.mu.Unlock()
		return nil
	}
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for reconciliation task to stop: %w", ctx.Err())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done != done {
		// A concurrent Stop already cleared it, possibly followed by a new Start.
		return nil
	}
	m.task, m.cancel, m.done = nil, nil, nil
	m.opts.Logger.Info("Stopped database cleanup task")
	return nil
}

// Running reports whether a Task is live.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.task != nil && !isClosed(m.done)
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// State returns the live Task's state, or StateIdle when none is running.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.task == nil {
		return StateIdle
	}
	return m.task.State()
}

// Sweeps returns the sweep count of the live Task (zero when none).
func (m *Manager) Sweeps() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.task == nil {
		return 0
	}
	return m.task.Sweeps()
}
