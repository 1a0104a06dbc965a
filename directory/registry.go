package directory

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/chatbridge/core"
)

// ErrNotReady is returned by a directory that has not observed the platform yet.
var ErrNotReady = errors.New("channel directory not ready")

// Compile-time check
var _ core.ChannelDirectory = (*Registry)(nil)

// Registry is a thread-safe set of live channel ids.
type Registry struct {
	mu    sync.RWMutex
	live  core.ChannelSet
	ready bool
}

// NewRegistry creates a Registry seeded with ids. A seeded registry counts as
// ready; an empty one becomes ready on the first Replace.
func NewRegistry(ids ...string) *Registry {
	return &Registry{live: core.NewChannelSet(ids...), ready: len(ids) > 0}
}

// Add marks channel ids as live.
func (r *Registry) Add(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if id != "" {
			r.live.Add(id)
		}
	}
}

// Remove marks channel ids as gone.
func (r *Registry) Remove(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.live, id)
	}
}

// Replace swaps the whole set, typically on a full guild snapshot.
func (r *Registry) Replace(ids ...string) {
	live := core.NewChannelSet()
	for _, id := range ids {
		if id != "" {
			live.Add(id)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live = live
	r.ready = true
}

// Ready reports whether the registry has seen a full snapshot.
func (r *Registry) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// LiveChannelIDs returns a copy of the current set. It fails with
// ErrNotReady until the registry was seeded or replaced, so a sweep never
// runs against a platform view that was never loaded.
func (r *Registry) LiveChannelIDs(ctx context.Context) (core.ChannelSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.ready {
		return nil, ErrNotReady
	}
	out := make(core.ChannelSet, len(r.live))
	for id := range r.live {
		out.Add(id)
	}
	return out, nil
}
