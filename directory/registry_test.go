package directory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_NotReadyUntilSnapshot(t *testing.T) {
	r := NewRegistry()
	_, err := r.LiveChannelIDs(context.Background())
	require.ErrorIs(t, err, ErrNotReady)

	r.Add("1")
	_, err = r.LiveChannelIDs(context.Background())
	require.ErrorIs(t, err, ErrNotReady, "incremental events do not make a snapshot")

	r.Replace("1", "2", "")
	live, err := r.LiveChannelIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, live.Slice())
	assert.True(t, r.Ready())
}

func TestRegistry_AddRemove(t *testing.T) {
	r := NewRegistry("1", "2")
	r.Add("3", "")
	r.Remove("1", "missing")

	live, err := r.LiveChannelIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, live.Slice())

	live.Add("mutated")
	again, err := r.LiveChannelIDs(context.Background())
	require.NoError(t, err)
	assert.False(t, again.Has("mutated"), "callers receive a copy")
}

func TestRegistry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRegistry("1").LiveChannelIDs(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry("seed")
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id := string(rune('a' + i))
			r.Add(id)
			r.Remove(id)
		}()
		go func() {
			defer wg.Done()
			_, err := r.LiveChannelIDs(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	live, err := r.LiveChannelIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"seed"}, live.Slice())
}
