package reconcile

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/chatbridge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourly(o *Options) { o.Interval = time.Hour }

func TestManager_StartTwice(t *testing.T) {
	dir := newFakeDirectory("A")
	m := NewManager(seedStore(t, "A"), hourly)

	assert.True(t, m.Start(dir))
	assert.False(t, m.Start(dir))
	assert.True(t, m.Running())

	require.Eventually(t, func() bool { return m.State() == StateSleeping }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, dir.Calls())
	assert.EqualValues(t, 1, m.Sweeps())

	require.NoError(t, m.Stop(context.Background()))
	assert.False(t, m.Running())
	assert.Equal(t, StateIdle, m.State())
}

func TestManager_ConcurrentStart(t *testing.T) {
	dir := newFakeDirectory()
	m := NewManager(seedStore(t), hourly)
	t.Cleanup(func() { _ = m.Stop(context.Background()) })

	var (
		wg      sync.WaitGroup
		started atomic.Int32
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Start(dir) {
				started.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, started.Load())
}

func TestManager_StopThenRestart(t *testing.T) {
	store := seedStore(t, "A", "B")
	dir := newFakeDirectory("A", "B")
	m := NewManager(store, hourly)

	require.True(t, m.Start(dir))
	require.Eventually(t, func() bool { return m.State() == StateSleeping }, time.Second, time.Millisecond)
	require.NoError(t, m.Stop(context.Background()))
	assert.Equal(t, []string{"A", "B"}, storedIDs(t, store))

	dir2 := newFakeDirectory("B")
	require.True(t, m.Start(dir2))
	require.Eventually(t, func() bool { return dir2.Calls() == 1 && m.State() == StateSleeping }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"B"}, storedIDs(t, store))
	require.NoError(t, m.Stop(context.Background()))
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := NewManager(seedStore(t))
	assert.NoError(t, m.Stop(context.Background()))
	assert.NoError(t, m.Stop(context.Background()))
	assert.False(t, m.Running())
	assert.Zero(t, m.Sweeps())
}

func TestManager_StopTimeoutIsRetryable(t *testing.T) {
	dir := newFakeDirectory("A")
	entered, release := dir.block()
	m := NewManager(seedStore(t, "A"), hourly)
	require.True(t, m.Start(dir))
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := m.Stop(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, m.Start(dir), "task is still live until it exits")

	release()
	require.NoError(t, m.Stop(context.Background()))
	assert.False(t, m.Running())
}

func TestManager_StartWithoutDirectory(t *testing.T) {
	m := NewManager(seedStore(t))
	assert.False(t, m.Start(nil))
	assert.False(t, m.Running())
}

func TestManager_KeepsSweepingAfterPanic(t *testing.T) {
	store := seedStore(t, "A", "B")
	var calls atomic.Int32
	dir := core.DirectoryFunc(func(context.Context) (core.ChannelSet, error) {
		if calls.Add(1) == 1 {
			panic("gateway client nil")
		}
		return core.NewChannelSet("B"), nil
	})
	m := NewManager(store, func(o *Options) { o.Interval = 20 * time.Millisecond })
	require.True(t, m.Start(dir))
	t.Cleanup(func() { _ = m.Stop(context.Background()) })

	require.Eventually(t, func() bool {
		return calls.Load() >= 2 && len(storedIDs(t, store)) == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, m.Running())
	assert.Equal(t, []string{"B"}, storedIDs(t, store))
}

func TestManager_RestartsAfterTaskExit(t *testing.T) {
	var calls atomic.Int32
	m := NewManager(seedStore(t), func(o *Options) {
		o.Interval = time.Hour
		o.OnSweep = func(SweepResult) {
			if calls.Add(1) == 1 {
				panic("hook failed")
			}
		}
	})
	t.Cleanup(func() { _ = m.Stop(context.Background()) })

	require.True(t, m.Start(newFakeDirectory()))
	require.Eventually(t, func() bool { return !m.Running() }, time.Second, time.Millisecond)

	assert.True(t, m.Start(newFakeDirectory()), "a task that exited on its own is replaced")
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
	assert.True(t, m.Running())
}

func TestManager_ObservableWhileStopping(t *testing.T) {
	dir := newFakeDirectory("A")
	entered, release := dir.block()
	m := NewManager(seedStore(t, "A"), hourly)
	require.True(t, m.Start(dir))
	<-entered

	stopped := make(chan error, 1)
	go func() { stopped <- m.Stop(context.Background()) }()

	observed := make(chan State, 1)
	go func() {
		_ = m.Running()
		observed <- m.State()
	}()
	select {
	case st := <-observed:
		assert.Equal(t, StateSweeping, st)
	case <-time.After(time.Second):
		t.Fatal("State blocked while Stop was waiting")
	}

	release()
	require.NoError(t, <-stopped)
	assert.False(t, m.Running())
}
