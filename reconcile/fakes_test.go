package reconcile

import (
	"context"
	"iter"
	"sync"
	"testing"

	"github.com/hupe1980/chatbridge/conversation"
	"github.com/hupe1980/chatbridge/core"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockDirectory is a testify mock of core.ChannelDirectory.
type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) LiveChannelIDs(ctx context.Context) (core.ChannelSet, error) {
	args := m.Called(ctx)
	set, _ := args.Get(0).(core.ChannelSet)
	return set, args.Error(1)
}

// fakeDirectory is a concurrency-safe directory with a call counter and an
// optional gate that blocks calls until released.
type fakeDirectory struct {
	mu      sync.Mutex
	live    core.ChannelSet
	errs    []error
	calls   int
	entered chan struct{}
	gate    chan struct{}
}

func newFakeDirectory(ids ...string) *fakeDirectory {
	return &fakeDirectory{live: core.NewChannelSet(ids...)}
}

// failNext queues errors returned by the following calls, one per call.
func (d *fakeDirectory) failNext(errs ...error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errs = append(d.errs, errs...)
}

// block makes subsequent calls signal entered and wait for release.
func (d *fakeDirectory) block() (entered <-chan struct{}, release func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entered = make(chan struct{}, 16)
	d.gate = make(chan struct{})
	gate := d.gate
	return d.entered, func() { close(gate) }
}

func (d *fakeDirectory) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func (d *fakeDirectory) LiveChannelIDs(context.Context) (core.ChannelSet, error) {
	d.mu.Lock()
	d.calls++
	entered, gate := d.entered, d.gate
	var err error
	if len(d.errs) > 0 {
		err, d.errs = d.errs[0], d.errs[1:]
	}
	live := core.NewChannelSet(d.live.Slice()...)
	d.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return live, nil
}

// flakyStore hides the batch delete of the wrapped store and injects failures.
type flakyStore struct {
	core.ConversationStore
	deleteErrs map[string]error
	listErr    error
}

func (s *flakyStore) Delete(ctx context.Context, channelID string) (bool, error) {
	if err := s.deleteErrs[channelID]; err != nil {
		return false, err
	}
	return s.ConversationStore.Delete(ctx, channelID)
}

func (s *flakyStore) ListChannelIDs(ctx context.Context) iter.Seq2[string, error] {
	if s.listErr != nil {
		return func(yield func(string, error) bool) { yield("", s.listErr) }
	}
	return s.ConversationStore.ListChannelIDs(ctx)
}

// batchFailStore keeps a batch delete that always fails.
type batchFailStore struct {
	core.ConversationStore
	err error
}

func (s *batchFailStore) DeleteMany(context.Context, []string) (int64, error) { return 0, s.err }

func seedStore(t *testing.T, ids ...string) *conversation.InMemoryStore {
	t.Helper()
	store := conversation.NewInMemoryStore()
	for _, id := range ids {
		conv := core.NewConversation(id)
		conv.Append(core.RoleUser, "hello from "+id)
		_, err := store.Save(context.Background(), conv)
		require.NoError(t, err)
	}
	return store
}

func storedIDs(t *testing.T, store core.ConversationStore) []string {
	t.Helper()
	set := core.NewChannelSet()
	for id, err := range store.ListChannelIDs(context.Background()) {
		require.NoError(t, err)
		set.Add(id)
	}
	return set.Slice()
}
