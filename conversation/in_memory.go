package conversation

import (
	"context"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/chatbridge/core"
)

// Compile-time checks
var (
	_ core.ConversationStore = (*InMemoryStore)(nil)
	_ core.BatchDeleter      = (*InMemoryStore)(nil)
)

// Options configures an InMemoryStore.
type Options struct {
	// Now supplies the save timestamp. Defaults to time.Now in UTC.
	Now func() time.Time
}

// InMemoryStore is a volatile ConversationStore keeping conversations in a
// process local map. It is safe for concurrent access and best suited for
// tests or single-process development. Conversations are cloned on the way
// in and out so callers only ever hold request-scoped copies.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*core.Conversation
	now           func() time.Time
}

// NewInMemoryStore constructs an empty in-memory conversation store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{Now: func() time.Time { return time.Now().UTC() }}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{conversations: make(map[string]*core.Conversation), now: opts.Now}
}

// Get returns a clone of the stored conversation, or nil when absent.
func (s *InMemoryStore) Get(_ context.Context, channelID string) (*core.Conversation, error) {
	if channelID == "" {
		return nil, core.NewStorageError("get", channelID, core.ErrInvalidChannelID)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[channelID]
	if !ok {
		return nil, nil
	}
	return conv.Clone(), nil
}

// Save upserts a clone of conv. The stored creation time wins over the
// caller's, and UpdatedAt never moves backwards for a channel.
func (s *InMemoryStore) Save(_ context.Context, conv *core.Conversation) (bool, error) {
	if err := conv.Validate(); err != nil {
		channelID := ""
		if conv != nil {
			channelID = conv.ChannelID
		}
		return false, core.NewStorageError("save", channelID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if prev, ok := s.conversations[conv.ChannelID]; ok {
		conv.CreatedAt = prev.CreatedAt
		if now.Before(prev.UpdatedAt) {
			now = prev.UpdatedAt
		}
	} else if conv.CreatedAt.IsZero() || conv.CreatedAt.After(now) {
		conv.CreatedAt = now
	}
	conv.UpdatedAt = now

	s.conversations[conv.ChannelID] = conv.Clone()
	return true, nil
}

// Delete removes the conversation and reports whether it existed.
func (s *InMemoryStore) Delete(_ context.Context, channelID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[channelID]; !ok {
		return false, nil
	}
	delete(s.conversations, channelID)
	return true, nil
}

// DeleteMany removes every listed conversation and returns how many existed.
func (s *InMemoryStore) DeleteMany(_ context.Context, channelIDs []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range channelIDs {
		if _, ok := s.conversations[id]; ok {
			delete(s.conversations, id)
			n++
		}
	}
	return n, nil
}

// ListChannelIDs yields a snapshot of the stored keys in ascending order.
// The snapshot is taken when iteration starts.
func (s *InMemoryStore) ListChannelIDs(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		s.mu.RLock()
		ids := make([]string, 0, len(s.conversations))
		for id := range s.conversations {
			ids = append(ids, id)
		}
		s.mu.RUnlock()
		sort.Strings(ids)

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				yield("", core.NewStorageError("list", "", err))
				return
			}
			if !yield(id, nil) {
				return
			}
		}
	}
}

// Len returns the number of stored conversations.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}
