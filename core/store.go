package core

import (
	"context"
	"iter"
)

// ConversationStore persists conversations keyed by channel id. Implementations
// must be safe for concurrent use by the request path and the reconciliation
// task; they provide the only consistency guarantee (atomic per-document
// upsert and delete) and do not cache.
type ConversationStore interface {
	// Get returns the stored conversation, or nil and no error when none exists.
	Get(ctx context.Context, channelID string) (*Conversation, error)

	// Save sets UpdatedAt to the current time and upserts the conversation by
	// channel id. CreatedAt is only written on insert; an existing creation
	// time is preserved. On success conv carries the stored CreatedAt and
	// UpdatedAt. The returned flag reports whether the backend acknowledged
	// the write.
	Save(ctx context.Context, conv *Conversation) (bool, error)

	// Delete removes the conversation and reports whether one existed.
	Delete(ctx context.Context, channelID string) (bool, error)

	// ListChannelIDs yields every stored channel id without loading full
	// documents. The sequence is finite and single-pass; iteration stops at
	// the first error.
	ListChannelIDs(ctx context.Context) iter.Seq2[string, error]
}

// BatchDeleter is an optional ConversationStore extension removing many
// conversations in a single round trip.
type BatchDeleter interface {
	DeleteMany(ctx context.Context, channelIDs []string) (int64, error)
}

// ChannelDirectory supplies the set of channel ids currently alive on the chat
// platform.
type ChannelDirectory interface {
	LiveChannelIDs(ctx context.Context) (ChannelSet, error)
}

// DirectoryFunc adapts a plain function to ChannelDirectory.
type DirectoryFunc func(ctx context.Context) (ChannelSet, error)

// LiveChannelIDs implements ChannelDirectory.
func (f DirectoryFunc) LiveChannelIDs(ctx context.Context) (ChannelSet, error) { return f(ctx) }
