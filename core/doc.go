// Package core provides the foundational domain types and contracts used by
// chatbridge. It defines:
//
//   - Conversations (per-channel ordered message history with timestamps)
//   - ChannelSet (identifier-level set used for reconciliation diffs)
//   - ConversationStore / BatchDeleter (persistence contract keyed by channel id)
//   - ChannelDirectory (the live universe of channel ids supplied by the chat platform)
//   - The storage / directory / reconciliation error taxonomy
//
// Concrete persistence backends, the reconciliation loop and language model
// providers live in sibling packages and depend on this one, never the other
// way around.
package core
