package testutil

import (
	"time"

	"github.com/hupe1980/chatbridge/core"
)

// ConversationBuilder provides a fluent helper for constructing conversations in tests.
// Example:
//
//	conv := NewConversationBuilder("c1").User("hi").Assistant("hello").Build()
//
// Chain only the parts you need.
type ConversationBuilder struct {
	channelID string
	messages  []core.Message
	createdAt time.Time
	updatedAt time.Time
}

// NewConversationBuilder creates a builder for the given channel.
func NewConversationBuilder(channelID string) *ConversationBuilder {
	return &ConversationBuilder{channelID: channelID}
}

// User appends a user message (chainable).
func (b *ConversationBuilder) User(text string) *ConversationBuilder {
	return b.Message(core.RoleUser, text)
}

// Assistant appends an assistant message (chainable).
func (b *ConversationBuilder) Assistant(text string) *ConversationBuilder {
	return b.Message(core.RoleAssistant, text)
}

// Message appends a message with an arbitrary role (chainable).
func (b *ConversationBuilder) Message(role, text string) *ConversationBuilder {
	b.messages = append(b.messages, core.Message{Role: role, Content: text})
	return b
}

// CreatedAt presets the creation timestamp (chainable).
func (b *ConversationBuilder) CreatedAt(ts time.Time) *ConversationBuilder { b.createdAt = ts; return b }

// UpdatedAt presets the update timestamp (chainable).
func (b *ConversationBuilder) UpdatedAt(ts time.Time) *ConversationBuilder { b.updatedAt = ts; return b }

// Build materializes the conversation.
func (b *ConversationBuilder) Build() *core.Conversation {
	conv := core.NewConversation(b.channelID)
	conv.Messages = append(conv.Messages, b.messages...)
	conv.CreatedAt = b.createdAt
	conv.UpdatedAt = b.updatedAt
	return conv
}

// Clock is a manually advanced time source for deterministic timestamps.
type Clock struct {
	now time.Time
}

// NewClock starts a clock at the given instant.
func NewClock(start time.Time) *Clock { return &Clock{now: start} }

// Now returns the current instant.
func (c *Clock) Now() time.Time { return c.now }

// Advance moves the clock by d (negative values move it backwards).
func (c *Clock) Advance(d time.Duration) { c.now = c.now.Add(d) }
