package core

import (
	"fmt"
	"time"
)

// Message roles understood by the chat flow. Roles are stored verbatim, so
// providers may use others.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation represents the message history for one chat channel.
//
// Contract:
//   - ChannelID is the natural key and never changes once persisted
//   - Messages are kept in chronological (insertion) order
//   - CreatedAt is set once, on the first successful save
//   - UpdatedAt is set by every successful save and never precedes CreatedAt
//
// A Conversation is not safe for concurrent mutation; callers hold
// request-scoped copies and hand them to a ConversationStore.
type Conversation struct {
	ChannelID string    `json:"channel_id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversation returns an empty, not yet persisted conversation.
func NewConversation(channelID string) *Conversation {
	return &Conversation{ChannelID: channelID, Messages: []Message{}}
}

// Validate reports whether the conversation can be persisted.
func (c *Conversation) Validate() error {
	if c == nil {
		return fmt.Errorf("conversation is nil")
	}
	if c.ChannelID == "" {
		return ErrInvalidChannelID
	}
	return nil
}

// Append adds a message to the end of the history.
func (c *Conversation) Append(role, content string) {
	c.Messages = append(c.Messages, Message{Role: role, Content: content})
}

// Window returns a copy of the last n messages (all of them when n <= 0 or
// n exceeds the history length).
func (c *Conversation) Window(n int) []Message {
	start := 0
	if n > 0 && n < len(c.Messages) {
		start = len(c.Messages) - n
	}
	out := make([]Message, len(c.Messages)-start)
	copy(out, c.Messages[start:])
	return out
}

// Clone returns a deep copy safe for independent mutation.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	return &clone
}
