package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/chatbridge/core"
	"github.com/hupe1980/chatbridge/logging"
	"github.com/hupe1980/chatbridge/model"
)

// DefaultSystemPrompt is sent ahead of every history window.
const DefaultSystemPrompt = "You are a helpful assistant."

// ErrEmptyMessage is returned by Reply for blank input.
var ErrEmptyMessage = errors.New("message is empty")

// Options configures a Responder.
type Options struct {
	// SystemPrompt is prepended to every request. Empty disables it.
	SystemPrompt string

	// MaxHistory bounds the number of stored messages sent to the model,
	// including the new user message. Zero or less sends everything.
	MaxHistory int

	// Model, Temperature and MaxTokens override the generator defaults.
	Model       string
	Temperature *float64
	MaxTokens   int64

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Responder runs chat turns against a store and a generator.
type Responder struct {
	store     core.ConversationStore
	generator model.Generator
	opts      Options
}

// NewResponder creates a Responder.
func NewResponder(store core.ConversationStore, generator model.Generator, optFns ...func(o *Options)) *Responder {
	opts := Options{
		SystemPrompt: DefaultSystemPrompt,
		MaxHistory:   10,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.WithComponent(opts.Logger, "chat")
	return &Responder{store: store, generator: generator, opts: opts}
}

// Reply appends text as a user message to the channel's conversation,
// generates the assistant reply and saves both. Nothing is saved when
// generation fails.
func (r *Responder) Reply(ctx context.Context, channelID, text string) (resp *model.Response, err error) {
	start := time.Now()
	defer func() {
		logging.LogOperation(r.opts.Logger, "reply", time.Since(start), err, "channel_id", channelID)
	}()

	if text == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := r.store.Get(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		conv = core.NewConversation(channelID)
	}
	conv.Append(core.RoleUser, text)

	resp, err = r.generator.Generate(ctx, r.request(conv))
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}
	conv.Append(core.RoleAssistant, resp.Content)

	if _, err = r.store.Save(ctx, conv); err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *Responder) request(conv *core.Conversation) model.Request {
	window := conv.Window(r.opts.MaxHistory)
	msgs := make([]model.Message, 0, len(window)+1)
	if r.opts.SystemPrompt != "" {
		msgs = append(msgs, model.Message{Role: core.RoleSystem, Content: r.opts.SystemPrompt})
	}
	for _, m := range window {
		msgs = append(msgs, model.Message{Role: m.Role, Content: m.Content})
	}
	return model.Request{
		Messages:    msgs,
		Model:       r.opts.Model,
		Temperature: r.opts.Temperature,
		MaxTokens:   r.opts.MaxTokens,
	}
}

// Reset deletes the channel's conversation and reports whether one existed.
func (r *Responder) Reset(ctx context.Context, channelID string) (bool, error) {
	deleted, err := r.store.Delete(ctx, channelID)
	if err != nil {
		return false, err
	}
	r.opts.Logger.Info("Conversation reset", "channel_id", channelID, "deleted", deleted)
	return deleted, nil
}

// History returns the stored messages of a channel, or nil when none exist.
func (r *Responder) History(ctx context.Context, channelID string) ([]core.Message, error) {
	conv, err := r.store.Get(ctx, channelID)
	if err != nil || conv == nil {
		return nil, err
	}
	return conv.Messages, nil
}
