// Package chatbridge provides a high-level facade over the conversation
// store, the reconciliation lifecycle and the chat flow of a bot that bridges
// a chat platform and a language model.
//
// Most applications interact with this package by:
//  1. Creating a Bridge via New() (optionally overriding the default in-memory store)
//  2. Starting reconciliation once the platform connection is ready
//  3. Answering messages with Reply and resetting channels with Reset
//
// All defaults are safe for local development and testing; production
// deployments supply the MongoDB store, a generator and a structured logger.
package chatbridge

import (
	"context"
	"errors"

	"github.com/hupe1980/chatbridge/chat"
	"github.com/hupe1980/chatbridge/conversation"
	"github.com/hupe1980/chatbridge/core"
	"github.com/hupe1980/chatbridge/logging"
	"github.com/hupe1980/chatbridge/model"
	"github.com/hupe1980/chatbridge/reconcile"
)

// ErrNoGenerator is returned by Reply when the Bridge has no generator.
var ErrNoGenerator = errors.New("no response generator configured")

// Options configures the Bridge instance.
type Options struct {
	// Reconciliation tuning (interval, delete concurrency, empty directory guard)
	ReconcileConfig reconcile.Config

	// OnSweep observes every sweep result.
	OnSweep func(reconcile.SweepResult)

	// Store (defaults to the in-memory implementation if not provided)
	Store core.ConversationStore

	// Generator answers chat messages. Without one only storage and
	// reconciliation are available.
	Generator model.Generator

	// Chat flow settings
	SystemPrompt string
	MaxHistory   int
	Model        string
	Temperature  *float64
	MaxTokens    int64

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Bridge aggregates the store, the reconciliation manager and the responder.
type Bridge struct {
	opts      Options
	manager   *reconcile.Manager
	responder *chat.Responder
}

// New creates a new Bridge with optional overrides.
func New(optFns ...func(o *Options)) *Bridge {
	opts := Options{
		ReconcileConfig: reconcile.DefaultConfig,
		SystemPrompt:    chat.DefaultSystemPrompt,
		MaxHistory:      10,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Store == nil {
		opts.Store = conversation.NewInMemoryStore()
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	b := &Bridge{
		opts: opts,
		manager: reconcile.NewManager(opts.Store, func(o *reconcile.Options) {
			o.Config = opts.ReconcileConfig
			o.Logger = opts.Logger
			o.OnSweep = opts.OnSweep
		}),
	}
	if opts.Generator != nil {
		b.responder = chat.NewResponder(opts.Store, opts.Generator, func(o *chat.Options) {
			o.SystemPrompt = opts.SystemPrompt
			o.MaxHistory = opts.MaxHistory
			o.Model = opts.Model
			o.Temperature = opts.Temperature
			o.MaxTokens = opts.MaxTokens
			o.Logger = opts.Logger
		})
	}
	return b
}

// Store returns the conversation store.
func (b *Bridge) Store() core.ConversationStore { return b.opts.Store }

// GetConversation returns the stored conversation of a channel or nil.
func (b *Bridge) GetConversation(ctx context.Context, channelID string) (*core.Conversation, error) {
	return b.opts.Store.Get(ctx, channelID)
}

// SaveConversation upserts conv.
func (b *Bridge) SaveConversation(ctx context.Context, conv *core.Conversation) (bool, error) {
	return b.opts.Store.Save(ctx, conv)
}

// DeleteConversation removes the conversation of a channel.
func (b *Bridge) DeleteConversation(ctx context.Context, channelID string) (bool, error) {
	return b.opts.Store.Delete(ctx, channelID)
}

// StartReconciliation launches the periodic orphan sweep against directory
// unless it is already running. Call it whenever the platform connection
// becomes ready; repeated calls are harmless.
func (b *Bridge) StartReconciliation(directory core.ChannelDirectory) bool {
	return b.manager.Start(directory)
}

// StopReconciliation stops the sweep, waiting at most until ctx is done.
func (b *Bridge) StopReconciliation(ctx context.Context) error {
	return b.manager.Stop(ctx)
}

// ReconciliationState reports the state of the running sweep loop.
func (b *Bridge) ReconciliationState() reconcile.State { return b.manager.State() }

// Reply runs one chat turn for channelID.
func (b *Bridge) Reply(ctx context.Context, channelID, text string) (*model.Response, error) {
	if b.responder == nil {
		return nil, ErrNoGenerator
	}
	return b.responder.Reply(ctx, channelID, text)
}

// Reset forgets the conversation of channelID.
func (b *Bridge) Reset(ctx context.Context, channelID string) (bool, error) {
	return b.DeleteConversation(ctx, channelID)
}

// Close stops reconciliation.
func (b *Bridge) Close(ctx context.Context) error {
	return b.StopReconciliation(ctx)
}
