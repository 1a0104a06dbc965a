// Package chat implements one conversational turn: load the channel's
// history, append the user's message, ask a model.Generator for a reply
// over a bounded window and persist both turns.
//
// chat depends on core.ConversationStore and model.Generator; neither the
// store implementations nor the reconciliation loop depend on chat.
package chat
