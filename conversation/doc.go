// Package conversation houses concrete implementations of core.ConversationStore.
// The interface itself (and the Conversation struct) live in the core package
// to centralize domain contracts. Keeping only implementations here prevents
// higher level packages (reconcile, chat) from depending on concrete storage.
//
// The MongoDB backend lives in the mongo sub-package; only the wiring layer
// needs to decide which implementation to instantiate.
package conversation
