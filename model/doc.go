// Package model defines the provider-agnostic response generation capability
// used by the chat flow.
//
// A Generator turns an ordered list of role-tagged messages into a single
// assistant reply. Providers (OpenAI, Anthropic) implement Generator in their
// own sub-packages so the chat flow stays decoupled from vendor SDKs. The
// conversation store and the reconciliation loop never depend on this package.
package model
