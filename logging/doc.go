// Package logging provides a minimal logging interface and adapters for chatbridge.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the store backends, the reconciliation task and the chat flow use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - WithComponent / LogOperation helpers for consistent attributes
//
// Usage:
//
//	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelInfo, Format: "text"})
//	mgr := reconcile.NewManager(store, func(o *reconcile.Options) { o.Logger = logger })
package logging
