package core

import (
	"errors"
	"fmt"
)

// ErrInvalidChannelID is returned when an operation receives an empty channel id.
var ErrInvalidChannelID = errors.New("invalid channel id")

// StorageError reports a connectivity, serialization or backend failure of a
// ConversationStore operation. It is always propagated to the caller.
type StorageError struct {
	Op        string // get, save, delete, delete_many, list
	ChannelID string // empty for multi-document operations
	Err       error
}

// NewStorageError wraps err for the given operation.
func NewStorageError(op, channelID string, err error) *StorageError {
	return &StorageError{Op: op, ChannelID: channelID, Err: err}
}

func (e *StorageError) Error() string {
	if e.ChannelID == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.ChannelID, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// DirectoryError reports a failure to enumerate live channels. It is handled
// inside the reconciliation loop and never reaches request callers.
type DirectoryError struct {
	Err error
}

func (e *DirectoryError) Error() string { return fmt.Sprintf("channel directory: %v", e.Err) }

func (e *DirectoryError) Unwrap() error { return e.Err }

// ReconciliationDeleteError reports a failure to delete one orphaned
// conversation. Remaining deletions of the same sweep proceed.
type ReconciliationDeleteError struct {
	ChannelID string
	Err       error
}

func (e *ReconciliationDeleteError) Error() string {
	return fmt.Sprintf("delete orphan %q: %v", e.ChannelID, e.Err)
}

func (e *ReconciliationDeleteError) Unwrap() error { return e.Err }
