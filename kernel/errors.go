package kernel

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tailored-agentic-units/threads/transcript"
)

var (
	// ErrNotFound is returned for operations on an unknown conversation id.
	ErrNotFound = errors.New("conversation not found")

	// ErrTurnInProgress is returned when a conversation already has a turn
	// awaiting completion.
	ErrTurnInProgress = errors.New("turn already in progress")

	// ErrStoreCorrupt matches a Bootstrap error caused by unreadable store
	// content. The kernel stays usable with an empty registry.
	ErrStoreCorrupt = transcript.ErrCorrupt
)

// ModelError reports a failed completion. The user message of the turn
// remains in the conversation; nothing from the turn was persisted.
type ModelError struct {
	ConversationID string
	Err            error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("completion failed for %s: %v", e.ConversationID, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// PersistenceError reports a store failure. In-memory state is kept as it
// was before the failed write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
