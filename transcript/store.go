// Package transcript persists conversation records as whole snapshots. Every
// backend offers the same two operations: load the full mapping and replace
// it with a new one.
package transcript

import (
	"context"

	"github.com/tailored-agentic-units/threads/conversation"
)

// Store reads and writes the complete mapping of conversation id to record.
// Implementations are stateless between calls and perform I/O on each call.
type Store interface {
	// LoadAll returns every persisted record. A missing backing store yields
	// an empty mapping. Corrupt content yields an empty mapping together with
	// an error matching ErrCorrupt.
	LoadAll(ctx context.Context) (map[string]conversation.Record, error)
	// SaveAll replaces the persisted mapping with records. On failure the
	// previous snapshot stays readable.
	SaveAll(ctx context.Context, records map[string]conversation.Record) error
}
