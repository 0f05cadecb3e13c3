// Package conversation defines the conversation entity, its persisted record
// shape, title derivation, and identifier allocation.
package conversation

import (
	"time"

	"github.com/tailored-agentic-units/threads/core/protocol"
)

// Conversation is one independent thread: an ordered transcript addressed by
// an id. Title is derived from the transcript and LastModified only orders
// conversations for display.
type Conversation struct {
	ID           string
	Title        string
	Messages     []protocol.Message
	LastModified time.Time
}

// New creates an empty conversation with the placeholder title.
func New(id string, now time.Time) Conversation {
	return Conversation{
		ID:           id,
		Title:        DeriveTitle(nil),
		LastModified: now,
	}
}

// Append adds msg to the end of the transcript. LastModified never moves
// backwards, so a skewed clock cannot reorder a conversation into the past.
func (c *Conversation) Append(msg protocol.Message, at time.Time) {
	c.Messages = append(c.Messages, msg)
	if at.After(c.LastModified) {
		c.LastModified = at
	}
}

// Retitle recomputes Title from the transcript.
func (c *Conversation) Retitle() {
	c.Title = DeriveTitle(c.Messages)
}

// Clone returns a deep copy of c.
func (c Conversation) Clone() Conversation {
	c.Messages = protocol.Clone(c.Messages)
	return c
}

// Record converts c to its persisted shape.
func (c Conversation) Record() Record {
	msgs := protocol.Clone(c.Messages)
	if msgs == nil {
		msgs = []protocol.Message{}
	}
	return Record{
		Messages:  msgs,
		Timestamp: FormatTimestamp(c.LastModified),
		Title:     c.Title,
	}
}
