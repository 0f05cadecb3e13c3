// Package registry holds the in-memory index of known conversations. It is
// seeded from a transcript snapshot at startup, mutated while the process
// runs, and yields the committed snapshot that gets written back.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/tailored-agentic-units/threads/conversation"
	"github.com/tailored-agentic-units/threads/core/protocol"
)

// Summary is the list view of a conversation.
type Summary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	LastModified time.Time `json:"last_modified"`
}

type entry struct {
	conv conversation.Conversation
	seq  uint64
	// durable is the last committed record, nil until the first commit.
	durable *conversation.Record
}

// Registry indexes conversations by id. Every method is safe for concurrent
// use and returns copies, so callers never share state with the index.
//
// The registry separates the live state of a conversation from its committed
// state. Upsert changes what Get returns immediately; only Commit changes
// what Records hands to the store. A turn that never commits therefore never
// reaches disk, while the user still sees it.
type Registry struct {
	entries map[string]*entry
	retired map[string]bool
	nextSeq uint64
	mu      sync.RWMutex
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		retired: make(map[string]bool),
	}
}

// Bootstrap loads records as committed conversations. Records whose id is
// already indexed are skipped. Insertion order follows timestamp then id, so
// equal timestamps list deterministically.
func (r *Registry) Bootstrap(records map[string]conversation.Record) error {
	convs := make([]conversation.Conversation, 0, len(records))
	for id, rec := range records {
		c, err := conversation.FromRecord(id, rec)
		if err != nil {
			return err
		}
		convs = append(convs, c)
	}
	sort.Slice(convs, func(i, j int) bool {
		if !convs[i].LastModified.Equal(convs[j].LastModified) {
			return convs[i].LastModified.Before(convs[j].LastModified)
		}
		return convs[i].ID < convs[j].ID
	})

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range convs {
		if _, exists := r.entries[c.ID]; exists {
			continue
		}
		rec := records[c.ID]
		rec.Messages = protocol.Clone(rec.Messages)
		r.entries[c.ID] = &entry{conv: c, seq: r.nextSeq, durable: &rec}
		r.nextSeq++
	}
	return nil
}

// Get returns a copy of the conversation with id.
func (r *Registry) Get(id string) (conversation.Conversation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return conversation.Conversation{}, false
	}
	return e.conv.Clone(), true
}

// Has reports whether id is currently indexed.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// Taken reports whether id is indexed or belonged to a deleted conversation.
func (r *Registry) Taken(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok || r.retired[id]
}

// Upsert replaces or inserts c. A new id is appended to insertion order.
func (r *Registry) Upsert(c conversation.Conversation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[c.ID]; ok {
		e.conv = c.Clone()
		return
	}
	r.entries[c.ID] = &entry{conv: c.Clone(), seq: r.nextSeq}
	r.nextSeq++
}

// Commit marks the current state of id as durable. It reports false when id
// is not indexed.
func (r *Registry) Commit(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return false
	}
	rec := e.conv.Record()
	e.durable = &rec
	return true
}

// Delete removes id and retires it. It reports whether id was indexed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	r.retired[id] = true
	return true
}

// Len returns the number of indexed conversations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// ListSortedByRecency returns summaries ordered by LastModified descending.
// Equal timestamps keep insertion order.
func (r *Registry) ListSortedByRecency() []Summary {
	type ranked struct {
		Summary
		seq uint64
	}

	r.mu.RLock()
	ordered := make([]ranked, 0, len(r.entries))
	for _, e := range r.entries {
		ordered = append(ordered, ranked{
			Summary: Summary{
				ID:           e.conv.ID,
				Title:        e.conv.Title,
				LastModified: e.conv.LastModified,
			},
			seq: e.seq,
		})
	}
	r.mu.RUnlock()

	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].seq < ordered[j].seq
	})
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].LastModified.After(ordered[j].LastModified)
	})

	summaries := make([]Summary, len(ordered))
	for i, o := range ordered {
		summaries[i] = o.Summary
	}
	return summaries
}

// Records returns the committed snapshot of every conversation that has
// been committed at least once.
func (r *Registry) Records() map[string]conversation.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make(map[string]conversation.Record, len(r.entries))
	for id, e := range r.entries {
		if e.durable != nil {
			records[id] = *e.durable
		}
	}
	return conversation.CloneRecords(records)
}
