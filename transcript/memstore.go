package transcript

import (
	"context"
	"sync"

	"github.com/tailored-agentic-units/threads/conversation"
)

// MemoryStore holds the snapshot in process memory. Nothing survives a
// restart; it backs tests and the "memory" backend.
type MemoryStore struct {
	records map[string]conversation.Record
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]conversation.Record{}}
}

func (s *MemoryStore) LoadAll(_ context.Context) (map[string]conversation.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return conversation.CloneRecords(s.records), nil
}

func (s *MemoryStore) SaveAll(_ context.Context, records map[string]conversation.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = conversation.CloneRecords(records)
	return nil
}
