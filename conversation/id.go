package conversation

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultIDPrefix is prepended to allocated conversation ids.
const DefaultIDPrefix = "thread-"

const maxAllocateAttempts = 8

// ErrIDExhausted is returned when every allocation attempt collided.
var ErrIDExhausted = errors.New("conversation id allocation exhausted")

// Allocator issues conversation ids. Ids are a prefix followed by a UUIDv7,
// which is time-ordered and carries a monotonic sequence within the process,
// so rapid sequential calls never repeat.
type Allocator struct {
	prefix string
	taken  func(id string) bool
}

// AllocatorOption configures an Allocator.
type AllocatorOption func(*Allocator)

// WithPrefix overrides DefaultIDPrefix.
func WithPrefix(prefix string) AllocatorOption {
	return func(a *Allocator) { a.prefix = prefix }
}

// WithTaken installs a probe reporting ids already used by the store,
// including ids of deleted conversations.
func WithTaken(taken func(id string) bool) AllocatorOption {
	return func(a *Allocator) { a.taken = taken }
}

// NewAllocator creates an Allocator.
func NewAllocator(opts ...AllocatorOption) *Allocator {
	a := &Allocator{prefix: DefaultIDPrefix}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate returns an id not reported as taken.
func (a *Allocator) Allocate() (string, error) {
	for range maxAllocateAttempts {
		u, err := uuid.NewV7()
		if err != nil {
			return "", errors.Wrap(err, "generate conversation id")
		}
		id := a.prefix + u.String()
		if a.taken == nil || !a.taken(id) {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}
