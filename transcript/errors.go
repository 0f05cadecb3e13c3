package transcript

import "github.com/pkg/errors"

// Sentinel errors for store operations.
var (
	// ErrCorrupt marks unreadable or schema-violating persisted content. It
	// is recoverable: callers continue with an empty store.
	ErrCorrupt        = errors.New("transcript store corrupt")
	ErrLoadFailed     = errors.New("load failed")
	ErrSaveFailed     = errors.New("save failed")
	ErrUnknownBackend = errors.New("unknown store backend")
)
