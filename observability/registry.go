package observability

import (
	"log/slog"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrUnknownObserver is returned by GetObserver for unregistered names.
var ErrUnknownObserver = errors.New("unknown observer")

var (
	observers = map[string]Observer{
		"noop":    NoOpObserver{},
		"slog":    NewSlogObserver(slog.Default()),
		"zerolog": NewZerologObserver(zerolog.New(os.Stderr).With().Timestamp().Logger()),
	}
	mutex sync.RWMutex
)

// GetObserver returns a registered observer by name. Pre-registered:
// "noop", "slog" (default slog logger) and "zerolog" (JSON to stderr).
func GetObserver(name string) (Observer, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	obs, exists := observers[name]
	if !exists {
		return nil, errors.WithMessage(ErrUnknownObserver, name)
	}
	return obs, nil
}

// RegisterObserver adds or replaces a named observer.
func RegisterObserver(name string, observer Observer) {
	mutex.Lock()
	defer mutex.Unlock()
	observers[name] = observer
}
