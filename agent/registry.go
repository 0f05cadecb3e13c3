package agent

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Info describes a registered completer configuration.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

// Registry manages named completer configurations with lazy instantiation.
// Configs are stored at registration time; completers are created on first
// Get call. Thread-safe for concurrent access.
type Registry struct {
	mu         sync.RWMutex
	configs    map[string]Config
	completers map[string]Completer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		configs:    make(map[string]Config),
		completers: make(map[string]Completer),
	}
}

// Get retrieves a named completer, instantiating it lazily on first access.
func (r *Registry) Get(name string) (Completer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, registered := r.configs[name]
	if !registered {
		return nil, errors.WithMessagef(ErrAgentNotFound, "%s", name)
	}

	if c, exists := r.completers[name]; exists {
		return c, nil
	}

	c, err := New(&cfg)
	if err != nil {
		return nil, errors.WithMessagef(err, "create agent %q", name)
	}

	r.completers[name] = c
	return c, nil
}

// List returns information about all registered configurations, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.configs))
	for name, cfg := range r.configs {
		infos = append(infos, Info{Name: name, Provider: cfg.Provider, Model: cfg.Model})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})

	return infos
}

// Register adds a named configuration. The completer is not instantiated
// until Get is called.
func (r *Registry) Register(name string, cfg Config) error {
	if name == "" {
		return ErrEmptyAgentName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; exists {
		return errors.WithMessagef(ErrAgentExists, "%s", name)
	}

	r.configs[name] = cfg
	return nil
}
