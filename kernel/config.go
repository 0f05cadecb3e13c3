package kernel

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/threads/agent"
	"github.com/tailored-agentic-units/threads/conversation"
	"github.com/tailored-agentic-units/threads/transcript"
)

// Config holds initialization parameters for all kernel subsystems.
// Each section delegates to that subsystem's config-driven constructor.
type Config struct {
	Store    transcript.Config       `json:"store" yaml:"store"`
	Agent    agent.Config            `json:"agent" yaml:"agent"`
	Agents   map[string]agent.Config `json:"agents,omitempty" yaml:"agents,omitempty"`
	IDPrefix string                  `json:"id_prefix,omitempty" yaml:"id_prefix,omitempty"`
}

// DefaultConfig returns a Config with defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Store:    transcript.DefaultConfig(),
		Agent:    agent.DefaultConfig(),
		IDPrefix: conversation.DefaultIDPrefix,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Store.Merge(&source.Store)
	c.Agent.Merge(&source.Agent)

	if source.IDPrefix != "" {
		c.IDPrefix = source.IDPrefix
	}
	if len(source.Agents) > 0 {
		c.Agents = source.Agents
	}
}

// LoadConfig reads a config file, merges it with defaults, and returns the
// result. Files ending in .yaml or .yml are parsed as YAML, anything else
// as JSON.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
