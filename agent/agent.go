// Package agent provides the model-completion collaborator: anything that
// maps an ordered message history to the next assistant message.
//
// Providers are created from configuration:
//
//	c, err := agent.New(&cfg)
//	reply, err := c.Complete(ctx, history)
package agent

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tailored-agentic-units/threads/core/protocol"
)

// Providers selectable from configuration.
const (
	ProviderEcho   = "echo"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Completer produces the next assistant message for a history. The history
// is passed in full and in order; implementations must not modify it.
type Completer interface {
	Complete(ctx context.Context, history []protocol.Message) (protocol.Message, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, history []protocol.Message) (protocol.Message, error)

func (f CompleterFunc) Complete(ctx context.Context, history []protocol.Message) (protocol.Message, error) {
	return f(ctx, history)
}

// New creates a Completer from configuration. A positive Window wraps the
// provider so it only sees the most recent messages.
func New(cfg *Config) (Completer, error) {
	var (
		c   Completer
		err error
	)

	switch cfg.Provider {
	case "", ProviderEcho:
		c = NewEcho()
	case ProviderOpenAI:
		c, err = NewOpenAI(cfg)
	case ProviderOllama:
		c, err = NewOllama(cfg)
	default:
		return nil, errors.WithMessagef(ErrUnknownProvider, "%q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Window > 0 {
		c = Window(c, cfg.Window)
	}
	return c, nil
}
