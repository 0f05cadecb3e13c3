package agent

import "github.com/pkg/errors"

// Sentinel errors for completers and the agent registry.
var (
	ErrUnknownProvider = errors.New("unknown completion provider")
	ErrEmptyResponse   = errors.New("completion returned no choices")
	ErrAgentNotFound   = errors.New("agent not found")
	ErrAgentExists     = errors.New("agent already registered")
	ErrEmptyAgentName  = errors.New("agent name is empty")
)
