// Package mock provides a scripted agent.Completer for tests.
package mock

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/tailored-agentic-units/threads/core/protocol"
)

// ErrScriptExhausted is returned once every scripted step has been consumed.
var ErrScriptExhausted = errors.New("mock completer script exhausted")

// Step is one scripted completion outcome.
type Step struct {
	Content string
	Err     error
}

// Text scripts a successful assistant reply.
func Text(content string) Step { return Step{Content: content} }

// Fail scripts a completion failure.
func Fail(err error) Step { return Step{Err: err} }

// Completer replays scripted steps in order and records every history it
// receives.
type Completer struct {
	mu      sync.Mutex
	steps   []Step
	calls   [][]protocol.Message
	gate    <-chan struct{}
	started chan struct{}
}

// Option configures a Completer.
type Option func(*Completer)

// WithGate makes every call block until gate is closed or the context ends.
func WithGate(gate <-chan struct{}) Option {
	return func(c *Completer) { c.gate = gate }
}

// New creates a Completer that answers with steps in order.
func New(steps []Step, opts ...Option) *Completer {
	c := &Completer{
		steps:   append([]Step(nil), steps...),
		started: make(chan struct{}, 64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete records the history, waits on the gate if one is set, then
// returns the next scripted step.
func (c *Completer) Complete(ctx context.Context, history []protocol.Message) (protocol.Message, error) {
	c.mu.Lock()
	c.calls = append(c.calls, protocol.Clone(history))
	c.mu.Unlock()

	select {
	case c.started <- struct{}{}:
	default:
	}

	if c.gate != nil {
		select {
		case <-c.gate:
		case <-ctx.Done():
			return protocol.Message{}, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.steps) == 0 {
		return protocol.Message{}, ErrScriptExhausted
	}
	step := c.steps[0]
	c.steps = c.steps[1:]

	if step.Err != nil {
		return protocol.Message{}, step.Err
	}
	return protocol.NewMessage(protocol.RoleAssistant, step.Content), nil
}

// Started receives one value per Complete call as it begins.
func (c *Completer) Started() <-chan struct{} {
	return c.started
}

// Calls returns copies of every history received so far.
func (c *Completer) Calls() [][]protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([][]protocol.Message, len(c.calls))
	for i, h := range c.calls {
		out[i] = protocol.Clone(h)
	}
	return out
}
