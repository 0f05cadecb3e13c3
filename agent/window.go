package agent

import (
	"context"

	"github.com/tailored-agentic-units/threads/core/protocol"
)

// Window wraps c so that it receives only the last n messages of each
// history. The caller's history is left untouched.
func Window(c Completer, n int) Completer {
	if n <= 0 {
		return c
	}
	return CompleterFunc(func(ctx context.Context, history []protocol.Message) (protocol.Message, error) {
		if len(history) > n {
			history = history[len(history)-n:]
		}
		return c.Complete(ctx, protocol.Clone(history))
	})
}
