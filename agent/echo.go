package agent

import (
	"context"

	"github.com/tailored-agentic-units/threads/core/protocol"
)

type echoCompleter struct{}

// NewEcho returns a Completer that answers with the content of the last
// message. It needs no network and backs the default configuration.
func NewEcho() Completer {
	return echoCompleter{}
}

func (echoCompleter) Complete(ctx context.Context, history []protocol.Message) (protocol.Message, error) {
	if err := ctx.Err(); err != nil {
		return protocol.Message{}, err
	}
	if len(history) == 0 {
		return protocol.NewMessage(protocol.RoleAssistant, ""), nil
	}
	return protocol.NewMessage(protocol.RoleAssistant, history[len(history)-1].Content), nil
}
