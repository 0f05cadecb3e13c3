package conversation

import (
	"strings"

	"github.com/tailored-agentic-units/threads/core/protocol"
)

const (
	// PlaceholderTitle labels a conversation with no messages.
	PlaceholderTitle = "New Chat"

	maxTitleRunes = 50
	ellipsis      = "..."
)

// DeriveTitle labels a conversation from the content of its first message,
// whatever its role. Later messages never change the title.
func DeriveTitle(messages []protocol.Message) string {
	if len(messages) == 0 {
		return PlaceholderTitle
	}

	content := []rune(strings.TrimSpace(messages[0].Content))
	if len(content) <= maxTitleRunes {
		return string(content)
	}
	return string(content[:maxTitleRunes]) + ellipsis
}
