// Package protocol defines the message values exchanged between the
// conversation store and the model-completion collaborator.
package protocol

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid reports whether r is a role the store accepts.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message is a single turn entry in a transcript. Messages are values and are
// never edited after being appended to a conversation.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// NewMessage creates a Message with the given role and content.
//
// Example:
//
//	msg := protocol.NewMessage(protocol.RoleUser, "Hello, world!")
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// Clone returns a copy of msgs that shares no backing array with the input.
func Clone(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	copied := make([]Message, len(msgs))
	copy(copied, msgs)
	return copied
}
