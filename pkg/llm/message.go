// Package llm defines the provider-agnostic chat types shared by the
// backend clients. Providers translate these into their own wire formats.
package llm

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a message with the given role and content.
func NewMessage(role, content string) Message {
	return Message{Role: role, Content: content}
}
