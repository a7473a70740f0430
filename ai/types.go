package ai

// Role identifies the author of a chat message.
type Role string

const (
	// RoleSystem is the instruction message placed first in a conversation.
	RoleSystem Role = "system"
	// RoleUser is a message from the querying client.
	RoleUser Role = "user"
	// RoleAssistant is a prior model response carried as history.
	RoleAssistant Role = "assistant"
)

// Message is one turn of conversation history passed to a completion call.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
