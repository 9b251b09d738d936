package adapter

import "context"

// Message represents a chat message sent to the generation backend.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Generator is the port for the text-generation backend. GenerateReply
// takes the ordered session history (without the system prompt; adapters
// prepend their own persona) and returns the assistant text, or one of the
// typed errors in internal/error.
type Generator interface {
	GenerateReply(ctx context.Context, history []Message) (string, error)
}
