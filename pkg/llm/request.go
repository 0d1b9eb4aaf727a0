package llm

import "fmt"

// ChatRequest represents an inbound chat completion request.
type ChatRequest struct {
	Messages []Message      `json:"messages"`           // Conversation history, newest last
	Model    string         `json:"model,omitempty"`    // Optional model name override
	Stream   *bool          `json:"stream,omitempty"`   // Accepted for compatibility; the upstream leg always streams
	Metadata map[string]any `json:"metadata,omitempty"` // Extra parameters passed through to the backend
}

// Validate checks the request shape: messages must be non-empty and every
// message needs a role and content.
func (r *ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages must not be empty")
	}
	for i, msg := range r.Messages {
		if msg.Role == "" {
			return fmt.Errorf("message %d: missing role", i)
		}
		if msg.Content == "" {
			return fmt.Errorf("message %d: missing content", i)
		}
	}
	return nil
}
