package interfaces

import "context"

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// TokenUsage reports the token consumption of a single completion call
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	Model        string
}

// TotalTokens returns input plus output tokens
func (u TokenUsage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}

// CompletionRequest describes one structured completion call
type CompletionRequest struct {
	// Messages is the conversation history in chronological order
	Messages []Message

	// Model is the provider model id to use for this call
	Model string

	// MaxTokens caps the response length; 0 uses the provider default
	MaxTokens int

	// Schema is a human-readable description of the expected JSON shape,
	// appended to the prompt so the model emits parseable output
	Schema string
}

// LLMService defines the interface for structured language model completions.
// Implementations parse the model's JSON output into the caller's type and
// retry internally (up to ~3 times) when the output fails to parse.
type LLMService interface {
	// CompleteStructured sends the request and unmarshals the JSON response
	// into out. Returns token usage for cost accounting.
	CompleteStructured(ctx context.Context, req CompletionRequest, out any) (TokenUsage, error)

	// FastModel returns the model id configured for cheap extraction calls
	FastModel() string

	// SmartModel returns the model id configured for high-quality calls
	SmartModel() string

	// Close releases resources held by the provider client
	Close() error
}
