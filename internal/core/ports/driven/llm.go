package driven

import "context"

// LLMService provides language model chat for the agentic chunking
// mode. This is an optional, unreliable collaborator: implementations
// signal unavailability with domain.ErrLLMUnavailable or by returning
// empty output, and callers must degrade gracefully.
type LLMService interface {
	// Chat conducts a conversation and returns the assistant reply.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// JSONMode requests strictly JSON-formatted output where the
	// backend supports it.
	JSONMode bool

	// BypassCache skips any response caching layer. Chunking decisions
	// are never cached.
	BypassCache bool
}
