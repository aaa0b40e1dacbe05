package driven

import (
	"context"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

// LLMService streams completions from a language model.
//
// Implementations include:
//   - Ollama (local models)
//   - OpenAI (or any compatible endpoint)
type LLMService interface {
	// Stream sends the conversation and returns the reply as a fragment stream.
	// Connection failures before the first fragment are returned as
	// *domain.BackendConnectionError; failures after that surface through
	// the stream's Err.
	Stream(ctx context.Context, messages []ChatMessage, opts ChatOptions) (domain.TextStream, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of RoleSystem, RoleUser or RoleAssistant.
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate. Zero means provider default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
