package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// MessageRole identifies the speaker of a chat message sent to a ChatModel.
type MessageRole string

const (
	// RoleSystem carries instructions for the model.
	RoleSystem MessageRole = "system"
	// RoleUser carries visitor text.
	RoleUser MessageRole = "user"
	// RoleAssistant carries earlier model replies.
	RoleAssistant MessageRole = "assistant"
)

// Message is a single entry of a chat completion request.
type Message struct {
	Role    MessageRole
	Content string
}

// ChatModel produces a completion for a list of chat messages.
// Implementations must be thread-safe for concurrent use.
type ChatModel interface {
	// Generate returns the text of the first completion choice.
	// Errors are returned unwrapped from the transport so callers can
	// classify them as transient or permanent.
	Generate(ctx context.Context, messages []Message) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and ChatModel instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// ChatModel returns the completion service.
	ChatModel() ChatModel

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
