// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.ChatModel,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), mock.NewMockChatModel())
//	vector, err := provider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	chat := mock.NewMockChatModel()
//	chat.GenerateFunc = func(ctx context.Context, msgs []ai.Message) (string, error) {
//	    return "", errors.New("503 service unavailable")
//	}
//
//	// Check call counts
//	count := chat.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: hashed bag-of-words vectors, so shared vocabulary means similarity
//   - MockChatModel: returns DefaultReply
//   - MockProvider: aggregates mock embedder and chat model
package mock
