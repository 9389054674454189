package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/poiesic/folio/ai"
)

// DefaultReply is returned by MockChatModel when no GenerateFunc is set.
const DefaultReply = "He is a software engineer who builds scalable web applications and has experience integrating AI features into products."

// MockChatModel is a test double for ai.ChatModel.
type MockChatModel struct {
	// GenerateFunc is called by Generate if set.
	GenerateFunc func(ctx context.Context, messages []ai.Message) (string, error)

	mu        sync.Mutex
	callCount int
	last      []ai.Message
}

// NewMockChatModel creates a chat model that answers with DefaultReply.
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// Generate records the request and returns the scripted reply.
func (m *MockChatModel) Generate(ctx context.Context, messages []ai.Message) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.last = slices.Clone(messages)
	fn := m.GenerateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages)
	}
	return DefaultReply, nil
}

// CallCount returns the number of Generate calls.
func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastMessages returns the messages of the most recent request.
func (m *MockChatModel) LastMessages() []ai.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.last)
}

// Reset clears recorded calls and injected behavior.
func (m *MockChatModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.last = nil
	m.GenerateFunc = nil
}
