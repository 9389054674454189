package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/folio/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrEmptyCompletion is returned when the backend answers without any choice.
var ErrEmptyCompletion = errors.New("completion returned no choices")

// ChatModel implements ai.ChatModel on top of any langchaingo llms.Model.
type ChatModel struct {
	model   llms.Model
	name    string
	options []llms.CallOption
	// flatten folds the conversation into a single prompt for backends that
	// only read the first message of a request.
	flatten bool
	logger  *slog.Logger
}

var _ ai.ChatModel = (*ChatModel)(nil)

// WrapModel adapts a langchaingo model using the generation settings of config.
// Set flatten for single-prompt backends such as the Hugging Face inference API.
func WrapModel(model llms.Model, config *ai.Config, flatten bool) *ChatModel {
	return &ChatModel{
		model: model,
		name:  config.ChatModel,
		options: []llms.CallOption{
			llms.WithTemperature(config.Temperature),
			llms.WithTopP(config.TopP),
			llms.WithMaxTokens(config.MaxTokens),
		},
		flatten: flatten,
		logger:  slog.Default().With("component", "chat-model", "model", config.ChatModel),
	}
}

func newChatModel(config *ai.Config) (*ChatModel, error) {
	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(tokenOrNone(config.APIKey)),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}
	return WrapModel(client, config, false), nil
}

// Generate sends the messages and returns the first choice's text.
func (m *ChatModel) Generate(ctx context.Context, messages []ai.Message) (string, error) {
	content := toMessageContent(messages, m.flatten)
	m.logger.Debug("requesting completion", "messages", len(content))

	resp, err := m.model.GenerateContent(ctx, content, m.options...)
	if err != nil {
		m.logger.Warn("completion failed", "err", err)
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Content, nil
}

func toMessageContent(messages []ai.Message, flatten bool) []llms.MessageContent {
	if flatten {
		var b strings.Builder
		for _, msg := range messages {
			switch msg.Role {
			case ai.RoleSystem:
				b.WriteString("System: ")
			case ai.RoleAssistant:
				b.WriteString("Assistant: ")
			default:
				b.WriteString("User: ")
			}
			b.WriteString(msg.Content)
			b.WriteString("\n\n")
		}
		b.WriteString("Assistant:")
		return []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, b.String())}
	}

	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.TextParts(messageType(msg.Role), msg.Content))
	}
	return content
}

func messageType(role ai.MessageRole) llms.ChatMessageType {
	switch role {
	case ai.RoleSystem:
		return llms.ChatMessageTypeSystem
	case ai.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
