// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"log/slog"

	"github.com/poiesic/folio/ai"
	"github.com/poiesic/folio/ai/huggingface"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// The chat model may instead come from the Hugging Face inference API.
type Provider struct {
	config   *ai.Config
	embedder ai.Embedder
	chat     *ChatModel
	logger   *slog.Logger
}

// NewProvider creates a new AI provider.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	var chat *ChatModel
	switch config.ChatBackend {
	case ai.BackendHuggingFace:
		model, err := huggingface.NewModel(config)
		if err != nil {
			return nil, err
		}
		chat = WrapModel(model, config, true)
	default:
		chat, err = newChatModel(config)
		if err != nil {
			return nil, err
		}
	}

	logger := slog.Default().With("component", "ai-provider")
	logger.Debug("provider ready",
		"embeddingModel", config.EmbeddingModel,
		"chatModel", config.ChatModel,
		"backend", config.ChatBackend)

	return &Provider{
		config:   config,
		embedder: ai.NewCachingEmbedder(embedder, config.EmbeddingCacheSize),
		chat:     chat,
		logger:   logger,
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// ChatModel returns the completion service.
func (p *Provider) ChatModel() ai.ChatModel {
	return p.chat
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing AI provider")
	return nil
}
