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


package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Chat backends understood by the provider packages.
const (
	// BackendOpenAI talks to any OpenAI-compatible server (OpenAI, Ollama, vLLM, LocalAI).
	BackendOpenAI = "openai"
	// BackendHuggingFace talks to the Hugging Face inference API.
	BackendHuggingFace = "huggingface"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// ChatHost is the base URL for the chat completion service API.
	// Ignored by the huggingface backend.
	ChatHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "all-minilm", "text-embedding-3-small"
	EmbeddingModel string

	// ChatModel is the model identifier used to answer questions.
	// Example: "qwen2.5:3b", "mistralai/Mistral-7B-Instruct-v0.2"
	ChatModel string

	// ChatBackend selects the completion client: "openai" or "huggingface".
	ChatBackend string

	// APIKey is sent as the bearer token. Local servers accept any value.
	APIKey string

	Temperature float64
	TopP        float64
	MaxTokens   int

	// EmbeddingCacheSize bounds the number of query embeddings kept in memory.
	// Zero disables the cache.
	EmbeddingCacheSize int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithChatHost sets the chat service host URL.
func WithChatHost(host string) ConfigOption {
	return func(c *Config) {
		c.ChatHost = host
	}
}

// WithHost sets both embedding and chat hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ChatHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithChatModel sets the chat model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithChatBackend selects the chat completion backend.
func WithChatBackend(backend string) ConfigOption {
	return func(c *Config) {
		c.ChatBackend = backend
	}
}

// WithAPIKey sets the API key used by both services.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithTopP sets nucleus sampling.
func WithTopP(p float64) ConfigOption {
	return func(c *Config) {
		c.TopP = p
	}
}

// WithMaxTokens sets the completion length limit.
func WithMaxTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithEmbeddingCacheSize sets the capacity of the query embedding cache.
func WithEmbeddingCacheSize(n int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingCacheSize = n
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and chat use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:      defaultHost,
		ChatHost:           defaultHost,
		EmbeddingModel:     "all-minilm",
		ChatModel:          "qwen2.5:3b",
		ChatBackend:        BackendOpenAI,
		APIKey:             "none",
		Temperature:        0.7,
		TopP:               0.95,
		MaxTokens:          150,
		EmbeddingCacheSize: 256,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithChatModel("llama3.2"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// OpenAI-compatible hosts get the /v1 suffix most servers require.
func (c *Config) Normalize() {
	c.ChatBackend = strings.ToLower(strings.TrimSpace(c.ChatBackend))
	if c.ChatBackend == "" {
		c.ChatBackend = BackendOpenAI
	}
	c.EmbeddingHost = withV1(c.EmbeddingHost)
	if c.ChatBackend == BackendOpenAI {
		c.ChatHost = withV1(c.ChatHost)
	}
}

func withV1(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.ChatModel == "" {
		return errors.New("ai config: ChatModel is required")
	}
	switch c.ChatBackend {
	case BackendOpenAI:
		if c.ChatHost == "" {
			return errors.New("ai config: ChatHost is required")
		}
	case BackendHuggingFace:
	default:
		return fmt.Errorf("ai config: unknown ChatBackend %q", c.ChatBackend)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	if c.TopP <= 0 || c.TopP > 1 {
		return errors.New("ai config: TopP must be in (0, 1]")
	}
	if c.MaxTokens <= 0 {
		return errors.New("ai config: MaxTokens must be positive")
	}
	if c.EmbeddingCacheSize < 0 {
		return errors.New("ai config: EmbeddingCacheSize cannot be negative")
	}
	return nil
}
