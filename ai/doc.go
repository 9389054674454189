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


// Package ai provides abstractions for the AI services folio depends on.
//
// This package defines interfaces for text embeddings and chat completion.
// Retrieval, caching and answer generation depend on these abstractions
// rather than on a concrete model server.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - ChatModel: Produces a completion for a list of messages
//   - AIProvider: Aggregates AI services for convenient initialization
//
// CachingEmbedder wraps any Embedder with an LRU keyed by content hash so a
// single chat turn embeds its message only once.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/huggingface: Hugging Face inference client for the chat model
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// INTERFACE types to enforce abstraction. Test utility constructors
// (mock.NewMockEmbedder, mock.NewMockChatModel) return CONCRETE types to
// enable test assertions and behavior injection.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithChatModel("qwen2.5:3b"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "Hello world")
package ai
