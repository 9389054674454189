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


// Package huggingface builds chat completion clients for the Hugging Face
// inference API. Embeddings are always served by an OpenAI-compatible host.
package huggingface

import (
	"github.com/poiesic/folio/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/huggingface"
)

// NewModel creates a langchaingo model for config.ChatModel.
// When config.APIKey is empty or the local placeholder "none", the client
// falls back to the token in the environment.
func NewModel(config *ai.Config) (llms.Model, error) {
	opts := []huggingface.Option{
		huggingface.WithModel(config.ChatModel),
	}
	if config.APIKey != "" && config.APIKey != "none" {
		opts = append(opts, huggingface.WithToken(config.APIKey))
	}
	return huggingface.New(opts...)
}
