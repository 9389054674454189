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


// Package folio assembles a portfolio question answering assistant: a corpus
// of documents about one person, hybrid retrieval over it, a semantic
// response cache and a chat model that answers in the third person.
package folio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/folio/ai"
	"github.com/poiesic/folio/ai/openai"
	"github.com/poiesic/folio/cache"
	"github.com/poiesic/folio/chat"
	"github.com/poiesic/folio/corpus"
	"github.com/poiesic/folio/index"
	"github.com/poiesic/folio/respond"
	"github.com/poiesic/folio/storage"
	"github.com/poiesic/folio/storage/badger"
)

// Assistant owns the AI provider, the cache store and the chat engine built
// on them.
type Assistant struct {
	config    *Config
	knowledge *corpus.Knowledge
	provider  ai.AIProvider
	store     storage.CacheStore
	responses *cache.Cache
	engine    *chat.Engine
	logger    *slog.Logger
}

// New creates an Assistant backed by the provider described by the AI config.
func New(opts ...Option) (*Assistant, error) {
	cfg := NewConfig(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	provider, err := openai.NewProvider(cfg.AI)
	if err != nil {
		return nil, err
	}
	a, err := newAssistant(cfg, provider)
	if err != nil {
		provider.Close()
		return nil, err
	}
	return a, nil
}

// NewWithProvider creates an Assistant on an existing provider, which it
// closes on Close.
func NewWithProvider(provider ai.AIProvider, opts ...Option) (*Assistant, error) {
	cfg := NewConfig(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newAssistant(cfg, provider)
}

func newAssistant(cfg *Config, provider ai.AIProvider) (*Assistant, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	knowledge, err := loadKnowledge(cfg.CorpusPath)
	if err != nil {
		return nil, err
	}

	var store storage.CacheStore
	if cfg.CacheDir != "" {
		store, err = badger.NewCacheStore(cfg.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("open cache store: %w", err)
		}
	}

	a, err := assemble(cfg, provider, knowledge, store, logger)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	return a, nil
}

func assemble(cfg *Config, provider ai.AIProvider, knowledge *corpus.Knowledge, store storage.CacheStore, logger *slog.Logger) (*Assistant, error) {
	embedder := provider.Embedder()

	cacheOpts := []cache.Option{
		cache.WithFAQ(knowledge.FAQ),
		cache.WithThreshold(cfg.SimilarityThreshold),
		cache.WithDuplicateThreshold(cfg.DuplicateThreshold),
		cache.WithCapacity(cfg.CacheCapacity),
		cache.WithModel(cfg.AI.EmbeddingModel),
		cache.WithLogger(logger),
	}
	if store != nil {
		cacheOpts = append(cacheOpts, cache.WithStore(store))
	}
	responses, err := cache.New(embedder, cacheOpts...)
	if err != nil {
		return nil, err
	}

	generator, err := respond.NewGenerator(provider.ChatModel(), &knowledge.Persona,
		respond.WithMaxContexts(cfg.MaxContexts),
		respond.WithTimeout(cfg.GenerationTimeout),
		respond.WithRetry(cfg.MaxAttempts, cfg.RetryDelay),
		respond.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	engine, err := chat.NewEngine(knowledge, embedder, generator, responses,
		chat.WithEmbeddingModel(cfg.AI.EmbeddingModel),
		chat.WithSnapshot(cfg.IndexPath, cfg.DataPath),
		chat.WithSearchK(cfg.SearchK),
		chat.WithHistoryPairs(cfg.HistoryPairs),
		chat.WithRecordShortcutTurns(cfg.RecordShortcutTurns),
		chat.WithMaxContextChars(cfg.MaxContextChars),
		chat.WithBuilderOptions(builderOptions(cfg, logger)...),
		chat.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &Assistant{
		config:    cfg,
		knowledge: knowledge,
		provider:  provider,
		store:     store,
		responses: responses,
		engine:    engine,
		logger:    logger,
	}, nil
}

func loadKnowledge(path string) (*corpus.Knowledge, error) {
	if path == "" {
		return corpus.Default()
	}
	return corpus.LoadFile(path)
}

func builderOptions(cfg *Config, logger *slog.Logger) []index.BuilderOption {
	return []index.BuilderOption{
		index.WithBatchSize(cfg.BatchSize),
		index.WithProgress(cfg.Progress),
		index.WithBuilderLogger(logger),
	}
}

// Initialize prepares the engine; see chat.Engine.Initialize.
func (a *Assistant) Initialize(ctx context.Context) error {
	return a.engine.Initialize(ctx)
}

// BuildIndex embeds the corpus and writes the snapshot, replacing any
// existing one.
func (a *Assistant) BuildIndex(ctx context.Context) (*index.VectorIndex, error) {
	if a.config.IndexPath == "" {
		return nil, fmt.Errorf("build index: no snapshot paths configured")
	}
	builder, err := index.NewBuilder(a.provider.Embedder(), a.config.AI.EmbeddingModel,
		append(builderOptions(a.config, a.logger),
			index.WithIndexOptions(index.WithMaxContextChars(a.config.MaxContextChars)))...)
	if err != nil {
		return nil, err
	}
	vectors, err := builder.Build(ctx, a.knowledge.Documents)
	if err != nil {
		return nil, err
	}
	if err := vectors.Save(a.config.IndexPath, a.config.DataPath); err != nil {
		return nil, err
	}
	return vectors, nil
}

func (a *Assistant) Engine() *chat.Engine {
	return a.engine
}

func (a *Assistant) Knowledge() *corpus.Knowledge {
	return a.knowledge
}

func (a *Assistant) Cache() *cache.Cache {
	return a.responses
}

// Close shuts down the engine, the provider and the cache store.
func (a *Assistant) Close() error {
	if err := a.engine.Close(); err != nil {
		a.logger.Error("error closing chat engine", "err", err)
	}
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("error closing cache store", "err", err)
			return err
		}
	}
	return nil
}
