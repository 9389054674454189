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


package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/folio/ai"
	"github.com/poiesic/folio/cache"
	"github.com/poiesic/folio/corpus"
	"github.com/poiesic/folio/index"
	"github.com/poiesic/folio/respond"
	"github.com/poiesic/folio/search"
	"github.com/poiesic/folio/storage"
)

// DefaultHistoryPairs is the number of question and answer pairs a session remembers.
const DefaultHistoryPairs = 5

// IndexSource tells how Initialize obtained the vector index.
type IndexSource string

const (
	IndexFromSnapshot IndexSource = "snapshot"
	IndexBuilt        IndexSource = "built"
)

// Status describes the engine.
type Status struct {
	Ready       bool
	Documents   int
	IndexSource IndexSource
	Cache       cache.Stats
}

// Engine answers questions about the persona described by a corpus.
type Engine struct {
	knowledge *corpus.Knowledge
	embedder  ai.Embedder
	generator *respond.Generator
	responses *cache.Cache

	model           string
	indexPath       string
	dataPath        string
	searchK         int
	historyPairs    int
	recordShortcuts bool
	maxContextChars int
	builderOpts     []index.BuilderOption
	logger          *slog.Logger

	mu       sync.RWMutex
	searcher *search.Engine
	docs     int
	source   IndexSource

	defaultSession *Session
}

// Option configures an Engine.
type Option func(*Engine) error

// WithSnapshot sets where the vector index is loaded from and saved to.
// Without it every Initialize builds the index from scratch.
func WithSnapshot(indexPath, dataPath string) Option {
	return func(e *Engine) error {
		e.indexPath, e.dataPath = indexPath, dataPath
		return nil
	}
}

// WithEmbeddingModel names the embedding model; snapshots written with a
// different model are rebuilt.
func WithEmbeddingModel(model string) Option {
	return func(e *Engine) error {
		e.model = model
		return nil
	}
}

// WithSearchK sets how many passages are retrieved per question.
func WithSearchK(k int) Option {
	return func(e *Engine) error {
		if k <= 0 {
			return fmt.Errorf("search k must be positive, got %d", k)
		}
		e.searchK = k
		return nil
	}
}

// WithHistoryPairs sets how many exchanges a session keeps.
func WithHistoryPairs(n int) Option {
	return func(e *Engine) error {
		if n < 0 {
			return fmt.Errorf("history pairs cannot be negative, got %d", n)
		}
		e.historyPairs = n
		return nil
	}
}

// WithRecordShortcutTurns also records greetings and cache hits in the
// session history.
func WithRecordShortcutTurns(record bool) Option {
	return func(e *Engine) error {
		e.recordShortcuts = record
		return nil
	}
}

// WithMaxContextChars bounds the length of each passage returned by vector search.
func WithMaxContextChars(n int) Option {
	return func(e *Engine) error {
		if n <= 0 {
			return fmt.Errorf("max context chars must be positive, got %d", n)
		}
		e.maxContextChars = n
		return nil
	}
}

// WithBuilderOptions passes options to the index builder.
func WithBuilderOptions(opts ...index.BuilderOption) Option {
	return func(e *Engine) error {
		e.builderOpts = append(e.builderOpts, opts...)
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// NewEngine wires the pipeline. The engine is not ready until Initialize succeeds.
func NewEngine(knowledge *corpus.Knowledge, embedder ai.Embedder, generator *respond.Generator, responses *cache.Cache, opts ...Option) (*Engine, error) {
	switch {
	case knowledge == nil:
		return nil, ErrKnowledgeRequired
	case embedder == nil:
		return nil, ErrEmbedderRequired
	case generator == nil:
		return nil, ErrGeneratorRequired
	case responses == nil:
		return nil, ErrCacheRequired
	}

	e := &Engine{
		knowledge:       knowledge,
		embedder:        embedder,
		generator:       generator,
		responses:       responses,
		searchK:         search.DefaultK,
		historyPairs:    DefaultHistoryPairs,
		maxContextChars: index.DefaultMaxContextChars,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "chat")
	e.defaultSession = e.NewSession()
	return e, nil
}

// Initialize loads the vector index from its snapshot, or builds and saves
// it, then builds the keyword index and warms the cache. A failed save is
// logged; any other failure leaves the engine not ready.
func (e *Engine) Initialize(ctx context.Context) error {
	vectors, source, err := e.loadOrBuild(ctx)
	if err != nil {
		return err
	}

	searcher, err := search.NewEngine(index.NewKeywordIndex(e.knowledge.Documents), vectors,
		search.WithLogger(e.logger))
	if err != nil {
		return err
	}

	if err := e.responses.Warm(ctx); err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}

	e.mu.Lock()
	e.searcher, e.docs, e.source = searcher, vectors.Len(), source
	e.mu.Unlock()

	e.logger.Info("chat engine ready", "documents", vectors.Len(), "index", source)
	return nil
}

func (e *Engine) loadOrBuild(ctx context.Context) (*index.VectorIndex, IndexSource, error) {
	indexOpts := []index.Option{index.WithMaxContextChars(e.maxContextChars), index.WithLogger(e.logger)}
	persist := e.indexPath != "" && e.dataPath != ""

	if persist {
		expect := index.Expect{Fingerprint: e.knowledge.Fingerprint(), Model: e.model}
		vectors, err := index.Load(e.indexPath, e.dataPath, e.embedder, expect, indexOpts...)
		if err == nil {
			return vectors, IndexFromSnapshot, nil
		}
		if errors.Is(err, storage.ErrNotFound) {
			e.logger.Info("no index snapshot, building", "index", e.indexPath)
		} else {
			e.logger.Warn("index snapshot unusable, rebuilding", "err", err)
		}
	}

	opts := append([]index.BuilderOption{
		index.WithIndexOptions(indexOpts...),
		index.WithBuilderLogger(e.logger),
	}, e.builderOpts...)
	builder, err := index.NewBuilder(e.embedder, e.model, opts...)
	if err != nil {
		return nil, "", err
	}
	vectors, err := builder.Build(ctx, e.knowledge.Documents)
	if err != nil {
		return nil, "", fmt.Errorf("build index: %w", err)
	}

	if persist {
		if err := vectors.Save(e.indexPath, e.dataPath); err != nil {
			e.logger.Warn("failed to save index snapshot", "err", err)
		}
	}
	return vectors, IndexBuilt, nil
}

// Ready reports whether Initialize has completed.
func (e *Engine) Ready() bool {
	return e.currentSearcher() != nil
}

func (e *Engine) currentSearcher() *search.Engine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.searcher
}

// Status reports readiness, index size and origin, and cache statistics.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Status{
		Ready:       e.searcher != nil,
		Documents:   e.docs,
		IndexSource: e.source,
		Cache:       e.responses.Stats(),
	}
}

// Search runs hybrid search for query without expansion or generation.
func (e *Engine) Search(ctx context.Context, query string, k int, monitor search.Monitor) ([]search.Result, error) {
	searcher := e.currentSearcher()
	if searcher == nil {
		return nil, ErrNotReady
	}
	return searcher.SearchWithMonitor(ctx, query, k, monitor)
}

// Chat answers message in the engine's default session.
func (e *Engine) Chat(ctx context.Context, message string) string {
	return e.defaultSession.Chat(ctx, message)
}

// NewSession starts a conversation with its own history.
func (e *Engine) NewSession() *Session {
	return &Session{engine: e}
}

// Close releases the indices. The engine reports not ready afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.searcher = nil
	e.docs = 0
	e.source = ""
	return nil
}
