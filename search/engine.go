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


package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/folio/index"
	"golang.org/x/sync/errgroup"
)

// DefaultK is the number of passages returned when callers have no preference.
const DefaultK = 10

// KeywordIndex is the lexical retriever used by Engine.
type KeywordIndex interface {
	SearchScored(query string, k int) []index.Scored
}

// VectorIndex is the semantic retriever used by Engine.
type VectorIndex interface {
	SearchScored(ctx context.Context, query string, k int) ([]index.Scored, error)
}

// Result is a re-ranked passage.
type Result struct {
	Text  string
	Score float64
	// Keyword and Vector record which retrievers returned the passage.
	Keyword bool
	Vector  bool
}

func (r Result) sources() string {
	switch {
	case r.Keyword && r.Vector:
		return "kw+vec"
	case r.Keyword:
		return "kw    "
	default:
		return "vec   "
	}
}

// Engine combines keyword and vector retrieval and re-ranks the union.
type Engine struct {
	keyword  KeywordIndex
	vector   VectorIndex
	reranker *Reranker
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithReranker replaces the default re-ranker.
func WithReranker(r *Reranker) Option {
	return func(e *Engine) error {
		if r == nil {
			return errors.New("reranker cannot be nil")
		}
		e.reranker = r
		return nil
	}
}

// NewEngine creates a hybrid search engine over the two indices.
func NewEngine(keyword KeywordIndex, vector VectorIndex, opts ...Option) (*Engine, error) {
	if keyword == nil {
		return nil, ErrKeywordIndexRequired
	}
	if vector == nil {
		return nil, ErrVectorIndexRequired
	}

	e := &Engine{
		keyword:  keyword,
		vector:   vector,
		reranker: NewReranker(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "search")
	return e, nil
}

// Search returns up to k passages, best first.
func (e *Engine) Search(ctx context.Context, query string, k int) ([]string, error) {
	results, err := e.SearchWithMonitor(ctx, query, k, nil)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return texts, nil
}

// SearchWithMonitor is Search with scores and stage callbacks.
// A nil monitor is allowed.
func (e *Engine) SearchWithMonitor(ctx context.Context, query string, k int, monitor Monitor) ([]Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query, k)
	if k <= 0 {
		monitor.Finish(nil)
		return nil, nil
	}

	var (
		g                  errgroup.Group
		keywordHits        []index.Scored
		vectorHits         []index.Scored
		keywordErr, vecErr error
	)
	// Each retriever records its own failure so the other can still succeed.
	g.Go(func() error {
		if keywordErr = ctx.Err(); keywordErr == nil {
			keywordHits = e.keyword.SearchScored(query, k)
		}
		return nil
	})
	g.Go(func() error {
		vectorHits, vecErr = e.vector.SearchScored(ctx, query, k)
		return nil
	})
	_ = g.Wait()

	monitor.AfterKeyword(keywordHits, keywordErr)
	monitor.AfterVector(vectorHits, vecErr)

	switch {
	case keywordErr != nil && vecErr != nil:
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, errors.Join(keywordErr, vecErr))
	case vecErr != nil:
		e.logger.Warn("vector retrieval failed, using keyword results only", "err", vecErr)
	case keywordErr != nil:
		e.logger.Warn("keyword retrieval failed, using vector results only", "err", keywordErr)
	}

	merged, origins := merge(keywordHits, vectorHits, k)
	monitor.AfterMerge(merged)

	results := e.reranker.Rerank(query, merged)
	for i := range results {
		o := origins[results[i].Text]
		results[i].Keyword, results[i].Vector = o.keyword, o.vector
	}

	e.logger.Debug("hybrid search", "k", k, "keyword", len(keywordHits), "vector", len(vectorHits), "results", len(results))
	monitor.Finish(results)
	return results, nil
}

type provenance struct {
	keyword, vector bool
}

// merge lists keyword hits then vector hits, drops texts already seen and
// keeps the first k.
func merge(keywordHits, vectorHits []index.Scored, k int) ([]string, map[string]provenance) {
	merged := make([]string, 0, len(keywordHits)+len(vectorHits))
	origins := make(map[string]provenance, cap(merged))
	for _, h := range keywordHits {
		o, seen := origins[h.Text]
		if !seen {
			merged = append(merged, h.Text)
		}
		o.keyword = true
		origins[h.Text] = o
	}
	for _, h := range vectorHits {
		o, seen := origins[h.Text]
		if !seen {
			merged = append(merged, h.Text)
		}
		o.vector = true
		origins[h.Text] = o
	}
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged, origins
}
