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


package index

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/folio/ai"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/retry"
)

const (
	// DefaultBatchSize is the number of documents sent per embedding request.
	DefaultBatchSize = 16

	defaultMaxAttempts = 3
	defaultRetryDelay  = 500 * time.Millisecond
)

// Builder embeds a corpus and produces a VectorIndex.
type Builder struct {
	embedder  ai.Embedder
	model     string
	batchSize int
	poolSize  int
	policy    retry.Policy
	progress  io.Writer
	indexOpts []Option
	logger    *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder) error

// WithBatchSize sets how many documents are embedded per request.
func WithBatchSize(n int) BuilderOption {
	return func(b *Builder) error {
		if n < 1 {
			return fmt.Errorf("batch size must be positive, got %d", n)
		}
		b.batchSize = n
		return nil
	}
}

// WithPoolSize sets the number of concurrent embedding requests.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(n int) BuilderOption {
	return func(b *Builder) error {
		if n < 1 {
			n = 1
		}
		b.poolSize = n
		return nil
	}
}

// WithRetryPolicy replaces the per-batch retry policy.
func WithRetryPolicy(policy retry.Policy) BuilderOption {
	return func(b *Builder) error {
		if policy.MaxAttempts <= 0 {
			return retry.ErrInvalidMaxAttempts
		}
		b.policy = policy
		return nil
	}
}

// WithProgress writes a progress line to w while building.
func WithProgress(w io.Writer) BuilderOption {
	return func(b *Builder) error {
		b.progress = w
		return nil
	}
}

// WithIndexOptions sets options applied to every index the builder produces.
func WithIndexOptions(opts ...Option) BuilderOption {
	return func(b *Builder) error {
		b.indexOpts = append(b.indexOpts, opts...)
		return nil
	}
}

// WithBuilderLogger sets a custom logger.
// Default is slog.Default().
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates a builder that embeds with embedder and records model
// as the embedding model name.
func NewBuilder(embedder ai.Embedder, model string, opts ...BuilderOption) (*Builder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	b := &Builder{
		embedder:  embedder,
		model:     model,
		batchSize: DefaultBatchSize,
		poolSize:  max(runtime.NumCPU()/2, 1),
		policy:    retry.Exponential(defaultMaxAttempts, defaultRetryDelay),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.logger = b.logger.With("component", "index-builder")
	return b, nil
}

// Build embeds every document and returns the resulting index. Batches run
// concurrently on a worker pool that lives only for the duration of the call.
// The first failing batch cancels the rest and fails the build.
func (b *Builder) Build(ctx context.Context, docs []core.Document) (*VectorIndex, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}
	if err := core.ValidateCorpus(docs); err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(b.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tracker := NewProgressTracker(b.progress, len(docs))
	tracker.Start()
	defer tracker.Finish()

	vectors := make([][]float32, len(docs))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	b.logger.Info("building vector index", "documents", len(docs), "batchSize", b.batchSize, "workers", b.poolSize)
	for start := 0; start < len(docs); start += b.batchSize {
		end := min(start+b.batchSize, len(docs))
		texts := make([]string, 0, end-start)
		for _, doc := range docs[start:end] {
			texts = append(texts, doc.Text)
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			batch, err := b.embedBatch(ctx, texts)
			if err != nil {
				fail(fmt.Errorf("embedding documents %d-%d: %w", start, end-1, err))
				return
			}
			copy(vectors[start:end], batch)
			tracker.Add(len(batch))
			b.logger.Debug("embedded batch", "from", start, "to", end-1)
		})
		if submitErr != nil {
			wg.Done()
			fail(submitErr)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		b.logger.Error("index build failed", "err", firstErr)
		return nil, firstErr
	}

	idx, err := NewVectorIndex(b.embedder, b.model, docs, vectors, b.indexOpts...)
	if err != nil {
		return nil, err
	}
	b.logger.Info("vector index built", "documents", idx.Len(), "dimension", idx.Dimension(), "elapsed", tracker.Elapsed())
	return idx, nil
}

func (b *Builder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := retry.Do(ctx, b.policy, func(ctx context.Context) error {
		vectors, err := b.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("%w: sent %d texts, received %d vectors", ErrCountMismatch, len(texts), len(vectors))
		}
		out = vectors
		return nil
	})
	return out, err
}
