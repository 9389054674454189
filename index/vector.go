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
	"log/slog"

	"github.com/poiesic/folio/ai"
	"github.com/poiesic/folio/core"
)

// DefaultMaxContextChars bounds the length of passages returned by VectorIndex.Search.
const DefaultMaxContextChars = 1000

const truncationMarker = "..."

// VectorIndex ranks documents by cosine similarity to the query embedding.
type VectorIndex struct {
	embedder        ai.Embedder
	model           string
	docs            []core.Document
	vectors         [][]float32
	dimension       int
	fingerprint     core.ID
	maxContextChars int
	logger          *slog.Logger
}

// Option configures a VectorIndex.
type Option func(*VectorIndex)

// WithMaxContextChars sets the rune budget of returned passages.
// Values <= 0 disable truncation.
func WithMaxContextChars(n int) Option {
	return func(v *VectorIndex) {
		v.maxContextChars = n
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(v *VectorIndex) {
		if logger == nil {
			logger = slog.Default()
		}
		v.logger = logger
	}
}

// NewVectorIndex pairs docs with their embeddings. Vectors are normalized on
// the way in; model names the embedding model that produced them.
func NewVectorIndex(embedder ai.Embedder, model string, docs []core.Document, vectors [][]float32, opts ...Option) (*VectorIndex, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}
	if len(docs) != len(vectors) {
		return nil, fmt.Errorf("%w: %d documents, %d vectors", ErrCountMismatch, len(docs), len(vectors))
	}

	dimension := len(vectors[0])
	normalized := make([][]float32, len(vectors))
	for i, vec := range vectors {
		if len(vec) != dimension || dimension == 0 {
			return nil, fmt.Errorf("%w: document %q has %d components, want %d",
				ErrDimensionMismatch, docs[i].ID, len(vec), dimension)
		}
		normalized[i] = core.NormalizeVector(vec)
	}

	owned := make([]core.Document, len(docs))
	for i, doc := range docs {
		owned[i] = doc.Clone()
	}

	v := &VectorIndex{
		embedder:        embedder,
		model:           model,
		docs:            owned,
		vectors:         normalized,
		dimension:       dimension,
		fingerprint:     core.Fingerprint(owned),
		maxContextChars: DefaultMaxContextChars,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With("component", "vector-index")
	return v, nil
}

// Len returns the number of indexed documents.
func (v *VectorIndex) Len() int {
	return len(v.docs)
}

// Documents returns a copy of the indexed documents in corpus order.
func (v *VectorIndex) Documents() []core.Document {
	out := make([]core.Document, len(v.docs))
	for i, doc := range v.docs {
		out[i] = doc.Clone()
	}
	return out
}

// Model returns the embedding model name recorded for this index.
func (v *VectorIndex) Model() string {
	return v.model
}

// Dimension returns the embedding length.
func (v *VectorIndex) Dimension() int {
	return v.dimension
}

// Fingerprint identifies the corpus this index was built from.
func (v *VectorIndex) Fingerprint() core.ID {
	return v.fingerprint
}

// SearchScored embeds query and returns the k most similar passages with
// their similarity, best first. Equal scores keep corpus order.
func (v *VectorIndex) SearchScored(ctx context.Context, query string, k int) ([]Scored, error) {
	if k <= 0 {
		return nil, nil
	}

	vec, err := v.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vec) != v.dimension {
		return nil, fmt.Errorf("%w: query has %d components, index has %d", ErrDimensionMismatch, len(vec), v.dimension)
	}
	vec = core.NormalizeVector(vec)

	hits := make([]Scored, len(v.docs))
	for i, doc := range v.docs {
		hits[i] = Scored{DocID: doc.ID, Text: doc.Text, Score: float64(core.Dot(vec, v.vectors[i]))}
	}
	hits = topK(hits, k)
	for i := range hits {
		hits[i].Text = truncate(hits[i].Text, v.maxContextChars)
	}

	v.logger.Debug("vector search", "k", k, "hits", len(hits))
	return hits, nil
}

// Search returns the texts of the k most similar passages.
func (v *VectorIndex) Search(ctx context.Context, query string, k int) ([]string, error) {
	hits, err := v.SearchScored(ctx, query, k)
	if err != nil {
		return nil, err
	}
	return Texts(hits), nil
}

// truncate cuts text to limit runes and appends the marker when it cuts.
func truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + truncationMarker
}
