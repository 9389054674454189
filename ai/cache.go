package ai

import (
	"context"
	"log/slog"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/folio/core"
)

// CachingEmbedder memoizes single-text embeddings by content hash.
// A chat turn embeds the same message for cache lookup, vector search and
// cache insert; only the first call reaches the backend.
type CachingEmbedder struct {
	next   Embedder
	cache  *lru.Cache[core.ID, []float32]
	logger *slog.Logger
}

var _ Embedder = (*CachingEmbedder)(nil)

// NewCachingEmbedder wraps next with an LRU of the given size.
// A size <= 0 returns next unchanged.
func NewCachingEmbedder(next Embedder, size int) Embedder {
	if size <= 0 {
		return next
	}
	cache, err := lru.New[core.ID, []float32](size)
	if err != nil {
		return next
	}
	return &CachingEmbedder{
		next:   next,
		cache:  cache,
		logger: slog.Default().With("component", "embedding-cache"),
	}
}

// EmbedText returns a cached vector when the exact text was embedded before.
func (c *CachingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := core.IDFromContent(text)
	if v, ok := c.cache.Get(key); ok {
		return slices.Clone(v), nil
	}

	c.logger.Debug("embedding cache miss", "length", len(text))
	v, err := c.next.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(v) > 0 {
		c.cache.Add(key, slices.Clone(v))
	}
	return v, nil
}

// EmbedTexts is used for corpus builds and bypasses the cache.
func (c *CachingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return c.next.EmbedTexts(ctx, texts)
}

// Len reports the number of cached vectors.
func (c *CachingEmbedder) Len() int {
	return c.cache.Len()
}
