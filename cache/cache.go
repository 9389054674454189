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


package cache

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/poiesic/folio/ai"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/storage"
)

const (
	// DefaultThreshold is the minimum cosine similarity for a lookup hit.
	DefaultThreshold float32 = 0.85
	// DefaultDuplicateThreshold rejects inserts that are near copies of an
	// existing entry.
	DefaultDuplicateThreshold float32 = 0.95
	// DefaultCapacity bounds the dynamic tier.
	DefaultCapacity = 50

	// MinResponseLength and MaxResponseLength bound cacheable responses, in characters.
	MinResponseLength = 50
	MaxResponseLength = 1000
)

// rejectWords mark responses that describe a failure rather than an answer.
var rejectWords = []string{"error", "sorry"}

// Tier names the cache tier that produced a hit.
type Tier string

const (
	TierStatic  Tier = "static"
	TierDynamic Tier = "dynamic"
)

// Hit is a successful lookup.
type Hit struct {
	Response   string
	Similarity float32
	Tier       Tier
	// Category is set for static hits.
	Category string
	// Query is the cached query a dynamic hit matched.
	Query string
}

// Stats summarizes cache contents and traffic since creation.
type Stats struct {
	StaticCategories int
	DynamicEntries   int
	// DynamicAccesses sums the access counts of live dynamic entries.
	DynamicAccesses int64
	Hits            int64
	Misses          int64
}

// Cache is the two-tier semantic response cache.
type Cache struct {
	embedder  ai.Embedder
	faq       []core.CannedAnswer
	store     storage.CacheStore
	model     string
	threshold float32
	duplicate float32
	capacity  int
	now       func() time.Time
	logger    *slog.Logger

	static *staticTier

	mu      sync.Mutex
	dynamic *dynamicTier

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache) error

// WithFAQ seeds the static tier. Categories without examples or responses are ignored.
func WithFAQ(faq []core.CannedAnswer) Option {
	return func(c *Cache) error {
		c.faq = slices.Clone(faq)
		return nil
	}
}

// WithThreshold sets the lookup similarity threshold.
func WithThreshold(threshold float32) Option {
	return func(c *Cache) error {
		if threshold <= 0 || threshold > 1 {
			return ErrInvalidThreshold
		}
		c.threshold = threshold
		return nil
	}
}

// WithDuplicateThreshold sets the similarity at which inserts count as duplicates.
func WithDuplicateThreshold(threshold float32) Option {
	return func(c *Cache) error {
		if threshold <= 0 || threshold > 1 {
			return ErrInvalidThreshold
		}
		c.duplicate = threshold
		return nil
	}
}

// WithCapacity bounds the dynamic tier.
func WithCapacity(n int) Option {
	return func(c *Cache) error {
		if n <= 0 {
			return ErrInvalidCapacity
		}
		c.capacity = n
		return nil
	}
}

// WithStore persists dynamic entries. The cache does not close the store.
func WithStore(store storage.CacheStore) Option {
	return func(c *Cache) error {
		c.store = store
		return nil
	}
}

// WithModel names the embedding model behind the embedder. Persisted entries
// recorded under a different model are discarded on Warm.
func WithModel(name string) Option {
	return func(c *Cache) error {
		c.model = name
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) error {
		c.logger = logger
		return nil
	}
}

// WithClock overrides the time source used for access timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) error {
		c.now = now
		return nil
	}
}

// New creates a cache. The static tier stays empty until Warm embeds its
// examples.
func New(embedder ai.Embedder, opts ...Option) (*Cache, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	c := &Cache{
		embedder:  embedder,
		threshold: DefaultThreshold,
		duplicate: DefaultDuplicateThreshold,
		capacity:  DefaultCapacity,
		now:       time.Now,
		logger:    slog.Default(),
		static:    &staticTier{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "cache")

	dynamic, err := newDynamicTier(c.capacity)
	if err != nil {
		return nil, err
	}
	c.dynamic = dynamic
	return c, nil
}

// Warm embeds the static examples and, when a store is attached and the
// dynamic tier is empty, restores persisted entries. Entries from another
// embedding model or with a different vector dimension are deleted instead.
func (c *Cache) Warm(ctx context.Context) error {
	if err := c.warmStatic(ctx); err != nil {
		return err
	}
	if c.store == nil {
		return nil
	}

	c.mu.Lock()
	empty := c.dynamic.len() == 0
	c.mu.Unlock()
	if !empty {
		return nil
	}

	records, err := c.store.All(ctx)
	if err != nil {
		c.logger.Warn("failed to load persisted cache entries", "err", err)
		return nil
	}

	records, stale, err := c.compatible(ctx, records)
	if err != nil {
		return err
	}
	if len(stale) > 0 {
		c.logger.Info("discarding cache entries from another embedding model", "count", len(stale))
		c.forget(ctx, stale)
	}

	var evicted []string
	c.mu.Lock()
	for _, r := range records {
		evicted = append(evicted, c.dynamic.add(entryFromRecord(r))...)
	}
	c.mu.Unlock()
	c.forget(ctx, evicted)

	c.logger.Info("cache warmed", "static", c.static.len(), "dynamic", len(records)-len(evicted))
	return nil
}

// compatible splits records into those usable with the current embedder and
// the queries of those that are not. The expected dimension comes from the
// static examples, or from re-embedding the most recent query when there are none.
func (c *Cache) compatible(ctx context.Context, records []*storage.CacheEntry) ([]*storage.CacheEntry, []string, error) {
	if len(records) == 0 {
		return nil, nil, nil
	}
	dim := c.static.dimension()
	if dim == 0 {
		v, err := c.embedder.EmbedText(ctx, records[len(records)-1].Query)
		if err != nil {
			return nil, nil, err
		}
		dim = len(v)
	}

	kept := records[:0:0]
	var stale []string
	for _, r := range records {
		if (c.model != "" && r.Model != c.model) || len(r.Vector) != dim {
			stale = append(stale, r.Query)
			continue
		}
		kept = append(kept, r)
	}
	return kept, stale, nil
}

func (c *Cache) warmStatic(ctx context.Context) error {
	categories := make([]*staticCategory, 0, len(c.faq))
	for _, answer := range c.faq {
		if len(answer.Examples) == 0 || len(answer.Responses) == 0 {
			continue
		}
		vectors, err := c.embedder.EmbedTexts(ctx, answer.Examples)
		if err != nil {
			return err
		}
		categories = append(categories, &staticCategory{
			name:      answer.Category,
			examples:  vectors,
			responses: slices.Clone(answer.Responses),
		})
	}
	c.static.replace(categories)
	return nil
}

// Lookup returns the cached response for query, checking the static tier first.
func (c *Cache) Lookup(ctx context.Context, query string) (Hit, bool, error) {
	vector, err := c.embedder.EmbedText(ctx, query)
	if err != nil {
		return Hit{}, false, err
	}

	if hit, ok := c.static.match(vector, c.threshold); ok {
		c.hits.Add(1)
		c.logger.Debug("static cache hit", "category", hit.Category, "similarity", hit.Similarity)
		return hit, true, nil
	}

	c.mu.Lock()
	e, sim, ok := c.dynamic.find(vector, c.threshold)
	var record *storage.CacheEntry
	if ok {
		c.dynamic.touch(e, c.now())
		record = e.record()
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return Hit{}, false, nil
	}

	c.hits.Add(1)
	c.logger.Debug("dynamic cache hit", "query", e.query, "similarity", sim)
	c.persist(ctx, record)
	return Hit{Response: record.Response, Similarity: sim, Tier: TierDynamic, Query: record.Query}, true, nil
}

// Insert adds a generated response to the dynamic tier. It reports false
// without error when the response is not worth caching.
func (c *Cache) Insert(ctx context.Context, query, response string) (bool, error) {
	if reason := rejectReason(response); reason != "" {
		c.logger.Debug("response not cached", "reason", reason)
		return false, nil
	}
	if strings.TrimSpace(query) == "" {
		return false, nil
	}

	vector, err := c.embedder.EmbedText(ctx, query)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	if _, _, dup := c.dynamic.find(vector, c.duplicate); dup {
		c.mu.Unlock()
		c.logger.Debug("response not cached", "reason", "duplicate")
		return false, nil
	}
	e := &entry{
		query:       query,
		vector:      vector,
		response:    response,
		accessCount: 1,
		lastAccess:  c.now(),
	}
	evicted := c.dynamic.add(e)
	record := e.record()
	c.mu.Unlock()

	c.persist(ctx, record)
	c.forget(ctx, evicted)
	return true, nil
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	entries := c.dynamic.len()
	accesses := c.dynamic.totalAccesses()
	c.mu.Unlock()

	return Stats{
		StaticCategories: c.static.len(),
		DynamicEntries:   entries,
		DynamicAccesses:  accesses,
		Hits:             c.hits.Load(),
		Misses:           c.misses.Load(),
	}
}

// Queries lists the dynamic entries from least to most recently used.
func (c *Cache) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dynamic.queries()
}

func (c *Cache) persist(ctx context.Context, record *storage.CacheEntry) {
	if c.store == nil {
		return
	}
	record.Model = c.model
	if err := c.store.Put(ctx, record); err != nil {
		c.logger.Warn("failed to persist cache entry", "err", err)
	}
}

func (c *Cache) forget(ctx context.Context, queries []string) {
	if c.store == nil {
		return
	}
	for _, q := range queries {
		if err := c.store.Delete(ctx, q); err != nil {
			c.logger.Warn("failed to delete evicted cache entry", "err", err)
		}
	}
}

func rejectReason(response string) string {
	n := utf8.RuneCountInString(response)
	if n < MinResponseLength {
		return "too short"
	}
	if n > MaxResponseLength {
		return "too long"
	}
	lower := strings.ToLower(response)
	for _, word := range rejectWords {
		if strings.Contains(lower, word) {
			return "failure wording"
		}
	}
	return ""
}
