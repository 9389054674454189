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


package folio

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/poiesic/folio/ai"
	"github.com/poiesic/folio/cache"
	"github.com/poiesic/folio/chat"
	"github.com/poiesic/folio/index"
	"github.com/poiesic/folio/respond"
	"github.com/poiesic/folio/search"
	"github.com/poiesic/folio/storage"
)

// Config holds everything needed to assemble an Assistant.
type Config struct {
	AI *ai.Config

	// CorpusPath is a TOML corpus file. Empty uses the bundled portfolio.
	CorpusPath string

	// IndexPath and DataPath locate the index snapshot. Leave both empty to
	// rebuild the index on every start.
	IndexPath string
	DataPath  string

	// CacheDir holds the persistent response cache. Empty keeps the cache in memory.
	CacheDir string

	SimilarityThreshold float32
	DuplicateThreshold  float32
	CacheCapacity       int

	SearchK         int
	MaxContexts     int
	HistoryPairs    int
	MaxContextChars int

	GenerationTimeout time.Duration
	MaxAttempts       int
	RetryDelay        time.Duration

	RecordShortcutTurns bool

	BatchSize int
	// Progress receives index build progress. Nil discards it.
	Progress io.Writer

	Logger *slog.Logger
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

func WithAIConfig(cfg *ai.Config) Option {
	return func(c *Config) {
		c.AI = cfg
	}
}

func WithCorpusPath(path string) Option {
	return func(c *Config) {
		c.CorpusPath = path
	}
}

// WithDataDir places the index snapshot and the cache database under dir.
func WithDataDir(dir string) Option {
	return func(c *Config) {
		c.IndexPath = filepath.Join(dir, storage.IndexFileName)
		c.DataPath = filepath.Join(dir, storage.DataFileName)
		c.CacheDir = filepath.Join(dir, "cache")
	}
}

func WithIndexPath(path string) Option {
	return func(c *Config) {
		c.IndexPath = path
	}
}

func WithDataPath(path string) Option {
	return func(c *Config) {
		c.DataPath = path
	}
}

func WithCacheDir(dir string) Option {
	return func(c *Config) {
		c.CacheDir = dir
	}
}

func WithSimilarityThreshold(t float32) Option {
	return func(c *Config) {
		c.SimilarityThreshold = t
	}
}

func WithDuplicateThreshold(t float32) Option {
	return func(c *Config) {
		c.DuplicateThreshold = t
	}
}

func WithCacheCapacity(n int) Option {
	return func(c *Config) {
		c.CacheCapacity = n
	}
}

func WithSearchK(k int) Option {
	return func(c *Config) {
		c.SearchK = k
	}
}

func WithMaxContexts(n int) Option {
	return func(c *Config) {
		c.MaxContexts = n
	}
}

func WithHistoryPairs(n int) Option {
	return func(c *Config) {
		c.HistoryPairs = n
	}
}

func WithMaxContextChars(n int) Option {
	return func(c *Config) {
		c.MaxContextChars = n
	}
}

func WithGenerationTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.GenerationTimeout = d
	}
}

// WithRetry sets the attempts per model call and the fixed delay between them.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(c *Config) {
		c.MaxAttempts = maxAttempts
		c.RetryDelay = delay
	}
}

func WithRecordShortcutTurns(record bool) Option {
	return func(c *Config) {
		c.RecordShortcutTurns = record
	}
}

func WithBatchSize(n int) Option {
	return func(c *Config) {
		c.BatchSize = n
	}
}

func WithProgress(w io.Writer) Option {
	return func(c *Config) {
		c.Progress = w
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns a Config with the default tuning and no persistence.
func DefaultConfig() *Config {
	return &Config{
		AI:                  ai.DefaultConfig(),
		SimilarityThreshold: cache.DefaultThreshold,
		DuplicateThreshold:  cache.DefaultDuplicateThreshold,
		CacheCapacity:       cache.DefaultCapacity,
		SearchK:             search.DefaultK,
		MaxContexts:         respond.DefaultMaxContexts,
		HistoryPairs:        chat.DefaultHistoryPairs,
		MaxContextChars:     index.DefaultMaxContextChars,
		GenerationTimeout:   respond.DefaultTimeout,
		MaxAttempts:         respond.DefaultMaxAttempts,
		RetryDelay:          respond.DefaultRetryDelay,
		BatchSize:           index.DefaultBatchSize,
		Logger:              slog.Default(),
	}
}

// NewConfig creates a Config with the default values and applies opts.
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks the tuning values. The AI section is validated by the
// provider that consumes it.
func (c *Config) Validate() error {
	switch {
	case c.AI == nil:
		return errors.New("config: AI config is required")
	case (c.IndexPath == "") != (c.DataPath == ""):
		return errors.New("config: IndexPath and DataPath must be set together")
	case c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1:
		return errors.New("config: SimilarityThreshold must be in (0, 1]")
	case c.DuplicateThreshold <= 0 || c.DuplicateThreshold > 1:
		return errors.New("config: DuplicateThreshold must be in (0, 1]")
	case c.CacheCapacity <= 0:
		return errors.New("config: CacheCapacity must be positive")
	case c.SearchK <= 0:
		return errors.New("config: SearchK must be positive")
	case c.MaxContexts <= 0:
		return errors.New("config: MaxContexts must be positive")
	case c.HistoryPairs < 0:
		return errors.New("config: HistoryPairs cannot be negative")
	case c.MaxContextChars <= 0:
		return errors.New("config: MaxContextChars must be positive")
	case c.GenerationTimeout <= 0:
		return errors.New("config: GenerationTimeout must be positive")
	case c.MaxAttempts <= 0:
		return errors.New("config: MaxAttempts must be positive")
	case c.RetryDelay < 0:
		return errors.New("config: RetryDelay cannot be negative")
	case c.BatchSize <= 0:
		return errors.New("config: BatchSize must be positive")
	}
	return nil
}
