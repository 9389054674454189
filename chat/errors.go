package chat

import "errors"

var (
	ErrKnowledgeRequired = errors.New("knowledge required")
	ErrEmbedderRequired  = errors.New("embedder required")
	ErrGeneratorRequired = errors.New("generator required")
	ErrCacheRequired     = errors.New("cache required")

	// ErrNotReady is returned by operations that need an initialized engine.
	ErrNotReady = errors.New("engine not initialized")
)
