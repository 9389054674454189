package index

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/poiesic/folio/ai/mock"
	"github.com/poiesic/folio/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuilder(t *testing.T) {
	t.Run("requires embedder", func(t *testing.T) {
		_, err := NewBuilder(nil, "m")
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("rejects bad batch size", func(t *testing.T) {
		_, err := NewBuilder(mock.NewMockEmbedder(), "m", WithBatchSize(0))
		assert.Error(t, err)
	})

	t.Run("rejects empty retry policy", func(t *testing.T) {
		_, err := NewBuilder(mock.NewMockEmbedder(), "m", WithRetryPolicy(retry.Policy{}))
		assert.ErrorIs(t, err, retry.ErrInvalidMaxAttempts)
	})
}

func TestBuilderBuild(t *testing.T) {
	ctx := context.Background()
	docs := testDocs()

	t.Run("embeds in batches", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		var progress bytes.Buffer
		builder, err := NewBuilder(embedder, "mock", WithBatchSize(2), WithPoolSize(3), WithProgress(&progress))
		require.NoError(t, err)

		idx, err := builder.Build(ctx, docs)
		require.NoError(t, err)
		assert.Equal(t, len(docs), idx.Len())
		assert.Equal(t, mock.Dimension, idx.Dimension())
		assert.Equal(t, 3, embedder.CallCount())
		assert.Contains(t, progress.String(), "5/5")

		// vectors stay aligned with their documents
		for i, doc := range docs {
			hits, err := idx.SearchScored(ctx, doc.Text, 1)
			require.NoError(t, err)
			assert.Equal(t, docs[i].ID, hits[0].DocID)
		}
	})

	t.Run("applies index options", func(t *testing.T) {
		builder, err := NewBuilder(mock.NewMockEmbedder(), "mock", WithIndexOptions(WithMaxContextChars(5)))
		require.NoError(t, err)

		idx, err := builder.Build(ctx, docs)
		require.NoError(t, err)
		texts, err := idx.Search(ctx, "acer", 1)
		require.NoError(t, err)
		assert.Len(t, []rune(texts[0]), 8)
	})

	t.Run("empty corpus", func(t *testing.T) {
		builder, err := NewBuilder(mock.NewMockEmbedder(), "mock")
		require.NoError(t, err)
		_, err = builder.Build(ctx, nil)
		assert.ErrorIs(t, err, ErrEmptyCorpus)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		var calls atomic.Int32
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("connection reset")
			}
			out := make([][]float32, len(texts))
			for i, text := range texts {
				out[i] = mock.BagOfWords(text)
			}
			return out, nil
		}
		builder, err := NewBuilder(embedder, "mock", WithBatchSize(10), WithRetryPolicy(retry.Fixed(3, 0)))
		require.NoError(t, err)

		idx, err := builder.Build(ctx, docs)
		require.NoError(t, err)
		assert.Equal(t, len(docs), idx.Len())
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("failed batch fails the build", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
			return nil, errors.New("model not found")
		}
		builder, err := NewBuilder(embedder, "mock", WithBatchSize(2), WithRetryPolicy(retry.Fixed(2, 0)))
		require.NoError(t, err)

		_, err = builder.Build(ctx, docs)
		assert.ErrorContains(t, err, "model not found")
	})

	t.Run("short batch response", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		}
		builder, err := NewBuilder(embedder, "mock", WithBatchSize(5), WithRetryPolicy(retry.Fixed(1, 0)))
		require.NoError(t, err)

		_, err = builder.Build(ctx, docs)
		assert.ErrorIs(t, err, ErrCountMismatch)
	})

	t.Run("duplicate document ids", func(t *testing.T) {
		builder, err := NewBuilder(mock.NewMockEmbedder(), "mock")
		require.NoError(t, err)
		dup := append(testDocs(), testDocs()[0])
		_, err = builder.Build(ctx, dup)
		assert.Error(t, err)
	})
}

func TestProgressTracker(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 4)

	tracker.Add(1)
	assert.Empty(t, buf.String(), "ignored before Start")

	tracker.Start()
	tracker.Add(2)
	tracker.Add(5)
	assert.Equal(t, 4, tracker.Current())
	tracker.Finish()

	assert.Contains(t, buf.String(), "2/4")
	assert.Contains(t, buf.String(), "4/4 documents (100.0%)")
	assert.Contains(t, buf.String(), "\n")
}
