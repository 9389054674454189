package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/folio/ai/mock"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotPaths(t *testing.T) (string, string) {
	dir := t.TempDir()
	return filepath.Join(dir, "index.bin"), filepath.Join(dir, "data.bin")
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	docs := testDocs()
	idx := buildTestIndex(t, docs)
	indexPath, dataPath := snapshotPaths(t)
	require.NoError(t, idx.Save(indexPath, dataPath))

	expect := Expect{Fingerprint: core.Fingerprint(docs), Model: "mock"}

	t.Run("round trip", func(t *testing.T) {
		loaded, err := Load(indexPath, dataPath, mock.NewMockEmbedder(), expect)
		require.NoError(t, err)
		assert.Equal(t, idx.Len(), loaded.Len())
		assert.Equal(t, idx.Fingerprint(), loaded.Fingerprint())
		assert.Equal(t, "mock", loaded.Model())
		assert.Equal(t, docs, loaded.Documents())

		want, err := idx.Search(ctx, "where does he work", 3)
		require.NoError(t, err)
		got, err := loaded.Search(ctx, "where does he work", 3)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("model changed", func(t *testing.T) {
		_, err := Load(indexPath, dataPath, mock.NewMockEmbedder(), Expect{Fingerprint: expect.Fingerprint, Model: "other"})
		assert.ErrorIs(t, err, ErrSnapshotInvalid)
	})

	t.Run("corpus changed", func(t *testing.T) {
		changed := testDocs()
		changed[0].Text = "He moved on."
		_, err := Load(indexPath, dataPath, mock.NewMockEmbedder(), Expect{Fingerprint: core.Fingerprint(changed), Model: "mock"})
		assert.ErrorIs(t, err, ErrSnapshotInvalid)
	})

	t.Run("requires embedder", func(t *testing.T) {
		_, err := Load(indexPath, dataPath, nil, expect)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})
}

func TestLoadInvalidArtifacts(t *testing.T) {
	docs := testDocs()
	expect := Expect{Fingerprint: core.Fingerprint(docs), Model: "mock"}

	t.Run("missing", func(t *testing.T) {
		indexPath, dataPath := snapshotPaths(t)
		_, err := Load(indexPath, dataPath, mock.NewMockEmbedder(), expect)
		assert.ErrorIs(t, err, ErrSnapshotInvalid)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("truncated", func(t *testing.T) {
		indexPath, dataPath := snapshotPaths(t)
		require.NoError(t, buildTestIndex(t, docs).Save(indexPath, dataPath))
		raw, err := os.ReadFile(indexPath)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(indexPath, raw[:len(raw)/2], 0o644))

		_, err = Load(indexPath, dataPath, mock.NewMockEmbedder(), expect)
		assert.ErrorIs(t, err, ErrSnapshotInvalid)
	})

	t.Run("artifacts from different builds", func(t *testing.T) {
		indexPath, dataPath := snapshotPaths(t)
		require.NoError(t, buildTestIndex(t, docs).Save(indexPath, dataPath))

		otherIndex, otherData := snapshotPaths(t)
		require.NoError(t, buildTestIndex(t, docs[:2]).Save(otherIndex, otherData))

		_, err := Load(otherIndex, dataPath, mock.NewMockEmbedder(), expect)
		assert.ErrorIs(t, err, ErrSnapshotInvalid)
	})
}
