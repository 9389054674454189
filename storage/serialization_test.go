package storage

import (
	"testing"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/poiesic/folio/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocuments() []core.Document {
	return []core.Document{
		{
			ID:   "experience_acer",
			Text: "He builds data platforms at Acer America.",
			Metadata: core.Metadata{
				Category: "work",
				Keywords: []string{"acer", "data", "platform"},
				Priority: "high",
				Date:     "2023-present",
				Recency:  "current",
				Extra:    map[string]string{"company": "Acer America", "links.site": "https://example.com"},
			},
		},
		{
			ID:   "skills_go",
			Text: "Go, Python and SQL.",
		},
	}
}

func TestDataArtifactRoundTrip(t *testing.T) {
	in := &DataArtifact{Fingerprint: core.ID(42), Documents: sampleDocuments()}

	out, err := UnmarshalDataArtifact(MarshalDataArtifact(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestIndexArtifactRoundTrip(t *testing.T) {
	in := &IndexArtifact{
		Fingerprint: core.ID(7),
		Model:       "all-minilm",
		Dimension:   3,
		Vectors:     [][]float32{{0.1, 0.2, 0.3}, {-1, 0, 1}},
	}

	out, err := UnmarshalIndexArtifact(MarshalIndexArtifact(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDataArtifactIsDeterministic(t *testing.T) {
	a := MarshalDataArtifact(&DataArtifact{Fingerprint: 1, Documents: sampleDocuments()})
	b := MarshalDataArtifact(&DataArtifact{Fingerprint: 1, Documents: sampleDocuments()})
	assert.Equal(t, a, b)
}

func TestArtifactErrors(t *testing.T) {
	t.Run("wrong magic", func(t *testing.T) {
		data := MarshalDataArtifact(&DataArtifact{Fingerprint: 1})
		_, err := UnmarshalIndexArtifact(data)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("truncated", func(t *testing.T) {
		data := MarshalDataArtifact(&DataArtifact{Fingerprint: 1, Documents: sampleDocuments()})
		_, err := UnmarshalDataArtifact(data[:len(data)-5])
		assert.Error(t, err)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		data := MarshalIndexArtifact(&IndexArtifact{Fingerprint: 1, Model: "m", Dimension: 1, Vectors: [][]float32{{1}}})
		_, err := UnmarshalIndexArtifact(append(data, 0, 0))
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := UnmarshalDataArtifact(nil)
		assert.Error(t, err)
	})
}

func TestCacheEntryRoundTrip(t *testing.T) {
	in := &CacheEntry{
		Query:       "where does he work",
		Vector:      []float32{0.6, 0.8},
		Response:    "He works at Acer America on the data platform team.",
		AccessCount: 3,
		LastAccess:  time.Now().UTC().Truncate(time.Microsecond),
		Model:       "nomic-embed-text",
	}

	out, err := UnmarshalCacheEntry(MarshalCacheEntry(in))
	require.NoError(t, err)
	assert.Equal(t, in.Query, out.Query)
	assert.Equal(t, in.Vector, out.Vector)
	assert.Equal(t, in.Response, out.Response)
	assert.Equal(t, in.AccessCount, out.AccessCount)
	assert.True(t, in.LastAccess.Equal(out.LastAccess))
	assert.Equal(t, in.Model, out.Model)
}

func TestCacheEntryWithoutModel(t *testing.T) {
	in := &CacheEntry{Query: "q", Vector: []float32{1}, Response: "r", LastAccess: time.UnixMicro(42).UTC()}
	data := MarshalCacheEntry(in)

	// Entries written before the model was recorded end after the timestamp.
	legacy := data[:len(data)-ord.String.Size("")]
	out, err := UnmarshalCacheEntry(legacy)
	require.NoError(t, err)
	assert.Equal(t, "", out.Model)
	assert.Equal(t, "q", out.Query)
	assert.True(t, in.LastAccess.Equal(out.LastAccess))
}
