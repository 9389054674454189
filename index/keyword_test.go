package index

import (
	"testing"

	"github.com/poiesic/folio/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordIndexSearchScored(t *testing.T) {
	idx := NewKeywordIndex(testDocs())

	t.Run("keywords count double", func(t *testing.T) {
		hits := idx.SearchScored("acer go", 10)
		require.Len(t, hits, 3)

		// acer: 2 keyword matches + 2 text matches
		assert.Equal(t, "acer", hits[0].DocID)
		assert.Equal(t, 6.0, hits[0].Score)
		// skills: "go" in text only
		assert.Equal(t, "skills", hits[1].DocID)
		assert.Equal(t, 1.0, hits[1].Score)
		// acer-laptops: "acer" in text only, after skills in corpus order
		assert.Equal(t, "acer-laptops", hits[2].DocID)
		assert.Equal(t, 1.0, hits[2].Score)
	})

	t.Run("keyword match scores at least two", func(t *testing.T) {
		hits := idx.SearchScored("Research?", 10)
		require.NotEmpty(t, hits)
		assert.Equal(t, "thesis", hits[0].DocID)
		assert.GreaterOrEqual(t, hits[0].Score, 2.0)
	})

	t.Run("zero scores are excluded", func(t *testing.T) {
		assert.Empty(t, idx.SearchScored("quantum chemistry", 10))
	})

	t.Run("k limits results", func(t *testing.T) {
		assert.Len(t, idx.SearchScored("acer go", 1), 1)
	})

	t.Run("non-positive k", func(t *testing.T) {
		assert.Empty(t, idx.SearchScored("acer", 0))
		assert.Empty(t, idx.SearchScored("acer", -1))
	})

	t.Run("empty query", func(t *testing.T) {
		assert.Empty(t, idx.SearchScored("  ?! ", 5))
	})

	t.Run("multi-word keywords are whole", func(t *testing.T) {
		hits := idx.SearchScored("platform", 10)
		require.Len(t, hits, 1)
		assert.Equal(t, 1.0, hits[0].Score)
	})
}

func TestKeywordIndexSearch(t *testing.T) {
	idx := NewKeywordIndex(testDocs())

	texts := idx.Search("thesis", 3)
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "master's thesis")
	assert.Equal(t, 5, idx.Len())
}

func TestKeywordIndexIsolatedFromCaller(t *testing.T) {
	docs := []core.Document{{ID: "a", Text: "golang", Metadata: core.Metadata{Keywords: []string{"go"}}}}
	idx := NewKeywordIndex(docs)
	docs[0].Text = "changed"

	assert.Equal(t, []string{"golang"}, idx.Search("golang", 1))
}
