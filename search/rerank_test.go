package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRerankerScore(t *testing.T) {
	r := NewReranker(WithRecentYears(2031))

	tests := []struct {
		name      string
		query     string
		candidate string
		want      float64
	}{
		{"category bonus", "where does he work", "He is a developer at Acer", 15},
		{"trigger without vocabulary", "where does he work", "He likes cricket", 0},
		{"phrase and token bonuses", "machine learning thesis", "His thesis used Machine Learning.", 39},
		{"distinct tokens count once", "react react react", "react", 3},
		{"phrases ignore token length", "go at it", "go at it later", 10 + 10 + 15},
		{"recent year", "what is he doing now", "In 2031 he joined", 5},
		{"present marker", "latest role", "He is currently a lead engineer", 15 + 5},
		{"no currency trigger", "role", "He is currently a lead engineer", 15},
		{"empty query", "", "anything", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Score(tt.query, tt.candidate))
		})
	}
}

func TestRerankerDefaultYears(t *testing.T) {
	r := NewReranker()
	assert.Len(t, r.recentYears, 2)
}

func TestWithCategories(t *testing.T) {
	r := NewReranker(WithCategories([]Category{
		{Name: "pets", Triggers: []string{"dog"}, Vocabulary: []string{"beagle"}, Bonus: 7},
	}))

	assert.Equal(t, 7.0, r.Score("his dog", "a beagle named Max"))
	assert.Equal(t, 0.0, r.Score("where does he work", "He is a developer at Acer"))
}

func TestRerankIsStable(t *testing.T) {
	r := NewReranker()
	candidates := []string{"first", "second about thesis", "third", "fourth about thesis"}

	results := r.Rerank("thesis", candidates)

	got := make([]string, len(results))
	for i, res := range results {
		got[i] = res.Text
	}
	assert.Equal(t, []string{"second about thesis", "fourth about thesis", "first", "third"}, got)
	assert.Equal(t, results[0].Score, results[1].Score)
}
