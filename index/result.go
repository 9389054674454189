package index

import "slices"

// Scored is a search hit with its score.
type Scored struct {
	DocID string
	Text  string
	Score float64
}

// Texts extracts the text of each hit, preserving order.
func Texts(hits []Scored) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Text
	}
	return out
}

// topK sorts hits by descending score, keeping input order among equal
// scores, and returns at most k of them.
func topK(hits []Scored, k int) []Scored {
	slices.SortStableFunc(hits, func(a, b Scored) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
