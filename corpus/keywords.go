package corpus

import (
	"cmp"
	"slices"

	"github.com/poiesic/folio/core"
)

// DefaultMaxKeywords caps the keywords extracted for one document.
const DefaultMaxKeywords = 10

// minKeywordLength is exclusive: tokens must be longer than this.
const minKeywordLength = 2

// StopWords are never extracted as keywords.
var StopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {}, "might": {}, "can": {},
	"i": {}, "my": {}, "me": {}, "we": {}, "our": {}, "us": {}, "you": {}, "your": {},
	"he": {}, "his": {}, "him": {}, "she": {}, "her": {}, "it": {}, "its": {},
	"they": {}, "their": {}, "them": {},
}

// ExtractKeywords returns up to max of the most frequent non stop-word tokens
// of text that are longer than two characters. Ties keep first-occurrence order.
func ExtractKeywords(text string, max int) []string {
	if max <= 0 {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, token := range core.Tokenize(text) {
		if len(token) <= minKeywordLength {
			continue
		}
		if _, stop := StopWords[token]; stop {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	slices.SortStableFunc(order, func(a, b string) int {
		return cmp.Compare(counts[b], counts[a])
	})

	if len(order) > max {
		order = order[:max]
	}
	return order
}
