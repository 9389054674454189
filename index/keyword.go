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


package index

import (
	"strings"

	"github.com/poiesic/folio/core"
)

// Score weights for keyword matching.
const (
	keywordWeight = 2
	textWeight    = 1
)

// KeywordIndex ranks documents by exact token overlap with the query.
type KeywordIndex struct {
	docs     []core.Document
	keywords []map[string]struct{}
	tokens   []map[string]struct{}
}

// NewKeywordIndex pre-tokenizes docs. Keywords are matched lowercased and
// whole, so a multi-word keyword never matches a single query token.
func NewKeywordIndex(docs []core.Document) *KeywordIndex {
	idx := &KeywordIndex{
		docs:     make([]core.Document, len(docs)),
		keywords: make([]map[string]struct{}, len(docs)),
		tokens:   make([]map[string]struct{}, len(docs)),
	}
	for i, doc := range docs {
		idx.docs[i] = doc.Clone()
		kws := make(map[string]struct{}, len(doc.Metadata.Keywords))
		for _, kw := range doc.Metadata.Keywords {
			kws[strings.ToLower(strings.TrimSpace(kw))] = struct{}{}
		}
		idx.keywords[i] = kws
		idx.tokens[i] = core.TokenSet(doc.Text)
	}
	return idx
}

// Len returns the number of indexed documents.
func (idx *KeywordIndex) Len() int {
	return len(idx.docs)
}

// SearchScored returns up to k documents with a positive score, best first.
// Equal scores keep corpus order.
func (idx *KeywordIndex) SearchScored(query string, k int) []Scored {
	if k <= 0 {
		return nil
	}
	q := core.TokenSet(query)
	if len(q) == 0 {
		return nil
	}

	var hits []Scored
	for i, doc := range idx.docs {
		score := keywordWeight*overlap(q, idx.keywords[i]) + textWeight*overlap(q, idx.tokens[i])
		if score == 0 {
			continue
		}
		hits = append(hits, Scored{DocID: doc.ID, Text: doc.Text, Score: float64(score)})
	}
	return topK(hits, k)
}

// Search returns the texts of the top k documents.
func (idx *KeywordIndex) Search(query string, k int) []string {
	return Texts(idx.SearchScored(query, k))
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}
