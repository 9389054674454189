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


package search

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/folio/core"
)

// Phrase and token bonuses.
const (
	twoWordPhraseBonus   = 10
	threeWordPhraseBonus = 15
	queryTokenBonus      = 3
	recencyBonus         = 5

	minBonusTokenLength = 4
)

// Category is one intent the re-ranker recognizes. When any trigger is a
// query token and the lowercased passage contains any vocabulary term, the
// passage earns Bonus.
type Category struct {
	Name       string
	Triggers   []string
	Vocabulary []string
	Bonus      float64
}

// DefaultCategories returns the intent table tuned for the portfolio corpus.
func DefaultCategories() []Category {
	return []Category{
		{
			Name:       "work",
			Triggers:   []string{"work", "job", "company", "employer", "role", "position", "career", "responsibilities", "duties"},
			Vocabulary: []string{"acer", "mindtree", "tata", "company", "employer", "developer", "engineer"},
			Bonus:      15,
		},
		{
			Name:       "projects",
			Triggers:   []string{"project", "best", "achievement", "accomplishment", "developed", "built", "created", "portfolio"},
			Vocabulary: []string{"project", "developed", "built", "created", "ecommerce", "spellcheck", "chat", "weather"},
			Bonus:      15,
		},
		{
			Name:       "skills",
			Triggers:   []string{"skill", "technology", "expertise", "know", "experience", "proficient", "stack"},
			Vocabulary: []string{"skill", "technology", "react", "nodejs", "python", "javascript", "genai", "llm"},
			Bonus:      15,
		},
		{
			Name:       "education",
			Triggers:   []string{"education", "study", "degree", "university", "college", "masters", "bachelors", "coursework"},
			Vocabulary: []string{"university", "college", "degree", "education", "masters", "bachelors", "csun", "northridge"},
			Bonus:      15,
		},
		{
			Name:       "certification",
			Triggers:   []string{"certification", "certified", "certificate", "credential", "aws", "mta"},
			Vocabulary: []string{"certification", "certified", "aws", "mta", "microsoft", "credential"},
			Bonus:      20,
		},
		{
			Name:       "language",
			Triggers:   []string{"language", "speak", "communicate", "multilingual", "telugu", "hindi", "english"},
			Vocabulary: []string{"language", "multilingual", "telugu", "hindi", "english", "communicate"},
			Bonus:      20,
		},
		{
			Name:       "leadership",
			Triggers:   []string{"leadership", "lead", "mentor", "volunteering", "community", "organize", "team"},
			Vocabulary: []string{"leadership", "lead", "mentor", "volunteering", "community", "acm", "organize"},
			Bonus:      20,
		},
		{
			Name:       "research",
			Triggers:   []string{"thesis", "research", "publication", "paper", "study", "analysis"},
			Vocabulary: []string{"thesis", "research", "publication", "sentiment", "bert", "roberta", "nlp"},
			Bonus:      20,
		},
		{
			Name:       "personal",
			Triggers:   []string{"hobby", "hobbies", "interest", "personal", "gaming", "dota", "dedication"},
			Vocabulary: []string{"hobby", "hobbies", "interest", "gaming", "dota", "dedication", "cricket"},
			Bonus:      15,
		},
	}
}

var (
	currencyTriggers = []string{"current", "now", "recent", "latest"}
	currencyMarkers  = []string{"current", "present"}
)

// Reranker scores passages against a query. It is immutable and safe for
// concurrent use.
type Reranker struct {
	categories  []Category
	recentYears []string
}

// RerankerOption configures a Reranker.
type RerankerOption func(*Reranker)

// WithCategories replaces the intent table.
func WithCategories(categories []Category) RerankerOption {
	return func(r *Reranker) {
		r.categories = slices.Clone(categories)
	}
}

// WithRecentYears sets the years that count as recent for currency queries.
// Default is the current and the previous calendar year.
func WithRecentYears(years ...int) RerankerOption {
	return func(r *Reranker) {
		r.recentYears = r.recentYears[:0]
		for _, y := range years {
			r.recentYears = append(r.recentYears, strconv.Itoa(y))
		}
	}
}

// NewReranker returns a re-ranker using DefaultCategories unless overridden.
func NewReranker(opts ...RerankerOption) *Reranker {
	year := time.Now().Year()
	r := &Reranker{
		categories:  DefaultCategories(),
		recentYears: []string{strconv.Itoa(year), strconv.Itoa(year - 1)},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Score returns the intent score of candidate for query. Matching is on
// lowercase text; query words are core.Tokenize tokens.
func (r *Reranker) Score(query, candidate string) float64 {
	q := newQueryTerms(query)
	return r.score(q, strings.ToLower(candidate))
}

// Rerank scores candidates and sorts them by descending score. Equal scores
// keep their input order.
func (r *Reranker) Rerank(query string, candidates []string) []Result {
	q := newQueryTerms(query)
	results := make([]Result, len(candidates))
	for i, c := range candidates {
		results[i] = Result{Text: c, Score: r.score(q, strings.ToLower(c))}
	}
	slices.SortStableFunc(results, func(a, b Result) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return results
}

type queryTerms struct {
	tokens []string
	set    map[string]struct{}
}

func newQueryTerms(query string) queryTerms {
	tokens := core.Tokenize(query)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return queryTerms{tokens: tokens, set: set}
}

func (q queryTerms) hasAny(words []string) bool {
	for _, w := range words {
		if _, ok := q.set[w]; ok {
			return true
		}
	}
	return false
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func (r *Reranker) score(q queryTerms, lower string) float64 {
	var score float64

	for _, c := range r.categories {
		if q.hasAny(c.Triggers) && containsAny(lower, c.Vocabulary) {
			score += c.Bonus
		}
	}

	for i := 0; i+1 < len(q.tokens); i++ {
		if strings.Contains(lower, q.tokens[i]+" "+q.tokens[i+1]) {
			score += twoWordPhraseBonus
		}
		if i+2 < len(q.tokens) && strings.Contains(lower, q.tokens[i]+" "+q.tokens[i+1]+" "+q.tokens[i+2]) {
			score += threeWordPhraseBonus
		}
	}

	for t := range q.set {
		if len([]rune(t)) >= minBonusTokenLength && strings.Contains(lower, t) {
			score += queryTokenBonus
		}
	}

	if q.hasAny(currencyTriggers) && (containsAny(lower, currencyMarkers) || containsAny(lower, r.recentYears)) {
		score += recencyBonus
	}

	return score
}
