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


package query

import (
	"strings"

	"github.com/poiesic/folio/core"
)

// MaxExpansionTerms caps how many terms Expand appends.
const MaxExpansionTerms = 3

// minHistoryTurns is how much history pronoun resolution needs.
const minHistoryTurns = 2

var pronouns = map[string]struct{}{
	"it": {}, "that": {}, "he": {}, "his": {}, "she": {},
	"her": {}, "they": {}, "them": {}, "there": {},
}

type expansion struct {
	trigger string
	terms   []string
}

// expansions is checked in order; triggers match as substrings of the
// lowercased query.
var expansions = []expansion{
	{"best work", []string{"best project", "greatest achievement", "top accomplishment", "notable work", "significant project"}},
	{"project", []string{"work", "application", "system", "platform", "solution"}},
	{"company", []string{"employer", "organization", "firm", "corporation", "workplace", "acer", "mindtree", "tata"}},
	{"job", []string{"role", "position", "work", "employment", "career"}},
	{"skill", []string{"expertise", "technology", "knowledge", "ability", "proficiency"}},
	{"experience", []string{"background", "history", "career", "work history"}},
	{"education", []string{"degree", "study", "academic", "university", "college"}},
}

var (
	reputationWords = []string{"reputation", "reputated", "prestigious", "famous", "well-known"}
	reputationTerms = []string{"company", "employer", "organization"}

	workFallback = []string{"project", "achievement", "accomplishment"}
	whatFallback = []string{"details", "information", "about"}
)

// Expand rewrites query for retrieval. When history holds at least two turns
// and query contains a bare pronoun, the most recent user turn is prepended.
// Synonyms of every matching trigger are then collected and the first
// MaxExpansionTerms of them appended. A query nothing applies to is returned
// unchanged.
func Expand(query string, history []core.Turn) string {
	if len(history) >= minHistoryTurns && hasPronoun(query) {
		if last, ok := lastUserTurn(history); ok {
			query = last + " " + query
		}
	}

	lower := strings.ToLower(query)
	var terms []string
	for _, e := range expansions {
		if strings.Contains(lower, e.trigger) {
			terms = append(terms, e.terms...)
		}
	}
	if containsAny(lower, reputationWords) {
		terms = append(terms, reputationTerms...)
	}
	if len(terms) == 0 {
		if strings.Contains(lower, "work") {
			terms = append(terms, workFallback...)
		}
		if strings.Contains(lower, "what") {
			terms = append(terms, whatFallback...)
		}
	}

	if len(terms) == 0 {
		return query
	}
	if len(terms) > MaxExpansionTerms {
		terms = terms[:MaxExpansionTerms]
	}
	return query + " " + strings.Join(terms, " ")
}

func hasPronoun(query string) bool {
	for _, t := range core.Tokenize(query) {
		if _, ok := pronouns[t]; ok {
			return true
		}
	}
	return false
}

func lastUserTurn(history []core.Turn) (string, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == core.RoleUser {
			return history[i].Content, true
		}
	}
	return "", false
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
