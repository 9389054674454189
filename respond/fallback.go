package respond

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/folio/core"
)

const (
	fallbackCandidates = 3
	maxFallbackLength  = 300
	// maxFragmentLength is the length under which a single sentence gets
	// the subject's name prefixed.
	maxFragmentLength = 100
)

// Fallback answers from the passages alone. It picks the first of the top
// passages that shares a token with the query, or the top passage, and
// rewrites it in the third person.
func Fallback(query string, contexts []string, persona *core.Persona) string {
	if len(contexts) == 0 {
		return persona.NoInfoMessage
	}

	best := contexts[0]
	queryTokens := core.TokenSet(query)
	for _, c := range contexts[:min(fallbackCandidates, len(contexts))] {
		if sharesToken(queryTokens, c) {
			best = c
			break
		}
	}

	reply := ThirdPerson(strings.TrimSpace(best), persona.Pronouns)
	if isFragment(reply) && !namesSubject(reply, persona) && persona.FirstName != "" {
		reply = persona.FirstName + " " + lowerFirst(reply)
	}
	return truncateRunes(reply, maxFallbackLength)
}

func sharesToken(set map[string]struct{}, text string) bool {
	for _, t := range core.Tokenize(text) {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

func isFragment(text string) bool {
	if utf8.RuneCountInString(text) >= maxFragmentLength {
		return false
	}
	count := 0
	for _, s := range sentence.FindAllString(text, -1) {
		if strings.TrimSpace(s) != "" {
			count++
		}
	}
	return count <= 1
}

// namesSubject reports whether text already opens with the subject's name
// or a pronoun for them.
func namesSubject(text string, p *core.Persona) bool {
	tokens := core.Tokenize(text)
	if len(tokens) == 0 {
		return true
	}
	first := tokens[0]
	for _, candidate := range []string{p.FirstName, p.Subject, p.Pronouns.Subject, p.Pronouns.Possessive} {
		names := core.Tokenize(candidate)
		if len(names) > 0 && names[0] == first {
			return true
		}
	}
	return false
}

// lowerFirst lowercases a leading capital unless it starts an acronym.
func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	next, _ := utf8.DecodeRuneInString(s[size:])
	if unicode.IsUpper(next) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
