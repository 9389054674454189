package respond

import (
	"strings"

	"github.com/poiesic/folio/core"
)

// maxShortGreeting is the length under which "hey you" style input still
// counts as a greeting.
const maxShortGreeting = 15

var pureGreetings = map[string]struct{}{
	"hi":             {},
	"hello":          {},
	"hey":            {},
	"greetings":      {},
	"good morning":   {},
	"good afternoon": {},
	"good evening":   {},
	"hi there":       {},
	"hello there":    {},
	"hey there":      {},
}

var greetingWords = map[string]struct{}{"hi": {}, "hello": {}, "hey": {}}

var questionWords = map[string]struct{}{
	"what": {}, "where": {}, "when": {}, "who": {}, "why": {}, "how": {}, "which": {},
	"does": {}, "did": {}, "is": {}, "are": {}, "can": {}, "tell": {},
}

// IsGreeting reports whether query is a greeting rather than a question.
// Addressing the persona by first or full name ("hello Ravi") still counts.
func IsGreeting(query string, persona *core.Persona) bool {
	clean := strings.TrimRight(strings.ToLower(strings.TrimSpace(query)), "!.,? ")
	if clean == "" {
		return false
	}
	if _, ok := pureGreetings[clean]; ok {
		return true
	}

	tokens := core.Tokenize(clean)
	if len(tokens) == 0 {
		return false
	}
	if _, ok := greetingWords[tokens[0]]; !ok {
		return false
	}

	if persona != nil {
		rest := strings.Join(tokens[1:], " ")
		for _, name := range []string{persona.FirstName, persona.Subject} {
			if name != "" && rest == strings.Join(core.Tokenize(name), " ") {
				return true
			}
		}
	}

	if len([]rune(clean)) >= maxShortGreeting {
		return false
	}
	for _, t := range tokens[1:] {
		if _, ok := questionWords[t]; ok {
			return false
		}
	}
	return true
}
