package respond

import (
	"strings"
	"unicode/utf8"

	"github.com/poiesic/folio/core"
)

const (
	// MinReplyLength is the shortest acceptable answer, in characters.
	MinReplyLength = 20
	// MinReplyWords is the fewest words an acceptable answer may have.
	MinReplyWords = 10
)

var refusalPhrases = []string{
	"i don't have enough",
	"i do not have enough",
	"i cannot",
	"i can't",
	"i'm sorry",
	"i apologize",
	"as an ai",
	"context doesn't",
	"context does not",
	"no information",
	"not enough information",
	"cannot answer",
	"unable to answer",
	"don't know",
}

// IsRefusal reports whether text declines to answer or apologizes.
func IsRefusal(text string) bool {
	return containsAny(strings.ToLower(strings.ReplaceAll(text, "’", "'")), refusalPhrases)
}

// Valid reports whether text is a usable answer about the persona: long
// enough, not a refusal, and mentioning at least one content indicator.
// The subject's first name and pronouns always count as indicators.
func Valid(text string, persona *core.Persona) bool {
	if utf8.RuneCountInString(text) < MinReplyLength {
		return false
	}
	if len(strings.Fields(text)) < MinReplyWords {
		return false
	}
	if IsRefusal(text) {
		return false
	}

	tokens := core.TokenSet(text)
	for _, indicator := range indicators(persona) {
		if _, ok := tokens[indicator]; ok {
			return true
		}
	}
	return false
}

func indicators(p *core.Persona) []string {
	out := make([]string, 0, len(p.ContentIndicators)+4)
	for _, s := range append([]string{p.FirstName, p.Pronouns.Subject, p.Pronouns.Object, p.Pronouns.Possessive}, p.ContentIndicators...) {
		out = append(out, core.Tokenize(s)...)
	}
	return out
}
