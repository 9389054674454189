package respond

import (
	"regexp"
	"strings"
)

// minMarkerTail is the shortest text after a reasoning marker that is taken
// as the real answer.
const minMarkerTail = 20

var (
	thinkBlock    = regexp.MustCompile(`(?is)<think>.*?</think>`)
	templateToken = regexp.MustCompile(`<\|[^|>]*\|>|</?s>|\[/?INST\]`)
	citation      = regexp.MustCompile(`(?i)\s*\[(?:context\s*)?\d+\]`)
	numbered      = regexp.MustCompile(`^(?:\d+[.)]|[-•*])\s*`)
	sentence      = regexp.MustCompile(`[^.!?]+(?:[.!?]+|$)`)
)

var reasoningMarkers = []string{
	"Think through this step by step:",
	"Let me think about this:",
	"Now let me answer:",
	"Here's my answer:",
	"Final answer:",
	"ANSWER:",
	"Answer:",
	"REASONING PROCESS:",
	"Based on the context,",
	"According to the context,",
	"The context shows that",
	"From the context,",
}

var thinkingLines = []string{
	"what is the person",
	"what relevant",
	"how can i",
	"step by step",
	"let me think",
	"thinking process",
}

var fillerPhrases = []string{
	"happy to share",
	"feel free to ask",
	"hope this helps",
	"hope this gives you",
	"that's a snapshot of",
	"notable accomplishments",
	"in addition to that",
	"if you have any more questions",
	"let me know if",
	"game-changer",
}

// Clean strips model artifacts from a completion and collapses whitespace.
// It does not change grammatical person.
func Clean(text string) string {
	text = stripThinking(text)
	text = templateToken.ReplaceAllString(text, " ")
	text = citation.ReplaceAllString(text, "")
	text = stripMarkers(text)
	text = stripThinkingLines(text)
	text = dropFiller(text)
	return strings.Join(strings.Fields(text), " ")
}

func stripThinking(text string) string {
	text = thinkBlock.ReplaceAllString(text, "")
	if i := strings.LastIndex(strings.ToLower(text), "</think>"); i >= 0 {
		text = text[i+len("</think>"):]
	}
	if i := strings.Index(strings.ToLower(text), "<think>"); i >= 0 {
		text = text[:i]
	}
	return text
}

// stripMarkers keeps the last segment after a reasoning marker that is long
// enough to be an answer.
func stripMarkers(text string) string {
	for _, marker := range reasoningMarkers {
		if !strings.Contains(text, marker) {
			continue
		}
		parts := strings.Split(text, marker)
		for i := len(parts) - 1; i >= 0; i-- {
			if len(strings.TrimSpace(parts[i])) > minMarkerTail {
				text = strings.TrimSpace(parts[i])
				break
			}
		}
	}
	return text
}

func stripThinkingLines(text string) string {
	var kept []string
	skipping := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		if containsAny(lower, thinkingLines) {
			skipping = true
			continue
		}
		isList := numbered.MatchString(line)
		if skipping && (isList || line == "") {
			continue
		}
		if line != "" && !isList {
			skipping = false
		}
		if line != "" && !skipping {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}

// dropFiller removes sentences containing boilerplate phrases. Text made
// only of filler is returned unchanged.
func dropFiller(text string) string {
	if !containsAny(strings.ToLower(text), fillerPhrases) {
		return text
	}
	var kept []string
	for _, s := range sentence.FindAllString(text, -1) {
		if !containsAny(strings.ToLower(s), fillerPhrases) {
			kept = append(kept, strings.TrimSpace(s))
		}
	}
	if len(kept) == 0 {
		return text
	}
	return strings.Join(kept, " ")
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
