package respond

import (
	"fmt"
	"strings"

	"github.com/poiesic/folio/ai"
	"github.com/poiesic/folio/core"
)

const noContext = "No specific context available."

// FormatContexts numbers up to limit passages as "[Context i]" blocks
// separated by blank lines.
func FormatContexts(contexts []string, limit int) string {
	if limit > 0 && len(contexts) > limit {
		contexts = contexts[:limit]
	}
	parts := make([]string, 0, len(contexts))
	for i, c := range contexts {
		parts = append(parts, fmt.Sprintf("[Context %d]\n%s", i+1, strings.TrimSpace(c)))
	}
	if len(parts) == 0 {
		return noContext
	}
	return strings.Join(parts, "\n\n")
}

// BuildMessages assembles the completion request: the persona system prompt,
// prior turns, then the question with its passages.
func BuildMessages(persona *core.Persona, query string, contexts []string, history []core.Turn, maxContexts int) []ai.Message {
	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: strings.TrimSpace(persona.SystemPrompt)})

	for _, turn := range history {
		role := ai.RoleUser
		if turn.Role == core.RoleAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Content: turn.Content})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Context about %s:\n%s\n\n", persona.Subject, FormatContexts(contexts, maxContexts))
	fmt.Fprintf(&b, "Question: %s\n\n", strings.TrimSpace(query))
	fmt.Fprintf(&b, "Answer in two or three short sentences. Refer to %s as %s.", persona.FirstName, persona.Pronouns.Subject)
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: b.String()})
	return messages
}
