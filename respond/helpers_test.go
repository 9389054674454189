package respond

import "github.com/poiesic/folio/core"

func testPersona() *core.Persona {
	return &core.Persona{
		Subject:   "Ravi Menon",
		FirstName: "Ravi",
		Pronouns: core.Pronouns{
			Subject:    "he",
			Object:     "him",
			Possessive: "his",
			Reflexive:  "himself",
		},
		SystemPrompt:        "You answer questions about Ravi Menon in the third person.",
		Greetings:           []string{"Hi! Ask me about Ravi.", "Hello! I can tell you about Ravi's work."},
		ContentIndicators:   []string{"software", "developer", "project", "work"},
		NoInfoMessage:       "I don't have details on that yet.",
		InsufficientMessage: "I couldn't find anything about that.",
		NotReadyMessage:     "Still getting ready.",
	}
}
