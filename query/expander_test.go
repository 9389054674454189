package query

import (
	"testing"

	"github.com/poiesic/folio/core"
	"github.com/stretchr/testify/assert"
)

func turns(pairs ...string) []core.Turn {
	out := make([]core.Turn, 0, len(pairs))
	for i, content := range pairs {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		out = append(out, core.Turn{Role: role, Content: content})
	}
	return out
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		history []core.Turn
		want    string
	}{
		{
			name:  "no trigger",
			query: "Tell me about Ravi",
			want:  "Tell me about Ravi",
		},
		{
			name:  "single trigger",
			query: "Which company?",
			want:  "Which company? employer organization firm",
		},
		{
			name:  "terms are capped across triggers",
			query: "best work project",
			want:  "best work project best project greatest achievement top accomplishment",
		},
		{
			name:  "skill trigger matches inside skills",
			query: "his skills",
			want:  "his skills expertise technology knowledge",
		},
		{
			name:  "reputation words",
			query: "Is it a prestigious place?",
			want:  "Is it a prestigious place? company employer organization",
		},
		{
			name:  "work fallback",
			query: "Where does he work?",
			want:  "Where does he work? project achievement accomplishment",
		},
		{
			name:  "what fallback",
			query: "What hobbies?",
			want:  "What hobbies? details information about",
		},
		{
			name:  "both fallbacks are capped",
			query: "what work",
			want:  "what work project achievement accomplishment",
		},
		{
			name:    "pronoun pulls in the previous question",
			query:   "Where can I read it?",
			history: turns("What did he research for his thesis?", "He studied sentiment analysis."),
			want:    "What did he research for his thesis? Where can I read it? details information about",
		},
		{
			name:    "pronoun needs two turns of history",
			query:   "Where can I read it?",
			history: turns("What did he research for his thesis?"),
			want:    "Where can I read it?",
		},
		{
			name:    "pronoun must be a whole word",
			query:   "Iterate on items",
			history: turns("first", "second"),
			want:    "Iterate on items",
		},
		{
			name:    "latest user turn wins",
			query:   "And there?",
			history: turns("Did he work at Tata?", "Yes.", "What about Mindtree?", "Also yes."),
			want:    "What about Mindtree? And there? details information about",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(tt.query, tt.history))
		})
	}
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		query string
		want  Intent
	}{
		{"Which company does he work for?", IntentWork},
		{"What is his best project?", IntentProjects},
		{"What technologies does he know?", IntentSkills},
		{"Where did he study?", IntentEducation},
		{"How can I reach him by email?", IntentContact},
		{"Does he like cricket?", IntentGeneral},
		{"What was his role on the project?", IntentWork},
		{"What is his experience?", IntentSkills},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(tt.query))
		})
	}
}
