package respond

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/folio/core"
	"github.com/stretchr/testify/assert"
)

func TestThirdPerson(t *testing.T) {
	he := testPersona().Pronouns

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"i am", "I am a developer.", "He is a developer."},
		{"i have", "I have four years of experience.", "He has four years of experience."},
		{"i was", "Before that I was at Mindtree.", "Before that he was at Mindtree."},
		{"contractions", "I'm building tools and I've shipped two apps.", "He's building tools and he's shipped two apps."},
		{"will and would", "I'll explain. I'd say yes.", "He'll explain. He'd say yes."},
		{"known verb", "I work at Acer and I built a chatbot.", "He works at Acer and he built a chatbot."},
		{"possessives", "My thesis was about search. It made me proud of myself.", "His thesis was about search. It made him proud of himself."},
		{"mine", "That laptop is mine.", "That laptop is his."},
		{"untouched", "Ravi leads the team at Internet Inc.", "Ravi leads the team at Internet Inc."},
		{"capitalizes sentences", "ravi works at Acer. he likes it!", "Ravi works at Acer. He likes it!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ThirdPerson(tt.in, he))
		})
	}

	t.Run("other pronouns", func(t *testing.T) {
		she := core.Pronouns{Subject: "she", Object: "her", Possessive: "her", Reflexive: "herself"}
		assert.Equal(t, "She leads her team.", ThirdPerson("I lead my team.", she))
	})
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"think block", "<think>plan the answer</think>He works at Acer.", "He works at Acer."},
		{"dangling think close", "Reasoning about it </think> He works at Acer.", "He works at Acer."},
		{"template tokens", "<|assistant|>He works at Acer.<|eot_id|></s>", "He works at Acer."},
		{"citations", "He built a chatbot [1] that cut response times [Context 2].", "He built a chatbot that cut response times."},
		{
			"reasoning markers",
			"Let me think about this: the user wants his job. Final answer: He works at Acer America as a developer.",
			"He works at Acer America as a developer.",
		},
		{
			"thinking lines",
			"What is the person asking?\n1. His job\n2. His employer\nHe works at Acer America.",
			"He works at Acer America.",
		},
		{"filler sentence", "He works at Acer America. Feel free to ask about his projects!", "He works at Acer America."},
		{"only filler", "Hope this helps!", "Hope this helps!"},
		{"whitespace", "  He works\n\n at   Acer.  ", "He works at Acer."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestValid(t *testing.T) {
	persona := testPersona()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"good answer", "He builds scalable web applications and integrates AI features into products.", true},
		{"names the subject", "Ravi spent two years shipping Spring Boot services at Mindtree in Bangalore.", true},
		{"too short", "He works.", false},
		{"too few words", "He works at Acer America nowadays, happily.", false},
		{"refusal", "I'm sorry, but I don't know where he works right now at all.", false},
		{"curly apostrophe refusal", "I’m sorry, the context has nothing about where he works these days.", false},
		{"no indicator", "The quick brown fox jumps over the lazy dog near the river bank.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.text, persona))
		})
	}
}

func TestFallback(t *testing.T) {
	persona := testPersona()

	t.Run("no contexts", func(t *testing.T) {
		assert.Equal(t, persona.NoInfoMessage, Fallback("anything", nil, persona))
	})

	t.Run("first context sharing a query token", func(t *testing.T) {
		contexts := []string{"Ravi works at Acer.", "His thesis studied hybrid search.", "He likes chess."}
		assert.Equal(t, "His thesis studied hybrid search.", Fallback("Tell me about the thesis", contexts, persona))
	})

	t.Run("only the top three are considered", func(t *testing.T) {
		contexts := []string{"Ravi works at Acer America.", "Chess.", "Hiking.", "His thesis studied hybrid search."}
		assert.Equal(t, "Ravi works at Acer America.", Fallback("thesis", contexts, persona))
	})

	t.Run("fragment gets the name", func(t *testing.T) {
		contexts := []string{"Built a GPT-4 support assistant at Acer."}
		assert.Equal(t, "Ravi built a GPT-4 support assistant at Acer.", Fallback("xyz", contexts, persona))
	})

	t.Run("first person passage is rewritten", func(t *testing.T) {
		contexts := []string{"I led a team of five engineers."}
		assert.Equal(t, "He led a team of five engineers.", Fallback("team", contexts, persona))
	})

	t.Run("long passages are truncated", func(t *testing.T) {
		long := strings.Repeat("Ravi shipped another service. ", 20)
		got := Fallback("service", []string{long}, persona)
		assert.Equal(t, 300, utf8.RuneCountInString(got))
		assert.True(t, strings.HasPrefix(got, "Ravi shipped another service."))
	})
}

func TestFormatContexts(t *testing.T) {
	assert.Equal(t, noContext, FormatContexts(nil, 5))
	assert.Equal(t, "[Context 1]\na\n\n[Context 2]\nb", FormatContexts([]string{" a ", "b", "c"}, 2))
}
