package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/folio/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalCorpus = `
[persona]
subject = "Dana Cole"
system_prompt = "Answer in the third person."
[persona.pronouns]
subject = "She"
object = "her"
possessive = "her"

[[faq]]
category = "skills"
examples = ["What are her skills?"]
responses = ["Dana writes Go and Rust."]

[[documents]]
id = "one"
text = "  Dana builds distributed storage systems in Go and Rust.  "
[documents.metadata]
category = "Skills"
keywords = ["Go", "Rust", " storage "]
company = "Example Corp"
technologies = ["Go", "Rust"]
[documents.metadata.links]
github = "https://github.example.com/dana"

[[documents]]
id = "two"
text = "Dana studied storage systems and storage engines at university; storage remains her focus."
`

func TestLoad(t *testing.T) {
	k, err := Load([]byte(minimalCorpus))
	require.NoError(t, err)

	t.Run("persona defaults", func(t *testing.T) {
		assert.Equal(t, "Dana Cole", k.Persona.Subject)
		assert.Equal(t, "Dana", k.Persona.FirstName)
		assert.Equal(t, "she", k.Persona.Pronouns.Subject)
		assert.Equal(t, "herself", k.Persona.Pronouns.Reflexive)
		assert.Equal(t, defaultNotReadyMessage, k.Persona.NotReadyMessage)
	})

	t.Run("documents", func(t *testing.T) {
		require.Len(t, k.Documents, 2)
		doc := k.Documents[0]
		assert.Equal(t, "one", doc.ID)
		assert.Equal(t, "Dana builds distributed storage systems in Go and Rust.", doc.Text)
		assert.Equal(t, "skills", doc.Metadata.Category)
		assert.Equal(t, []string{"go", "rust", "storage"}, doc.Metadata.Keywords)
		assert.Equal(t, "Example Corp", doc.Metadata.Extra["company"])
		assert.Equal(t, "Go, Rust", doc.Metadata.Extra["technologies"])
		assert.Equal(t, "https://github.example.com/dana", doc.Metadata.Extra["links.github"])
	})

	t.Run("missing keywords are extracted", func(t *testing.T) {
		doc := k.Documents[1]
		require.NotEmpty(t, doc.Metadata.Keywords)
		assert.Equal(t, "storage", doc.Metadata.Keywords[0])
		assert.NotContains(t, doc.Metadata.Keywords, "her")
		assert.Nil(t, doc.Metadata.Extra)
	})

	t.Run("faq", func(t *testing.T) {
		require.Len(t, k.FAQ, 1)
		assert.Equal(t, core.CannedAnswer{
			Category:  "skills",
			Examples:  []string{"What are her skills?"},
			Responses: []string{"Dana writes Go and Rust."},
		}, k.FAQ[0])
	})
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "malformed toml",
			data:    "[[documents]\nid=",
			wantErr: ErrDecode,
		},
		{
			name:    "no documents",
			data:    "[persona]\nsubject = \"x\"\n",
			wantErr: ErrNoDocuments,
		},
		{
			name: "persona without pronouns",
			data: `[persona]
subject = "x"
system_prompt = "y"
[[documents]]
id = "a"
text = "b"`,
			wantErr: core.ErrInvalidPersona,
		},
		{
			name: "duplicate ids",
			data: `[persona]
subject = "x"
system_prompt = "y"
[persona.pronouns]
subject = "he"
object = "him"
possessive = "his"
[[documents]]
id = "a"
text = "b"
[[documents]]
id = "a"
text = "c"`,
			wantErr: core.ErrDuplicateID,
		},
		{
			name: "faq without responses",
			data: `[persona]
subject = "x"
system_prompt = "y"
[persona.pronouns]
subject = "he"
object = "him"
possessive = "his"
[[faq]]
category = "skills"
examples = ["q"]
[[documents]]
id = "a"
text = "b"`,
			wantErr: ErrInvalidFAQ,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.data))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.toml")
	require.NoError(t, os.WriteFile(path, []byte(minimalCorpus), 0o644))

	k, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, k.Documents, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	k, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Ravi Menon", k.Persona.Subject)
	assert.NotEmpty(t, k.Persona.Greetings)
	assert.Len(t, k.FAQ, 5)
	assert.GreaterOrEqual(t, len(k.Documents), 20)

	ids := make(map[string]bool)
	for _, doc := range k.Documents {
		ids[doc.ID] = true
		assert.NotEmpty(t, doc.Metadata.Keywords, doc.ID)
	}
	assert.True(t, ids["experience_acer_overview"])
	assert.True(t, ids["research_masters_thesis"])
	assert.Equal(t, k.Fingerprint(), core.Fingerprint(k.Documents))
}

func TestExtractKeywords(t *testing.T) {
	t.Run("frequency then first occurrence", func(t *testing.T) {
		got := ExtractKeywords("react apps and react hooks with node and node servers", 3)
		assert.Equal(t, []string{"react", "node", "apps"}, got)
	})

	t.Run("drops stop words and short tokens", func(t *testing.T) {
		got := ExtractKeywords("He is at it on AI ML and his work", 10)
		assert.Equal(t, []string{"work"}, got)
	})

	t.Run("zero max", func(t *testing.T) {
		assert.Nil(t, ExtractKeywords("anything at all", 0))
	})
}
