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


package corpus

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/folio/core"
)

//go:embed portfolio.toml
var defaultCorpus []byte

// Fallback persona messages used when the corpus file leaves them empty.
const (
	defaultNoInfoMessage       = "I don't have information about that yet."
	defaultInsufficientMessage = "I couldn't find anything relevant to that question."
	defaultNotReadyMessage     = "I'm still getting ready. Please try again in a moment."
)

// Knowledge is a decoded corpus file.
type Knowledge struct {
	Documents []core.Document
	Persona   core.Persona
	FAQ       []core.CannedAnswer
}

// Fingerprint identifies the document set; see core.Fingerprint.
func (k *Knowledge) Fingerprint() core.ID {
	return core.Fingerprint(k.Documents)
}

type file struct {
	Persona   personaFile    `toml:"persona"`
	FAQ       []faqFile      `toml:"faq"`
	Documents []documentFile `toml:"documents"`
}

type personaFile struct {
	Subject             string       `toml:"subject"`
	FirstName           string       `toml:"first_name"`
	SystemPrompt        string       `toml:"system_prompt"`
	Greetings           []string     `toml:"greetings"`
	ContentIndicators   []string     `toml:"content_indicators"`
	NoInfoMessage       string       `toml:"no_info_message"`
	InsufficientMessage string       `toml:"insufficient_message"`
	NotReadyMessage     string       `toml:"not_ready_message"`
	Pronouns            pronounsFile `toml:"pronouns"`
}

type pronounsFile struct {
	Subject    string `toml:"subject"`
	Object     string `toml:"object"`
	Possessive string `toml:"possessive"`
	Reflexive  string `toml:"reflexive"`
}

type faqFile struct {
	Category  string   `toml:"category"`
	Examples  []string `toml:"examples"`
	Responses []string `toml:"responses"`
}

type documentFile struct {
	ID       string         `toml:"id"`
	Text     string         `toml:"text"`
	Metadata map[string]any `toml:"metadata"`
}

// Default returns the corpus compiled into the binary.
func Default() (*Knowledge, error) {
	return Load(defaultCorpus)
}

// LoadFile reads and decodes a corpus file from disk.
func LoadFile(path string) (*Knowledge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Load decodes a TOML corpus. Documents without keywords get extracted ones,
// keywords are lowercased, and the persona and documents are validated.
func Load(data []byte) (*Knowledge, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(f.Documents) == 0 {
		return nil, ErrNoDocuments
	}

	k := &Knowledge{
		Persona:   toPersona(f.Persona),
		Documents: make([]core.Document, 0, len(f.Documents)),
	}
	if err := core.ValidatePersona(&k.Persona); err != nil {
		return nil, err
	}

	for _, d := range f.Documents {
		doc := toDocument(d)
		if len(doc.Metadata.Keywords) == 0 {
			doc.Metadata.Keywords = ExtractKeywords(doc.Text, DefaultMaxKeywords)
		}
		k.Documents = append(k.Documents, doc)
	}
	if err := core.ValidateCorpus(k.Documents); err != nil {
		return nil, err
	}

	for i, entry := range f.FAQ {
		if entry.Category == "" || len(entry.Examples) == 0 || len(entry.Responses) == 0 {
			return nil, fmt.Errorf("%w: entry %d (%q)", ErrInvalidFAQ, i, entry.Category)
		}
		k.FAQ = append(k.FAQ, core.CannedAnswer{
			Category:  entry.Category,
			Examples:  entry.Examples,
			Responses: entry.Responses,
		})
	}

	slog.Default().With("component", "corpus").Debug("corpus loaded",
		"documents", len(k.Documents), "faq", len(k.FAQ), "subject", k.Persona.Subject)
	return k, nil
}

func toPersona(p personaFile) core.Persona {
	persona := core.Persona{
		Subject:   strings.TrimSpace(p.Subject),
		FirstName: strings.TrimSpace(p.FirstName),
		Pronouns: core.Pronouns{
			Subject:    strings.ToLower(p.Pronouns.Subject),
			Object:     strings.ToLower(p.Pronouns.Object),
			Possessive: strings.ToLower(p.Pronouns.Possessive),
			Reflexive:  strings.ToLower(p.Pronouns.Reflexive),
		},
		SystemPrompt:        strings.TrimSpace(p.SystemPrompt),
		Greetings:           p.Greetings,
		NoInfoMessage:       orDefault(p.NoInfoMessage, defaultNoInfoMessage),
		InsufficientMessage: orDefault(p.InsufficientMessage, defaultInsufficientMessage),
		NotReadyMessage:     orDefault(p.NotReadyMessage, defaultNotReadyMessage),
	}
	if persona.FirstName == "" {
		if fields := strings.Fields(persona.Subject); len(fields) > 0 {
			persona.FirstName = fields[0]
		}
	}
	if persona.Pronouns.Reflexive == "" && persona.Pronouns.Object != "" {
		persona.Pronouns.Reflexive = persona.Pronouns.Object + "self"
	}
	for _, word := range p.ContentIndicators {
		persona.ContentIndicators = append(persona.ContentIndicators, strings.ToLower(word))
	}
	return persona
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

var knownMetadata = map[string]struct{}{
	"category": {}, "keywords": {}, "priority": {}, "date": {}, "recency": {},
}

func toDocument(d documentFile) core.Document {
	doc := core.Document{
		ID:   strings.TrimSpace(d.ID),
		Text: strings.TrimSpace(d.Text),
	}
	m := d.Metadata
	doc.Metadata.Category = strings.ToLower(stringValue(m["category"]))
	doc.Metadata.Priority = stringValue(m["priority"])
	doc.Metadata.Date = stringValue(m["date"])
	doc.Metadata.Recency = stringValue(m["recency"])
	if kws, ok := m["keywords"].([]any); ok {
		for _, kw := range kws {
			if s := strings.ToLower(strings.TrimSpace(stringValue(kw))); s != "" {
				doc.Metadata.Keywords = append(doc.Metadata.Keywords, s)
			}
		}
	}

	extra := make(map[string]string)
	for key, value := range m {
		if _, known := knownMetadata[key]; known {
			continue
		}
		flatten(extra, key, value)
	}
	if len(extra) > 0 {
		doc.Metadata.Extra = extra
	}
	return doc
}

// flatten writes value under key, descending into tables with dotted keys
// and joining arrays with ", ".
func flatten(out map[string]string, key string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(out, key+"."+k, v[k])
		}
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, stringValue(item))
		}
		out[key] = strings.Join(parts, ", ")
	default:
		out[key] = stringValue(v)
	}
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
