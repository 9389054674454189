package core

import (
	"encoding/binary"
	"slices"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Fingerprint identifies a corpus revision. Any change to a document id, text,
// category or keyword list, or to document order, yields a different value.
func Fingerprint(docs []Document) ID {
	h, _ := blake2b.New(8, nil)
	for _, doc := range docs {
		h.Write([]byte(doc.ID))
		h.Write([]byte{0})
		h.Write([]byte(doc.Text))
		h.Write([]byte{0})
		h.Write([]byte(doc.Metadata.Category))
		for _, kw := range doc.Metadata.Keywords {
			h.Write([]byte{1})
			h.Write([]byte(kw))
		}
		h.Write([]byte{2})
	}
	return ID(binary.LittleEndian.Uint64(h.Sum(nil)))
}

// Metadata describes a Document. Free-form attributes that have no dedicated
// field are kept in Extra with dotted keys for nested values.
type Metadata struct {
	Category string
	Keywords []string
	Priority string
	Date     string
	Recency  string
	Extra    map[string]string
}

// Document is a single retrievable passage of the knowledge corpus.
// Documents are immutable once indexed.
type Document struct {
	ID       string
	Text     string
	Metadata Metadata
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	out.Metadata.Keywords = slices.Clone(d.Metadata.Keywords)
	if d.Metadata.Extra != nil {
		out.Metadata.Extra = make(map[string]string, len(d.Metadata.Extra))
		for k, v := range d.Metadata.Extra {
			out.Metadata.Extra[k] = v
		}
	}
	return out
}

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser is a message typed by the visitor.
	RoleUser Role = "user"
	// RoleAssistant is a reply produced by the assistant.
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role    Role
	Content string
}

// Pronouns holds the grammatical forms used when writing about the subject.
type Pronouns struct {
	Subject    string // he
	Object     string // him
	Possessive string // his
	Reflexive  string // himself
}

// Persona carries everything the assistant needs to speak about its subject.
// It is loaded together with the corpus.
type Persona struct {
	// Subject is the full name of the person the corpus describes.
	Subject string
	// FirstName is used in greetings and to prefix short fallback answers.
	FirstName string
	Pronouns  Pronouns

	SystemPrompt      string
	Greetings         []string
	ContentIndicators []string

	NoInfoMessage       string
	InsufficientMessage string
	NotReadyMessage     string
}

// CannedAnswer is a curated FAQ entry: example phrasings of a common question
// and interchangeable responses to it.
type CannedAnswer struct {
	Category  string
	Examples  []string
	Responses []string
}
