package corpus

import "errors"

var (
	// ErrNoDocuments is returned when a corpus file holds no documents.
	ErrNoDocuments = errors.New("corpus has no documents")

	// ErrInvalidFAQ is returned when a FAQ entry lacks a category, examples or responses.
	ErrInvalidFAQ = errors.New("invalid faq entry")

	// ErrDecode wraps TOML decoding failures.
	ErrDecode = errors.New("corpus decode failed")
)
