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


package core

import (
	"fmt"
	"strings"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Text must not be blank
//
// NOT validated:
//   - Keywords (may be empty; the corpus loader extracts them)
//   - Category (uncategorized documents are still searchable)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if strings.TrimSpace(doc.ID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyID)
	}

	if strings.TrimSpace(doc.Text) == "" {
		return fmt.Errorf("%w: %w (id %q)", ErrInvalidDocument, ErrEmptyText, doc.ID)
	}

	return nil
}

// ValidateCorpus validates every document and rejects duplicate IDs.
func ValidateCorpus(docs []Document) error {
	seen := make(map[string]struct{}, len(docs))
	for i := range docs {
		if err := ValidateDocument(&docs[i]); err != nil {
			return err
		}
		if _, dup := seen[docs[i].ID]; dup {
			return fmt.Errorf("%w: %w %q", ErrInvalidDocument, ErrDuplicateID, docs[i].ID)
		}
		seen[docs[i].ID] = struct{}{}
	}
	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: value %q", ErrInvalidRole, role)
	}
	return nil
}

// ValidateTurn validates a conversation Turn.
func ValidateTurn(turn Turn) error {
	if err := ValidateRole(turn.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, err)
	}
	return nil
}

// ValidatePersona checks the fields the assistant cannot work without.
func ValidatePersona(p *Persona) error {
	if p == nil {
		return fmt.Errorf("%w: persona is nil", ErrInvalidPersona)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidPersona)
	}
	if p.Pronouns.Subject == "" || p.Pronouns.Possessive == "" || p.Pronouns.Object == "" {
		return fmt.Errorf("%w: pronouns are required", ErrInvalidPersona)
	}
	if p.SystemPrompt == "" {
		return fmt.Errorf("%w: system prompt is required", ErrInvalidPersona)
	}
	return nil
}
