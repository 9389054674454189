package chat

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/query"
	"github.com/poiesic/folio/respond"
)

// Source tells which step of the pipeline produced an answer.
type Source string

const (
	SourceNotReady     Source = "not_ready"
	SourceEmpty        Source = "empty"
	SourceGreeting     Source = "greeting"
	SourceCache        Source = "cache"
	SourceInsufficient Source = "insufficient"
	SourceGenerated    Source = "generated"
	SourceFallback     Source = "fallback"
)

// Answer is the reply to one message.
type Answer struct {
	Text   string
	Source Source
}

// Session is one conversation. Its messages are handled one at a time.
type Session struct {
	engine *Engine

	mu      sync.Mutex
	history []core.Turn
}

// Chat returns the reply text for message.
func (s *Session) Chat(ctx context.Context, message string) string {
	return s.Ask(ctx, message).Text
}

// Ask answers message and reports where the answer came from.
func (s *Session) Ask(ctx context.Context, message string) Answer {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.engine
	persona := &e.knowledge.Persona

	searcher := e.currentSearcher()
	if searcher == nil {
		return Answer{Text: persona.NotReadyMessage, Source: SourceNotReady}
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return Answer{Text: persona.InsufficientMessage, Source: SourceEmpty}
	}

	if respond.IsGreeting(message, persona) {
		answer := Answer{Text: e.generator.Greeting(), Source: SourceGreeting}
		s.recordShortcut(message, answer)
		return answer
	}

	hit, ok, err := e.responses.Lookup(ctx, message)
	if err != nil {
		e.logger.Warn("cache lookup failed", "err", err)
	} else if ok {
		e.logger.Debug("answered from cache", "tier", hit.Tier, "similarity", hit.Similarity)
		answer := Answer{Text: hit.Response, Source: SourceCache}
		s.recordShortcut(message, answer)
		return answer
	}

	expanded := query.Expand(message, s.history)
	e.logger.Debug("searching", "query", message, "expanded", expanded, "intent", query.ClassifyIntent(message))

	contexts, err := searcher.Search(ctx, expanded, e.searchK)
	if err != nil {
		e.logger.Warn("search failed", "err", err)
	}
	if len(contexts) == 0 {
		return Answer{Text: persona.InsufficientMessage, Source: SourceInsufficient}
	}

	reply := e.generator.Generate(ctx, message, contexts, slices.Clone(s.history))
	answer := Answer{Text: reply.Text, Source: SourceFallback}
	if reply.Source == respond.SourceGenerated {
		answer.Source = SourceGenerated
	}

	if ctx.Err() != nil {
		return answer
	}
	if answer.Source == SourceGenerated {
		if _, err := e.responses.Insert(ctx, message, reply.Text); err != nil {
			e.logger.Warn("cache insert failed", "err", err)
		}
	}
	s.append(message, answer.Text)
	return answer
}

// History returns a copy of the remembered turns, oldest first.
func (s *Session) History() []core.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// Reset forgets the conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

func (s *Session) recordShortcut(message string, answer Answer) {
	if s.engine.recordShortcuts {
		s.append(message, answer.Text)
	}
}

func (s *Session) append(message, reply string) {
	s.history = append(s.history,
		core.Turn{Role: core.RoleUser, Content: message},
		core.Turn{Role: core.RoleAssistant, Content: reply},
	)
	if limit := 2 * s.engine.historyPairs; len(s.history) > limit {
		s.history = slices.Clone(s.history[len(s.history)-limit:])
	}
}
