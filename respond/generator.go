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


package respond

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/poiesic/folio/ai"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/retry"
)

const (
	DefaultMaxContexts = 5
	DefaultTimeout     = 30 * time.Second
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 2 * time.Second
)

// Source tells where a reply came from.
type Source string

const (
	SourceGreeting  Source = "greeting"
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Reply is the answer to one message.
type Reply struct {
	Text   string
	Source Source
}

// Generator produces persona-styled answers with a chat model.
type Generator struct {
	model       ai.ChatModel
	persona     core.Persona
	maxContexts int
	timeout     time.Duration
	policy      retry.Policy
	pick        func(n int) int
	logger      *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator) error

// WithMaxContexts limits how many passages go into the prompt.
func WithMaxContexts(n int) Option {
	return func(g *Generator) error {
		if n <= 0 {
			return fmt.Errorf("max contexts must be positive, got %d", n)
		}
		g.maxContexts = n
		return nil
	}
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		g.timeout = d
		return nil
	}
}

// WithRetry sets the attempt limit and the fixed delay between attempts.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(g *Generator) error {
		if maxAttempts <= 0 {
			return retry.ErrInvalidMaxAttempts
		}
		g.policy = retry.Fixed(maxAttempts, delay)
		return nil
	}
}

// WithPicker replaces the random choice of greeting.
func WithPicker(pick func(n int) int) Option {
	return func(g *Generator) error {
		g.pick = pick
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		g.logger = logger
		return nil
	}
}

// NewGenerator creates a generator speaking about persona.
func NewGenerator(model ai.ChatModel, persona *core.Persona, opts ...Option) (*Generator, error) {
	if model == nil {
		return nil, ErrChatModelRequired
	}
	if err := core.ValidatePersona(persona); err != nil {
		return nil, err
	}

	g := &Generator{
		model:       model,
		persona:     *persona,
		maxContexts: DefaultMaxContexts,
		timeout:     DefaultTimeout,
		policy:      retry.Fixed(DefaultMaxAttempts, DefaultRetryDelay),
		pick:        rand.IntN,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	g.policy.Retryable = IsTransient
	g.logger = g.logger.With("component", "generator")
	return g, nil
}

// Persona returns the persona the generator speaks about.
func (g *Generator) Persona() *core.Persona {
	return &g.persona
}

// Greeting returns one of the persona greetings.
func (g *Generator) Greeting() string {
	if len(g.persona.Greetings) == 0 {
		name := g.persona.FirstName
		if name == "" {
			name = g.persona.Subject
		}
		return "Hi! Ask me anything about " + name + "."
	}
	return g.persona.Greetings[g.pick(len(g.persona.Greetings))]
}

// Generate answers query from contexts. It never fails; problems with the
// model produce a fallback reply.
func (g *Generator) Generate(ctx context.Context, query string, contexts []string, history []core.Turn) Reply {
	if IsGreeting(query, &g.persona) {
		return Reply{Text: g.Greeting(), Source: SourceGreeting}
	}

	messages := BuildMessages(&g.persona, query, contexts, history, g.maxContexts)

	var raw string
	attempt := 0
	err := retry.Do(ctx, g.policy, func(ctx context.Context) error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		out, err := g.model.Generate(callCtx, messages)
		if err != nil {
			g.logger.Debug("model call failed", "attempt", attempt, "err", err)
			return err
		}
		raw = out
		return nil
	})
	if err != nil {
		g.logger.Warn("generation failed, using fallback", "attempts", attempt, "err", err)
		return g.fallback(query, contexts)
	}

	answer, err := g.finish(raw)
	if err != nil {
		g.logger.Info("model reply rejected, using fallback", "err", err)
		return g.fallback(query, contexts)
	}
	return Reply{Text: answer, Source: SourceGenerated}
}

func (g *Generator) finish(raw string) (string, error) {
	cleaned := Clean(raw)
	if cleaned == "" {
		return "", ErrEmptyReply
	}
	if IsRefusal(cleaned) {
		return "", fmt.Errorf("%w: refusal", ErrInvalidReply)
	}
	answer := ThirdPerson(cleaned, g.persona.Pronouns)
	if !Valid(answer, &g.persona) {
		return "", ErrInvalidReply
	}
	return answer, nil
}

func (g *Generator) fallback(query string, contexts []string) Reply {
	return Reply{Text: Fallback(query, contexts, &g.persona), Source: SourceFallback}
}
