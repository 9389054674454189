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


package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/folio"
	"github.com/poiesic/folio/ai"
	"github.com/poiesic/folio/ai/openai"
	"github.com/poiesic/folio/query"
	"github.com/poiesic/folio/search"
	"github.com/poiesic/folio/server"
	"github.com/urfave/cli/v2"
)

// newProvider is replaced in tests.
var newProvider = openai.NewProvider

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func envVar(name string) []string {
	return []string{"FOLIO_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))}
}

func globalFlags() []cli.Flag {
	defaults := ai.DefaultConfig()
	cfg := folio.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "Set logging level (debug, info, warn, error)",
			Value:   "info",
			EnvVars: envVar("log-level"),
		},
		&cli.StringFlag{
			Name:    "corpus",
			Usage:   "Path to a TOML corpus file (default: bundled portfolio)",
			EnvVars: envVar("corpus"),
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "Directory for the index snapshot and response cache; empty disables persistence",
			Value:   "folio-data",
			EnvVars: envVar("data-dir"),
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   defaults.EmbeddingHost,
			EnvVars: envVar("embedding-host"),
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   defaults.EmbeddingModel,
			EnvVars: envVar("embedding-model"),
		},
		&cli.StringFlag{
			Name:    "chat-host",
			Usage:   "Chat completion host URL",
			Value:   defaults.ChatHost,
			EnvVars: envVar("chat-host"),
		},
		&cli.StringFlag{
			Name:    "chat-model",
			Usage:   "Chat model name",
			Value:   defaults.ChatModel,
			EnvVars: envVar("chat-model"),
		},
		&cli.StringFlag{
			Name:    "chat-backend",
			Usage:   "Chat backend (openai, huggingface)",
			Value:   defaults.ChatBackend,
			EnvVars: envVar("chat-backend"),
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key sent to both services",
			EnvVars: envVar("api-key"),
		},
		&cli.Float64Flag{
			Name:    "temperature",
			Usage:   "Sampling temperature",
			Value:   defaults.Temperature,
			EnvVars: envVar("temperature"),
		},
		&cli.Float64Flag{
			Name:    "top-p",
			Usage:   "Nucleus sampling probability",
			Value:   defaults.TopP,
			EnvVars: envVar("top-p"),
		},
		&cli.IntFlag{
			Name:    "max-tokens",
			Usage:   "Completion length limit",
			Value:   defaults.MaxTokens,
			EnvVars: envVar("max-tokens"),
		},
		&cli.IntFlag{
			Name:    "embedding-cache-size",
			Usage:   "Query embeddings kept in memory; 0 disables",
			Value:   defaults.EmbeddingCacheSize,
			EnvVars: envVar("embedding-cache-size"),
		},
		&cli.Float64Flag{
			Name:    "similarity-threshold",
			Usage:   "Minimum similarity for a response cache hit",
			Value:   float64(cfg.SimilarityThreshold),
			EnvVars: envVar("similarity-threshold"),
		},
		&cli.Float64Flag{
			Name:    "duplicate-threshold",
			Usage:   "Similarity above which a new answer is not cached",
			Value:   float64(cfg.DuplicateThreshold),
			EnvVars: envVar("duplicate-threshold"),
		},
		&cli.IntFlag{
			Name:    "cache-capacity",
			Usage:   "Maximum number of learned answers kept",
			Value:   cfg.CacheCapacity,
			EnvVars: envVar("cache-capacity"),
		},
		&cli.IntFlag{
			Name:    "search-k",
			Usage:   "Number of passages retrieved per question",
			Value:   cfg.SearchK,
			EnvVars: envVar("search-k"),
		},
		&cli.IntFlag{
			Name:    "max-contexts",
			Usage:   "Number of passages included in the prompt",
			Value:   cfg.MaxContexts,
			EnvVars: envVar("max-contexts"),
		},
		&cli.IntFlag{
			Name:    "history-pairs",
			Usage:   "Conversation exchanges remembered per session",
			Value:   cfg.HistoryPairs,
			EnvVars: envVar("history-pairs"),
		},
		&cli.IntFlag{
			Name:    "max-context-chars",
			Usage:   "Length budget of each retrieved passage",
			Value:   cfg.MaxContextChars,
			EnvVars: envVar("max-context-chars"),
		},
		&cli.BoolFlag{
			Name:    "record-shortcuts",
			Usage:   "Also record greetings and cached answers in the conversation history",
			EnvVars: envVar("record-shortcuts"),
		},
		&cli.IntFlag{
			Name:    "batch-size",
			Usage:   "Documents per embedding request when indexing",
			Value:   cfg.BatchSize,
			EnvVars: envVar("batch-size"),
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "Timeout for each chat model call",
			Value:   cfg.GenerationTimeout,
			EnvVars: envVar("timeout"),
		},
		&cli.IntFlag{
			Name:    "max-retries",
			Usage:   "Attempts per chat model call",
			Value:   cfg.MaxAttempts,
			EnvVars: envVar("max-retries"),
		},
		&cli.DurationFlag{
			Name:    "retry-delay",
			Usage:   "Delay between chat model attempts",
			Value:   cfg.RetryDelay,
			EnvVars: envVar("retry-delay"),
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:   "folio",
		Usage:  "Portfolio assistant that answers questions about one person",
		Flags:  globalFlags(),
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Embed the corpus and write the index snapshot",
				Action: indexCommand,
			},
			{
				Name:      "ask",
				Usage:     "Answer a single question",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "source",
						Usage: "Report which pipeline step produced the answer",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Interactive conversation on stdin",
				Action: chatCommand,
			},
			{
				Name:      "search",
				Usage:     "Show the passages retrieved for a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "k",
						Aliases: []string{"n"},
						Usage:   "Number of results",
						Value:   search.DefaultK,
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Print per-stage retrieval trace",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address",
						Value:   ":8000",
						EnvVars: envVar("addr"),
					},
					&cli.StringFlag{
						Name:    "service-name",
						Usage:   "Name reported by the health endpoint",
						Value:   server.DefaultServiceName,
						EnvVars: envVar("service-name"),
					},
					&cli.IntFlag{
						Name:    "rate-per-hour",
						Usage:   "Chat requests allowed per client per hour; 0 disables limiting",
						Value:   server.DefaultRequestsPerHour,
						EnvVars: envVar("rate-per-hour"),
					},
					&cli.IntFlag{
						Name:    "rate-burst",
						Usage:   "Chat requests a client may send at once",
						Value:   server.DefaultBurst,
						EnvVars: envVar("rate-burst"),
					},
					&cli.StringSliceFlag{
						Name:    "allowed-origin",
						Usage:   "CORS origin to allow (repeatable, default any)",
						EnvVars: envVar("allowed-origins"),
					},
					&cli.BoolFlag{
						Name:    "trust-proxy",
						Usage:   "Identify clients by X-Forwarded-For",
						EnvVars: envVar("trust-proxy"),
					},
				},
			},
		},
	}
}

func aiConfig(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatHost(c.String("chat-host")),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithChatBackend(c.String("chat-backend")),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithTemperature(c.Float64("temperature")),
		ai.WithTopP(c.Float64("top-p")),
		ai.WithMaxTokens(c.Int("max-tokens")),
		ai.WithEmbeddingCacheSize(c.Int("embedding-cache-size")),
	)
}

func openAssistant(c *cli.Context) (*folio.Assistant, error) {
	cfg := aiConfig(c)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []folio.Option{
		folio.WithAIConfig(cfg),
		folio.WithCorpusPath(c.String("corpus")),
		folio.WithSimilarityThreshold(float32(c.Float64("similarity-threshold"))),
		folio.WithDuplicateThreshold(float32(c.Float64("duplicate-threshold"))),
		folio.WithCacheCapacity(c.Int("cache-capacity")),
		folio.WithSearchK(c.Int("search-k")),
		folio.WithMaxContexts(c.Int("max-contexts")),
		folio.WithHistoryPairs(c.Int("history-pairs")),
		folio.WithMaxContextChars(c.Int("max-context-chars")),
		folio.WithRecordShortcutTurns(c.Bool("record-shortcuts")),
		folio.WithBatchSize(c.Int("batch-size")),
		folio.WithGenerationTimeout(c.Duration("timeout")),
		folio.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		folio.WithProgress(c.App.ErrWriter),
		folio.WithLogger(slog.Default()),
	}
	if dir := c.String("data-dir"); dir != "" {
		opts = append(opts, folio.WithDataDir(dir))
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}
	a, err := folio.NewWithProvider(provider, opts...)
	if err != nil {
		provider.Close()
		return nil, err
	}
	return a, nil
}

func openInitialized(c *cli.Context) (*folio.Assistant, error) {
	a, err := openAssistant(c)
	if err != nil {
		return nil, err
	}
	if err := a.Initialize(c.Context); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return a, nil
}

func indexCommand(c *cli.Context) error {
	if c.String("data-dir") == "" {
		return fmt.Errorf("data-dir is required to write an index")
	}
	a, err := openAssistant(c)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintf(c.App.ErrWriter, "Corpus: %d documents\n", len(a.Knowledge().Documents))
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", c.String("embedding-model"))

	vectors, err := a.BuildIndex(c.Context)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Indexed %d documents (dimension %d) into %s\n",
		vectors.Len(), vectors.Dimension(), c.String("data-dir"))
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("a question is required")
	}
	a, err := openInitialized(c)
	if err != nil {
		return err
	}
	defer a.Close()

	answer := a.Engine().NewSession().Ask(c.Context, question)
	if c.Bool("source") {
		fmt.Fprintf(c.App.ErrWriter, "[%s]\n", answer.Source)
	}
	fmt.Fprintln(c.App.Writer, answer.Text)
	return nil
}

func chatCommand(c *cli.Context) error {
	a, err := openInitialized(c)
	if err != nil {
		return err
	}
	defer a.Close()

	session := a.Engine().NewSession()
	out := c.App.Writer
	fmt.Fprintf(out, "Ask me about %s. Type \"reset\" to start over, \"exit\" to quit.\n", a.Knowledge().Persona.Subject)

	scanner := bufio.NewScanner(c.App.Reader)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "reset":
			session.Reset()
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		}
		fmt.Fprintln(out, session.Chat(c.Context, line))
		if c.Context.Err() != nil {
			return nil
		}
	}
}

func searchCommand(c *cli.Context) error {
	q := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(q) == "" {
		return fmt.Errorf("a query is required")
	}
	a, err := openInitialized(c)
	if err != nil {
		return err
	}
	defer a.Close()

	var monitor search.Monitor
	if c.Bool("trace") {
		monitor = search.NewTraceMonitor(c.App.ErrWriter, 80)
	}
	results, err := a.Engine().Search(c.Context, q, c.Int("k"), monitor)
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Intent: %s\n", query.ClassifyIntent(q))
	fmt.Fprintf(out, "Found %d results\n", len(results))
	for i, r := range results {
		fmt.Fprintf(out, "%d: [%0.2f] %s\n", i+1, r.Score, r.Text)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	a, err := openInitialized(c)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := []server.Option{
		server.WithServiceName(c.String("service-name")),
		server.WithRateLimit(c.Int("rate-per-hour"), c.Int("rate-burst")),
		server.WithTrustProxyHeaders(c.Bool("trust-proxy")),
		server.WithLogger(slog.Default()),
	}
	if origins := c.StringSlice("allowed-origin"); len(origins) > 0 {
		opts = append(opts, server.WithAllowedOrigins(origins...))
	}
	srv, err := server.New(a.Engine(), opts...)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(c.Context, c.String("addr"))
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
