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


// Package server exposes a chat.Engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/poiesic/folio/chat"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

const (
	// DefaultServiceName is reported by the health endpoint.
	DefaultServiceName = "Folio Portfolio Assistant"
	// DefaultRequestsPerHour and DefaultBurst bound POST /chat per client.
	DefaultRequestsPerHour = 10
	DefaultBurst           = 3
	// DefaultMaxClients bounds the number of remembered clients.
	DefaultMaxClients = 1024

	shutdownTimeout = 10 * time.Second
)

// Server routes HTTP requests to a chat engine. Every client gets its own
// conversation and its own rate limiter.
type Server struct {
	engine  *chat.Engine
	service string

	limit      rate.Limit
	burst      int
	maxClients int
	trustProxy bool
	origins    []string

	router  *mux.Router
	handler http.Handler
	clients *clients
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

func WithServiceName(name string) Option {
	return func(s *Server) error {
		s.service = name
		return nil
	}
}

// WithRateLimit allows perHour chat requests per client with the given burst.
// A zero perHour disables limiting.
func WithRateLimit(perHour, burst int) Option {
	return func(s *Server) error {
		if perHour < 0 || burst < 0 || (perHour > 0 && burst == 0) {
			return fmt.Errorf("invalid rate limit %d/hour burst %d", perHour, burst)
		}
		if perHour == 0 {
			s.limit = rate.Inf
		} else {
			s.limit = rate.Every(time.Hour / time.Duration(perHour))
		}
		s.burst = burst
		return nil
	}
}

// WithMaxClients bounds how many client conversations are kept. The least
// recently seen client is forgotten first.
func WithMaxClients(n int) Option {
	return func(s *Server) error {
		if n < 1 {
			return fmt.Errorf("max clients must be positive, got %d", n)
		}
		s.maxClients = n
		return nil
	}
}

// WithAllowedOrigins restricts CORS to the given origins. Default is any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) error {
		s.origins = origins
		return nil
	}
}

// WithTrustProxyHeaders identifies clients by X-Forwarded-For instead of the
// connection address. Enable only behind a proxy that sets it.
func WithTrustProxyHeaders(trust bool) Option {
	return func(s *Server) error {
		s.trustProxy = trust
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a server for engine.
func New(engine *chat.Engine, opts ...Option) (*Server, error) {
	if engine == nil {
		return nil, errors.New("server: engine is required")
	}
	s := &Server{
		engine:     engine,
		service:    DefaultServiceName,
		limit:      rate.Every(time.Hour / DefaultRequestsPerHour),
		burst:      DefaultBurst,
		maxClients: DefaultMaxClients,
		origins:    []string{"*"},
		router:     mux.NewRouter(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "http-server")

	c, err := newClients(s.maxClients, func() *client {
		return &client{
			session: engine.NewSession(),
			limiter: rate.NewLimiter(s.limit, s.burst),
		}
	})
	if err != nil {
		return nil, err
	}
	s.clients = c

	s.registerRoutes()
	s.handler = cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
	}).Handler(s.router)
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
