package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/poiesic/folio/chat"
)

const maxRequestBytes = 16 << 10

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type cacheStatus struct {
	StaticCategories int   `json:"static_categories"`
	DynamicEntries   int   `json:"dynamic_entries"`
	DynamicAccesses  int64 `json:"dynamic_accesses"`
	Hits             int64 `json:"hits"`
	Misses           int64 `json:"misses"`
}

type statusResponse struct {
	Ready       bool             `json:"ready"`
	Documents   int              `json:"documents"`
	IndexSource chat.IndexSource `json:"index_source,omitempty"`
	Cache       cacheStatus      `json:"cache"`
	Clients     int              `json:"clients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "online", Service: s.service})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.engine.Status()
	writeJSON(w, http.StatusOK, statusResponse{
		Ready:       st.Ready,
		Documents:   st.Documents,
		IndexSource: st.IndexSource,
		Cache: cacheStatus{
			StaticCategories: st.Cache.StaticCategories,
			DynamicEntries:   st.Cache.DynamicEntries,
			DynamicAccesses:  st.Cache.DynamicAccesses,
			Hits:             st.Cache.Hits,
			Misses:           st.Cache.Misses,
		},
		Clients: s.clients.len(),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	key := clientKey(r, s.trustProxy)
	cl := s.clients.get(key)

	if !cl.limiter.Allow() {
		s.logger.Info("rate limit exceeded", "client", key)
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Detail: "Rate limit exceeded"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Detail: "Message too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Message cannot be empty"})
		return
	}

	answer := cl.session.Ask(r.Context(), req.Message)
	s.logger.Debug("chat answered", "client", key, "source", answer.Source)
	writeJSON(w, http.StatusOK, chatResponse{Response: answer.Text})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
