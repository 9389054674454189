package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/poiesic/folio"
	"github.com/poiesic/folio/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, initialize bool, opts ...Option) (*Server, *folio.Assistant) {
	t.Helper()
	a, err := folio.NewWithProvider(mock.NewMockProvider())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	if initialize {
		require.NoError(t, a.Initialize(context.Background()))
	}
	s, err := New(a.Engine(), opts...)
	require.NoError(t, err)
	return s, a
}

func do(s *Server, method, path, body, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if remote != "" {
		req.RemoteAddr = remote
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	a, err := folio.NewWithProvider(mock.NewMockProvider())
	require.NoError(t, err)
	defer a.Close()

	for name, opt := range map[string]Option{
		"negative rate": WithRateLimit(-1, 3),
		"zero burst":    WithRateLimit(10, 0),
		"zero clients":  WithMaxClients(0),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := New(a.Engine(), opt)
			assert.Error(t, err)
		})
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, false, WithServiceName("Ravi's assistant"))

	rec := do(s, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	health := decode[healthResponse](t, rec)
	assert.Equal(t, "online", health.Status)
	assert.Equal(t, "Ravi's assistant", health.Service)
}

func TestStatus(t *testing.T) {
	t.Run("before initialize", func(t *testing.T) {
		s, _ := newTestServer(t, false)
		status := decode[statusResponse](t, do(s, http.MethodGet, "/status", "", ""))
		assert.False(t, status.Ready)
		assert.Zero(t, status.Documents)
	})

	t.Run("ready", func(t *testing.T) {
		s, a := newTestServer(t, true)
		status := decode[statusResponse](t, do(s, http.MethodGet, "/status", "", ""))
		assert.True(t, status.Ready)
		assert.Equal(t, len(a.Knowledge().Documents), status.Documents)
		assert.Equal(t, "built", string(status.IndexSource))
		assert.Equal(t, len(a.Knowledge().FAQ), status.Cache.StaticCategories)
	})
}

func TestChat(t *testing.T) {
	t.Run("answers", func(t *testing.T) {
		s, _ := newTestServer(t, true)
		rec := do(s, http.MethodPost, "/chat", `{"message":"What was his masters thesis about?"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, mock.DefaultReply, decode[chatResponse](t, rec).Response)
	})

	t.Run("greeting", func(t *testing.T) {
		s, a := newTestServer(t, true)
		rec := do(s, http.MethodPost, "/chat", `{"message":"Hello!"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, a.Knowledge().Persona.Greetings, decode[chatResponse](t, rec).Response)
	})

	t.Run("not ready", func(t *testing.T) {
		s, a := newTestServer(t, false)
		rec := do(s, http.MethodPost, "/chat", `{"message":"Where does he work?"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, a.Knowledge().Persona.NotReadyMessage, decode[chatResponse](t, rec).Response)
	})

	bad := map[string]string{
		"empty message": `{"message":""}`,
		"blank message": `{"message":"   "}`,
		"missing field": `{}`,
		"malformed":     `{"message":`,
	}
	for name, body := range bad {
		t.Run(name, func(t *testing.T) {
			s, _ := newTestServer(t, true)
			rec := do(s, http.MethodPost, "/chat", body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[errorResponse](t, rec).Detail)
		})
	}

	t.Run("too large", func(t *testing.T) {
		s, _ := newTestServer(t, true)
		body := `{"message":"` + strings.Repeat("a", maxRequestBytes) + `"}`
		rec := do(s, http.MethodPost, "/chat", body, "")
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		s, _ := newTestServer(t, true)
		rec := do(s, http.MethodGet, "/chat", "", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRateLimit(t *testing.T) {
	const body = `{"message":"hi"}`

	t.Run("per client bucket", func(t *testing.T) {
		s, _ := newTestServer(t, true, WithRateLimit(10, 3))

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, do(s, http.MethodPost, "/chat", body, "198.51.100.7:4000").Code)
		}
		rec := do(s, http.MethodPost, "/chat", body, "198.51.100.7:4001")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)

		// Another client has its own bucket.
		assert.Equal(t, http.StatusOK, do(s, http.MethodPost, "/chat", body, "198.51.100.8:4000").Code)
	})

	t.Run("invalid requests count", func(t *testing.T) {
		s, _ := newTestServer(t, true, WithRateLimit(10, 1))
		assert.Equal(t, http.StatusBadRequest, do(s, http.MethodPost, "/chat", `{}`, "").Code)
		assert.Equal(t, http.StatusTooManyRequests, do(s, http.MethodPost, "/chat", body, "").Code)
	})

	t.Run("disabled", func(t *testing.T) {
		s, _ := newTestServer(t, true, WithRateLimit(0, 0))
		for i := 0; i < 20; i++ {
			require.Equal(t, http.StatusOK, do(s, http.MethodPost, "/chat", body, "").Code)
		}
	})

	t.Run("forwarded clients", func(t *testing.T) {
		s, _ := newTestServer(t, true, WithRateLimit(10, 1), WithTrustProxyHeaders(true))
		send := func(forwarded string) int {
			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
			req.Header.Set("X-Forwarded-For", forwarded)
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			return rec.Code
		}
		assert.Equal(t, http.StatusOK, send("203.0.113.1, 10.0.0.1"))
		assert.Equal(t, http.StatusOK, send("203.0.113.2, 10.0.0.1"))
		assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1"))
	})
}

func TestClients(t *testing.T) {
	s, _ := newTestServer(t, true, WithMaxClients(2))
	for _, addr := range []string{"192.0.2.1:1", "192.0.2.2:1", "192.0.2.3:1"} {
		do(s, http.MethodPost, "/chat", `{"message":"hello"}`, addr)
	}
	status := decode[statusResponse](t, do(s, http.MethodGet, "/status", "", ""))
	assert.Equal(t, 2, status.Clients)

	first := s.clients.get("192.0.2.2")
	assert.Same(t, first, s.clients.get("192.0.2.2"))
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")

	assert.Equal(t, "192.0.2.10", clientKey(req, false))
	assert.Equal(t, "203.0.113.9", clientKey(req, true))

	req.RemoteAddr = "unix"
	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "unix", clientKey(req, true))
}

func TestCORS(t *testing.T) {
	t.Run("any origin", func(t *testing.T) {
		s, _ := newTestServer(t, true)
		req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
		req.Header.Set("Origin", "https://ravimenon.dev")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		assert.Less(t, rec.Code, 300)
		assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("restricted", func(t *testing.T) {
		s, _ := newTestServer(t, true, WithAllowedOrigins("https://ravimenon.dev"))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://elsewhere.example")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestListenAndServe(t *testing.T) {
	s, _ := newTestServer(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}
