package server

import (
	"net"
	"net/http"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/folio/chat"
	"golang.org/x/time/rate"
)

type client struct {
	session *chat.Session
	limiter *rate.Limiter
}

// clients maps client addresses to their conversation state.
type clients struct {
	mu      sync.Mutex
	entries *lru.Cache[string, *client]
	create  func() *client
}

func newClients(size int, create func() *client) (*clients, error) {
	entries, err := lru.New[string, *client](size)
	if err != nil {
		return nil, err
	}
	return &clients{entries: entries, create: create}, nil
}

// get returns the client for key, creating it on first sight.
func (c *clients) get(key string) *client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cl, ok := c.entries.Get(key); ok {
		return cl
	}
	cl := c.create()
	c.entries.Add(key, cl)
	return cl
}

func (c *clients) len() int {
	return c.entries.Len()
}

func clientKey(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
