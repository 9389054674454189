package respond

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"net timeout", &net.DNSError{Err: "lookup", IsTimeout: true}, true},
		{"service unavailable", errors.New("503 Service Unavailable"), true},
		{"throttled", errors.New("API returned unexpected status code: 429"), true},
		{"model loading", errors.New("Model mistralai/Mistral-7B is currently loading"), true},
		{"read timeout", errors.New("read tcp: i/o timeout"), true},
		{"unauthorized", errors.New("401 unauthorized"), false},
		{"bad request", errors.New("invalid request: max_tokens too large"), false},
		{"empty reply", ErrEmptyReply, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
