package respond

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strings"
)

var statusCode = regexp.MustCompile(`\b(?:429|5\d\d)\b`)

var transientWords = []string{
	"loading",
	"timeout",
	"timed out",
	"unavailable",
	"too many requests",
	"rate limit",
}

// IsTransient reports whether a model failure is worth retrying: timeouts,
// throttling, server errors and models that are still loading.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return statusCode.MatchString(msg) || containsAny(msg, transientWords)
}
