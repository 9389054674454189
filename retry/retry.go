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


// Package retry runs operations again after transient failures.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrInvalidMaxAttempts is returned when a policy allows no attempt at all.
var ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts counts the first call. Must be > 0.
	MaxAttempts int
	// Delay is the wait before the second attempt.
	Delay time.Duration
	// Multiplier scales the delay after every failed attempt.
	// Values <= 1 keep the delay fixed.
	Multiplier float64
	// Retryable reports whether err is worth another attempt.
	// A nil Retryable retries every error.
	Retryable func(err error) bool
}

// Fixed returns a policy with a constant delay between attempts.
func Fixed(maxAttempts int, delay time.Duration) Policy {
	return Policy{MaxAttempts: maxAttempts, Delay: delay, Multiplier: 1}
}

// Exponential returns a policy whose delay doubles after each failure.
func Exponential(maxAttempts int, baseDelay time.Duration) Policy {
	return Policy{MaxAttempts: maxAttempts, Delay: baseDelay, Multiplier: 2}
}

// Do calls operation until it succeeds, the policy gives up, or ctx ends.
// Returns the error from the last attempt if all attempts fail, or the
// context error when ctx is done first.
func Do(ctx context.Context, policy Policy, operation func(ctx context.Context) error) error {
	if policy.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	delay := policy.Delay
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		if policy.Retryable != nil && !policy.Retryable(lastErr) {
			slog.Debug("operation failed with permanent error", "attempt", attempt, "error", lastErr)
			return lastErr
		}

		slog.Debug("operation failed, will retry", "attempt", attempt, "maxAttempts", policy.MaxAttempts, "error", lastErr)

		if attempt == policy.MaxAttempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if policy.Multiplier > 1 {
			delay = time.Duration(float64(delay) * policy.Multiplier)
		}
	}

	return lastErr
}

