// ABOUTME: Backoff schedule for retried embedding calls
// ABOUTME: Doubles per attempt with jitter, capped to keep waits bounded
package util

import (
	"math/rand/v2"
	"time"
)

const (
	// maxBackoff bounds a single wait regardless of attempt count.
	maxBackoff = 30 * time.Second
	// maxShift keeps the doubling shift inside int64 range.
	maxShift = 30
)

// CalculateBackoff returns the wait before retry number attempt: the base
// delay doubled per attempt, capped at maxBackoff, plus jitter of up to a
// quarter in either direction so concurrent clients do not retry in step.
// Attempt 0 (the initial call) waits nothing.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > maxShift {
		attempt = maxShift
	}

	backoff := baseDelay << uint(attempt)
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}

	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}
