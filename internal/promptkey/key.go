// ABOUTME: Content-addressed key derivation for prompt records
// ABOUTME: Identical prompts (modulo whitespace and case) share one key
package promptkey

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/promptvault/promptvault/internal/textutil"
)

const keyPrefix = "pr_"

// Canonicalize reduces text to the form keys are derived from: collapsed
// whitespace, trimmed, lowercased.
func Canonicalize(text string) string {
	return strings.ToLower(textutil.Normalize(text))
}

// Derive computes the storage key for a prompt body. Texts that differ only
// in whitespace or case produce the same key, which is what makes re-saving
// the same prompt an idempotent upsert.
func Derive(text string) string {
	sum := sha256.Sum256([]byte(Canonicalize(text)))
	return keyPrefix + hex.EncodeToString(sum[:])[:16]
}
