// ABOUTME: Text normalization helpers for prompt bodies
// ABOUTME: Whitespace collapsing, preview truncation, word counts, inline titles
package textutil

import (
	"regexp"
	"strings"
)

// PreviewMaxLen is the maximum length of a prompt preview.
const PreviewMaxLen = 160

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize collapses runs of whitespace to single spaces and trims the ends.
// It is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// Preview returns a truncated view of the normalized text. Text longer than
// PreviewMaxLen is cut to PreviewMaxLen-1 runes, trimmed, and suffixed with
// an ellipsis.
func Preview(text string) string {
	normalized := Normalize(text)
	runes := []rune(normalized)
	if len(runes) <= PreviewMaxLen {
		return normalized
	}
	return strings.TrimRight(string(runes[:PreviewMaxLen-1]), " ") + "…"
}

// WordCount returns the number of whitespace-delimited tokens in text,
// or 0 for blank input.
func WordCount(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	return len(strings.Fields(trimmed))
}

var (
	// "# Title", "### 2. Title": heading marker, optional number + punctuation.
	headingLine = regexp.MustCompile(`^#{1,6}\s+(?:\d+[.)]\s+)?(.+)$`)
	// "1. Title" / "2) Title"
	numberedLine = regexp.MustCompile(`^\d+[.)]\s+(.+)$`)
)

// ExtractInlineTitle inspects the first non-blank line of raw input. If it is
// a markdown heading or "N." / "N)" prefixed line and there is non-blank text
// after it, the heading text becomes the title and the remainder the body.
// Otherwise the normalized input is returned unchanged with no title.
func ExtractInlineTitle(raw string) (title, text string) {
	lines := strings.Split(raw, "\n")
	first := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			first = i
			break
		}
	}
	if first < 0 {
		return "", Normalize(raw)
	}

	head := strings.TrimSpace(lines[first])
	rest := Normalize(strings.Join(lines[first+1:], "\n"))

	if m := headingLine.FindStringSubmatch(head); m != nil && rest != "" {
		return strings.TrimSpace(m[1]), rest
	}
	if m := numberedLine.FindStringSubmatch(head); m != nil && rest != "" {
		return strings.TrimSpace(m[1]), rest
	}
	return "", Normalize(raw)
}
