// ABOUTME: Line-oriented splitting of pasted text into individual prompts
// ABOUTME: Blank lines, headings, and list items act as prompt boundaries
package textutil

import (
	"regexp"
	"strings"
)

// SplitPrompt is one prompt produced by SplitPrompts.
type SplitPrompt struct {
	Text  string
	Title string
}

var (
	// "## 1. Coding": numbered markdown heading, labels the next prompt.
	numberedHeading = regexp.MustCompile(`^#{1,6}\s+\d+[.)]\s*(.+)$`)
	// "## Anything": plain markdown heading, separator only.
	plainHeading = regexp.MustCompile(`^#{1,6}\s+.*$`)
	// "- item", "* item", "• item"
	bulletItem = regexp.MustCompile(`^[-*•]\s+(.*)$`)
	// "1. item", "2) item"
	numberedItem = regexp.MustCompile(`^\d+[.)]\s+(.*)$`)
)

// SplitPrompts segments raw pasted text into prompts. A blank line flushes the
// current prompt. A numbered markdown heading flushes and titles the upcoming
// prompt; any other markdown heading flushes and is discarded. A bullet or
// numbered list item flushes and starts a new prompt seeded with the rest of
// the line. Every other non-blank line continues the current prompt.
// Whitespace-only input produces no prompts.
func SplitPrompts(raw string) []SplitPrompt {
	var (
		prompts      []SplitPrompt
		current      []string
		pendingTitle string
	)

	flush := func() {
		text := Normalize(strings.Join(current, "\n"))
		current = current[:0]
		if text == "" {
			// Nothing accumulated; keep any pending title for the
			// next prompt with content.
			return
		}
		prompts = append(prompts, SplitPrompt{Text: text, Title: pendingTitle})
		pendingTitle = ""
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			flush()
		case numberedHeading.MatchString(trimmed):
			flush()
			m := numberedHeading.FindStringSubmatch(trimmed)
			pendingTitle = strings.TrimSpace(m[1])
		case plainHeading.MatchString(trimmed):
			flush()
		case bulletItem.MatchString(trimmed):
			flush()
			m := bulletItem.FindStringSubmatch(trimmed)
			if rest := strings.TrimSpace(m[1]); rest != "" {
				current = append(current, rest)
			}
		case numberedItem.MatchString(trimmed):
			flush()
			m := numberedItem.FindStringSubmatch(trimmed)
			if rest := strings.TrimSpace(m[1]); rest != "" {
				current = append(current, rest)
			}
		default:
			current = append(current, trimmed)
		}
	}
	flush()

	return prompts
}
