// ABOUTME: Tag slugification and normalization for prompt records
// ABOUTME: Tags are lowercase [a-z0-9-]+ slugs, deduplicated and capped
package tags

import (
	"regexp"
	"strings"
)

// MaxTags is the maximum number of tags stored on one prompt.
const MaxTags = 12

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a tag, replaces runs of non-alphanumerics with a single
// hyphen, and strips leading/trailing hyphens. Returns "" if nothing remains.
func Slugify(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = nonAlnumRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Normalize slugifies each tag, drops empties and duplicates (first
// occurrence wins), and caps the result at MaxTags. Returns nil when nothing
// usable remains.
func Normalize(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(raw))
	var out []string
	for _, t := range raw {
		slug := Slugify(t)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, slug)
		if len(out) == MaxTags {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
