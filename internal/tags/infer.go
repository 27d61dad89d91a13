// ABOUTME: Heuristic tag inference for prompts saved without explicit tags
// ABOUTME: Combines fixed category regexes with keyword tags from the title
package tags

import (
	"regexp"
	"strings"
)

// maxKeywordTags caps the keyword portion of inferred tags; category tags
// come first and the union is capped at MaxTags.
const maxKeywordTags = 6

// categoryPatterns map a category tag to the keywords that trigger it. The
// lists are fixed and pinned by tests.
var categoryPatterns = []struct {
	tag     string
	pattern *regexp.Regexp
}{
	{"coding", regexp.MustCompile(`\b(code|coding|program(ming)?|debug|refactor|function|api|bug|compile|script|regex|sql|python|golang|javascript|typescript)\b`)},
	{"marketing", regexp.MustCompile(`\b(marketing|brand(ing)?|campaign|seo|audience|copywriting|ads?|landing page|conversion|newsletter|social media)\b`)},
	{"productivity", regexp.MustCompile(`\b(todo|tasks?|plan(ning)?|schedule|calendar|organize|workflow|meeting|agenda|productivity|checklist)\b`)},
	{"writing", regexp.MustCompile(`\b(writ(e|ing)|essay|blog|article|story|draft|edit|proofread|summar(y|ize)|rewrite|tone|paragraph)\b`)},
	{"learning", regexp.MustCompile(`\b(learn(ing)?|teach|explain|study|lesson|tutorial|course|quiz|flashcards?|beginner)\b`)},
	{"image-generation", regexp.MustCompile(`\b(image|photo|picture|illustration|render|midjourney|dall-?e|stable diffusion|logo|icon|artwork)\b`)},
}

// stopwords are dropped from keyword tag candidates.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "you": true, "your": true,
	"with": true, "that": true, "this": true, "are": true, "was": true,
	"were": true, "from": true, "have": true, "has": true, "had": true,
	"not": true, "but": true, "can": true, "will": true, "would": true,
	"should": true, "could": true, "about": true, "into": true, "over": true,
	"under": true, "what": true, "when": true, "where": true, "which": true,
	"who": true, "how": true, "why": true, "all": true, "any": true,
	"each": true, "please": true, "them": true, "they": true, "their": true,
	"there": true, "then": true, "than": true, "its": true, "out": true,
	"use": true, "using": true, "make": true, "give": true, "want": true,
	"need": true, "like": true, "just": true, "very": true, "more": true,
	"most": true, "some": true, "such": true, "only": true, "same": true,
	"now": true, "get": true, "our": true, "one": true, "two": true,
	"also": true, "may": true, "these": true, "those": true, "been": true,
	"being": true, "does": true, "doing": true, "act": true, "write": true,
	"create": true, "help": true, "following": true,
}

var tokenBoundary = regexp.MustCompile(`[^a-z0-9]+`)

// Infer produces tags for a prompt with none supplied. Category regexes run
// over title+text; keyword tags come from the title (or the first line of the
// text when there is no title), minus stopwords and short tokens. Returns nil
// when nothing matches.
func Infer(title, text string) []string {
	haystack := strings.ToLower(title + "\n" + text)

	seen := make(map[string]bool)
	var out []string
	for _, cat := range categoryPatterns {
		if cat.pattern.MatchString(haystack) && !seen[cat.tag] {
			seen[cat.tag] = true
			out = append(out, cat.tag)
		}
	}

	seed := strings.TrimSpace(title)
	if seed == "" {
		seed, _, _ = strings.Cut(strings.TrimSpace(text), "\n")
	}

	keywords := 0
	for _, tok := range tokenBoundary.Split(strings.ToLower(seed), -1) {
		if len(tok) < 3 || stopwords[tok] {
			continue
		}
		slug := Slugify(tok)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, slug)
		keywords++
		if keywords == maxKeywordTags {
			break
		}
	}

	if len(out) == 0 {
		return nil
	}
	if len(out) > MaxTags {
		out = out[:MaxTags]
	}
	return out
}
