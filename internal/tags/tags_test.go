// ABOUTME: Tests for tag slugification and normalization
// ABOUTME: Pins the slug charset, dedupe order, and the 12-tag cap
package tags

import (
	"reflect"
	"regexp"
	"testing"
)

var slugFormat = regexp.MustCompile(`^[a-z0-9-]+$`)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase passthrough", "coding", "coding"},
		{"uppercase folded", "Coding", "coding"},
		{"spaces to hyphen", "image generation", "image-generation"},
		{"punctuation stripped", "B!!", "b"},
		{"symbol runs collapse", "a&&&b", "a-b"},
		{"edge hyphens trimmed", "--tag--", "tag"},
		{"empty result", "!!!", ""},
		{"blank input", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_DedupeAndCap(t *testing.T) {
	in := []string{"A", "a", "B!!", "", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m"}

	got := Normalize(in)
	if len(got) > MaxTags {
		t.Errorf("got %d tags, want at most %d", len(got), MaxTags)
	}

	seen := map[string]bool{}
	for _, tag := range got {
		if !slugFormat.MatchString(tag) {
			t.Errorf("tag %q is not a valid slug", tag)
		}
		if seen[tag] {
			t.Errorf("tag %q appears twice", tag)
		}
		seen[tag] = true
	}
}

func TestNormalize_FirstOccurrenceWins(t *testing.T) {
	got := Normalize([]string{"Writing", "writing", "CODING", "coding"})
	want := []string{"writing", "coding"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}

func TestNormalize_NilCases(t *testing.T) {
	tests := []struct {
		name string
		in   []string
	}{
		{"nil input", nil},
		{"empty input", []string{}},
		{"all unusable", []string{"", "!!!", "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != nil {
				t.Errorf("Normalize(%v) = %v, want nil", tt.in, got)
			}
		})
	}
}
