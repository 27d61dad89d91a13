// ABOUTME: Post-processing of query and list results
// ABOUTME: Attribute filtering, text de-duplication, relative distance cutoff
package store

import (
	"math"
	"sort"

	"github.com/promptvault/promptvault/internal/models"
	"github.com/promptvault/promptvault/internal/promptkey"
)

// Filters constrain matches by stored metadata attributes.
type Filters struct {
	Source   string
	UploadID string
	TagsAny  []string
	TagsAll  []string
}

// Apply drops matches whose metadata does not satisfy every supplied
// constraint.
func (f Filters) Apply(matches []models.Match) []models.Match {
	out := matches[:0:0]
	for _, m := range matches {
		if f.Source != "" && m.Metadata.Source != f.Source {
			continue
		}
		if f.UploadID != "" && m.Metadata.UploadID != f.UploadID {
			continue
		}
		if len(f.TagsAny) > 0 && !hasAnyTag(&m.Metadata, f.TagsAny) {
			continue
		}
		if len(f.TagsAll) > 0 && !hasAllTags(&m.Metadata, f.TagsAll) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func hasAnyTag(meta *models.PromptMetadata, want []string) bool {
	for _, tag := range want {
		if meta.HasTag(tag) {
			return true
		}
	}
	return false
}

func hasAllTags(meta *models.PromptMetadata, want []string) bool {
	for _, tag := range want {
		if !meta.HasTag(tag) {
			return false
		}
	}
	return true
}

// DedupeMode selects which representative survives per canonical-text group.
type DedupeMode int

const (
	// DedupeClosest keeps the lowest-distance representative and sorts
	// ascending by distance. Used after similarity queries.
	DedupeClosest DedupeMode = iota
	// DedupeNewest keeps the most recently updated representative and
	// sorts descending by recency. Used for plain listings.
	DedupeNewest
)

// DeduplicateByText groups matches by canonicalized text and keeps one
// representative per group according to mode.
func DeduplicateByText(matches []models.Match, mode DedupeMode) []models.Match {
	best := make(map[string]models.Match, len(matches))
	order := make([]string, 0, len(matches))

	for _, m := range matches {
		canon := promptkey.Canonicalize(m.Metadata.Text)
		current, ok := best[canon]
		if !ok {
			best[canon] = m
			order = append(order, canon)
			continue
		}
		if betterRepresentative(m, current, mode) {
			best[canon] = m
		}
	}

	out := make([]models.Match, 0, len(order))
	for _, canon := range order {
		out = append(out, best[canon])
	}

	switch mode {
	case DedupeClosest:
		sort.SliceStable(out, func(i, j int) bool {
			return matchDistance(out[i]) < matchDistance(out[j])
		})
	case DedupeNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Metadata.Recency().After(out[j].Metadata.Recency())
		})
	}
	return out
}

func betterRepresentative(candidate, current models.Match, mode DedupeMode) bool {
	switch mode {
	case DedupeClosest:
		return matchDistance(candidate) < matchDistance(current)
	case DedupeNewest:
		return candidate.Metadata.Recency().After(current.Metadata.Recency())
	}
	return false
}

func matchDistance(m models.Match) float64 {
	if m.Distance == nil {
		return math.Inf(1)
	}
	return *m.Distance
}

// ApplyDistanceCutoff discards matches whose distance exceeds
// min(maxDistance, best+nearTieDelta), where best is the minimum distance
// among the surviving matches. Near-ties with the best match survive; a lone
// excellent match does not drag irrelevant ones along.
func ApplyDistanceCutoff(matches []models.Match, maxDistance, nearTieDelta float64) []models.Match {
	if len(matches) == 0 {
		return matches
	}

	best := math.Inf(1)
	for _, m := range matches {
		if d := matchDistance(m); d < best {
			best = d
		}
	}

	cutoff := math.Min(maxDistance, best+nearTieDelta)

	out := matches[:0:0]
	for _, m := range matches {
		if matchDistance(m) <= cutoff {
			out = append(out, m)
		}
	}
	return out
}
