// ABOUTME: PromptRecord and match structures for the prompt vault
// ABOUTME: One metadata payload is stored alongside each vector in the index
package models

import "time"

// MetadataSchemaVersion is stamped on every stored record so future readers
// can tell which layout produced it.
const MetadataSchemaVersion = 1

// PromptMetadata is the metadata payload stored with each vector.
type PromptMetadata struct {
	Text          string    `json:"text"`
	Preview       string    `json:"preview"`
	Title         string    `json:"title,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Source        string    `json:"source,omitempty"`
	UploadID      string    `json:"uploadId,omitempty"`
	ChunkIndex    *int      `json:"chunkIndex,omitempty"`
	ChunkCount    int       `json:"chunkCount,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Length        int       `json:"length"`
	WordCount     int       `json:"wordCount"`
	ModelID       string    `json:"modelId,omitempty"`
	SchemaVersion int       `json:"schemaVersion"`
}

// HasTag reports whether the record carries the given tag.
func (m *PromptMetadata) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Recency is the timestamp used to order records when no similarity score is
// available: updatedAt, falling back to createdAt.
func (m *PromptMetadata) Recency() time.Time {
	if !m.UpdatedAt.IsZero() {
		return m.UpdatedAt
	}
	return m.CreatedAt
}

// PromptRecord is one stored prompt.
type PromptRecord struct {
	Key      string         `json:"key"`
	Metadata PromptMetadata `json:"metadata"`
}

// Match is a prompt returned from a query or listing. Distance is set only
// for similarity queries (lower is more similar).
type Match struct {
	Key      string         `json:"key"`
	Metadata PromptMetadata `json:"metadata"`
	Distance *float64       `json:"distance,omitempty"`
}
