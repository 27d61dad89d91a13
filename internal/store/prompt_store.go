// ABOUTME: Prompt store orchestration over the embedding client and vector index
// ABOUTME: Upsert, batch save, update, delete, query, and list per-user prompts
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/promptvault/promptvault/internal/models"
	"github.com/promptvault/promptvault/internal/promptkey"
	"github.com/promptvault/promptvault/internal/tags"
	"github.com/promptvault/promptvault/internal/textutil"
	"github.com/promptvault/promptvault/internal/vector"
)

// maxTopK caps how many neighbors a single query may request from the
// service.
const maxTopK = 200

// Embedder produces embedding vectors for prompt text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	ModelID() string
}

// Indexes is the per-user view of the vector index service.
type Indexes interface {
	EnsureIndex(ctx context.Context, userID string) (string, error)
	IndexExists(ctx context.Context, userID string) (string, bool, error)
	Upsert(ctx context.Context, index string, records []vector.Record) error
	Fetch(ctx context.Context, index string, ids []string) ([]vector.Record, error)
	Delete(ctx context.Context, index string, ids []string) error
	Query(ctx context.Context, index string, req vector.QueryRequest) ([]vector.ScoredRecord, error)
	List(ctx context.Context, index string, limit int) ([]vector.Record, error)
}

// Store orchestrates prompt persistence. All operations are scoped to a
// userID, which selects the index and nothing else.
type Store struct {
	embedder Embedder
	indexes  Indexes
	now      func() time.Time
}

// NewStore creates a prompt store.
func NewStore(embedder Embedder, indexes Indexes) *Store {
	return &Store{
		embedder: embedder,
		indexes:  indexes,
		now:      time.Now,
	}
}

// SaveOptions are the optional fields of a save or update.
type SaveOptions struct {
	Title  string
	Tags   []string
	Source string
}

// BatchItem is one prompt in a batch save.
type BatchItem struct {
	Text   string
	Title  string
	Tags   []string
	Source string
}

// SavedPrompt is one record written by a batch save.
type SavedPrompt struct {
	Key      string                `json:"key"`
	Metadata models.PromptMetadata `json:"metadata"`
}

// BatchResult is the outcome of a batch save.
type BatchResult struct {
	IndexName string        `json:"indexName"`
	UploadID  string        `json:"uploadId"`
	Saved     []SavedPrompt `json:"saved"`
}

// UpsertOne saves a single prompt. Re-saving text that canonicalizes to the
// same form overwrites the prior record at the same key.
func (s *Store) UpsertOne(ctx context.Context, userID, text string, opts SaveOptions) (*models.PromptRecord, string, error) {
	title, body, err := s.prepareText(text, opts.Title)
	if err != nil {
		return nil, "", err
	}

	key := promptkey.Derive(body)

	promptTags := tags.Normalize(opts.Tags)
	if promptTags == nil {
		promptTags = tags.Infer(title, body)
	}

	vec, err := s.embedder.Embed(ctx, body)
	if err != nil {
		return nil, "", &EmbeddingError{Err: err}
	}

	indexName, err := s.indexes.EnsureIndex(ctx, userID)
	if err != nil {
		return nil, "", &ExternalServiceError{Op: "ensure index", Err: err}
	}

	now := s.now()
	meta := s.buildMetadata(body, title, promptTags, opts.Source, now, now)

	if err := s.upsertRecords(ctx, indexName, []string{key}, [][]float64{vec}, []models.PromptMetadata{meta}); err != nil {
		return nil, "", err
	}

	return &models.PromptRecord{Key: key, Metadata: meta}, indexName, nil
}

// UpsertBatch saves several prompts in one call. Items that are blank after
// title extraction are dropped; items whose texts canonicalize to the same
// key are deduplicated (first occurrence wins). The surviving items share an
// uploadId and are positioned with chunkIndex/chunkCount over the
// deduplicated set. An empty surviving set is a successful zero-record save.
func (s *Store) UpsertBatch(ctx context.Context, userID string, items []BatchItem, uploadID string) (*BatchResult, error) {
	if uploadID == "" {
		uploadID = uuid.New().String()
	}

	type pending struct {
		key    string
		title  string
		text   string
		tags   []string
		source string
	}

	seen := make(map[string]bool, len(items))
	var surviving []pending
	for _, item := range items {
		title, body, err := s.prepareText(item.Text, item.Title)
		if err != nil {
			// Blank after normalization: dropped, not fatal to the batch.
			continue
		}
		key := promptkey.Derive(body)
		if seen[key] {
			continue
		}
		seen[key] = true
		surviving = append(surviving, pending{
			key:    key,
			title:  title,
			text:   body,
			tags:   item.Tags,
			source: item.Source,
		})
	}

	result := &BatchResult{
		IndexName: vector.IndexName(userID),
		UploadID:  uploadID,
	}
	if len(surviving) == 0 {
		return result, nil
	}

	// Embedding failures abort the whole batch; the write below is a single
	// multi-vector call, so the batch lands all-or-nothing.
	vectors := make([][]float64, len(surviving))
	for i, p := range surviving {
		vec, err := s.embedder.Embed(ctx, p.text)
		if err != nil {
			return nil, &EmbeddingError{Err: err}
		}
		vectors[i] = vec
	}

	indexName, err := s.indexes.EnsureIndex(ctx, userID)
	if err != nil {
		return nil, &ExternalServiceError{Op: "ensure index", Err: err}
	}
	result.IndexName = indexName

	now := s.now()
	chunkCount := len(surviving)
	keys := make([]string, chunkCount)
	metas := make([]models.PromptMetadata, chunkCount)
	for i, p := range surviving {
		promptTags := tags.Normalize(p.tags)
		if promptTags == nil {
			promptTags = tags.Infer(p.title, p.text)
		}

		meta := s.buildMetadata(p.text, p.title, promptTags, p.source, now, now)
		meta.UploadID = uploadID
		idx := i
		meta.ChunkIndex = &idx
		meta.ChunkCount = chunkCount

		keys[i] = p.key
		metas[i] = meta
	}

	if err := s.upsertRecords(ctx, indexName, keys, vectors, metas); err != nil {
		return nil, err
	}

	result.Saved = make([]SavedPrompt, chunkCount)
	for i := range keys {
		result.Saved[i] = SavedPrompt{Key: keys[i], Metadata: metas[i]}
	}
	return result, nil
}

// Update overwrites the record at key with new text, re-embedding it. The
// user's index must already exist; title, tags, source, and createdAt fall
// back to the stored record when the caller supplies no override.
func (s *Store) Update(ctx context.Context, userID, key, text string, opts SaveOptions) (*models.PromptRecord, string, error) {
	if key == "" {
		return nil, "", &ValidationError{Field: "key", Reason: "must not be empty"}
	}

	title, body, err := s.prepareText(text, opts.Title)
	if err != nil {
		return nil, "", err
	}

	indexName, exists, err := s.indexes.IndexExists(ctx, userID)
	if err != nil {
		return nil, "", &ExternalServiceError{Op: "probe index", Err: err}
	}
	if !exists {
		return nil, "", &IndexNotFoundError{UserID: userID}
	}

	// Best-effort fetch of the stored metadata; a failed fetch only costs
	// the fallback fields, it does not abort the update.
	var existing *models.PromptMetadata
	records, err := s.indexes.Fetch(ctx, indexName, []string{key})
	if err != nil {
		log.Printf("Warning: fetch existing metadata for %s failed: %v", key, err)
	} else {
		for _, rec := range records {
			if rec.ID != key || len(rec.Metadata) == 0 {
				continue
			}
			var meta models.PromptMetadata
			if jsonErr := json.Unmarshal(rec.Metadata, &meta); jsonErr == nil {
				existing = &meta
			}
		}
	}

	if title == "" && existing != nil {
		title = existing.Title
	}

	promptTags := tags.Normalize(opts.Tags)
	if promptTags == nil && existing != nil {
		promptTags = existing.Tags
	}
	if promptTags == nil {
		promptTags = tags.Infer(title, body)
	}

	source := opts.Source
	if source == "" && existing != nil {
		source = existing.Source
	}

	vec, err := s.embedder.Embed(ctx, body)
	if err != nil {
		return nil, "", &EmbeddingError{Err: err}
	}

	now := s.now()
	createdAt := now
	if existing != nil && !existing.CreatedAt.IsZero() {
		createdAt = existing.CreatedAt
	}

	meta := s.buildMetadata(body, title, promptTags, source, createdAt, now)
	if existing != nil {
		meta.UploadID = existing.UploadID
		meta.ChunkIndex = existing.ChunkIndex
		meta.ChunkCount = existing.ChunkCount
	}

	if err := s.upsertRecords(ctx, indexName, []string{key}, [][]float64{vec}, []models.PromptMetadata{meta}); err != nil {
		return nil, "", err
	}

	return &models.PromptRecord{Key: key, Metadata: meta}, indexName, nil
}

// Delete removes the record at key. A user with no index cannot have the
// record, so that case reports deleted=false without error. When the index
// exists the service delete is idempotent, so deleted=true is reported even
// if the key was never present.
func (s *Store) Delete(ctx context.Context, userID, key string) (string, bool, error) {
	if key == "" {
		return "", false, &ValidationError{Field: "key", Reason: "must not be empty"}
	}

	indexName, exists, err := s.indexes.IndexExists(ctx, userID)
	if err != nil {
		return "", false, &ExternalServiceError{Op: "probe index", Err: err}
	}
	if !exists {
		return indexName, false, nil
	}

	if err := s.indexes.Delete(ctx, indexName, []string{key}); err != nil {
		return indexName, false, &ExternalServiceError{Op: "delete", Err: err}
	}
	return indexName, true, nil
}

// Query embeds queryText and returns the topK nearest prompts. Unlike update
// and delete, a query may lazily provision the user's index.
func (s *Store) Query(ctx context.Context, userID, queryText string, topK int) ([]models.Match, string, error) {
	if textutil.Normalize(queryText) == "" {
		return nil, "", &ValidationError{Field: "query", Reason: "must not be blank"}
	}
	if topK <= 0 {
		topK = 1
	}

	indexName, err := s.indexes.EnsureIndex(ctx, userID)
	if err != nil {
		return nil, "", &ExternalServiceError{Op: "ensure index", Err: err}
	}

	vec, err := s.embedder.Embed(ctx, textutil.Normalize(queryText))
	if err != nil {
		return nil, "", &EmbeddingError{Err: err}
	}

	requested := topK
	if topK > maxTopK {
		topK = maxTopK
	}

	scored, err := s.indexes.Query(ctx, indexName, vector.QueryRequest{
		Vector:          vec,
		TopK:            topK,
		IncludeMetadata: true,
		IncludeDistance: true,
	})
	if err != nil {
		return nil, "", &ExternalServiceError{Op: "query", Err: err}
	}

	matches := make([]models.Match, 0, len(scored))
	for _, rec := range scored {
		meta, ok := decodeMetadata(rec.Metadata)
		if !ok {
			continue
		}
		distance := rec.Distance
		matches = append(matches, models.Match{
			Key:      rec.ID,
			Metadata: meta,
			Distance: &distance,
		})
	}
	if len(matches) > requested {
		matches = matches[:requested]
	}
	return matches, indexName, nil
}

// List returns up to limit prompts without similarity ranking, in whatever
// order the service yields them.
func (s *Store) List(ctx context.Context, userID string, limit int) ([]models.Match, string, error) {
	if limit <= 0 {
		limit = 1
	}

	indexName, err := s.indexes.EnsureIndex(ctx, userID)
	if err != nil {
		return nil, "", &ExternalServiceError{Op: "ensure index", Err: err}
	}

	records, err := s.indexes.List(ctx, indexName, limit)
	if err != nil {
		return nil, "", &ExternalServiceError{Op: "list", Err: err}
	}

	matches := make([]models.Match, 0, len(records))
	for _, rec := range records {
		meta, ok := decodeMetadata(rec.Metadata)
		if !ok {
			continue
		}
		matches = append(matches, models.Match{Key: rec.ID, Metadata: meta})
	}
	return matches, indexName, nil
}

// prepareText extracts an inline title when none was supplied and normalizes
// the body, rejecting input that is blank afterwards.
func (s *Store) prepareText(raw, suppliedTitle string) (title, body string, err error) {
	title = suppliedTitle
	if title != "" {
		body = textutil.Normalize(raw)
	} else {
		title, body = textutil.ExtractInlineTitle(raw)
	}
	if body == "" {
		return "", "", &ValidationError{Field: "text", Reason: "must not be blank"}
	}
	return title, body, nil
}

func (s *Store) buildMetadata(body, title string, promptTags []string, source string, createdAt, updatedAt time.Time) models.PromptMetadata {
	return models.PromptMetadata{
		Text:          body,
		Preview:       textutil.Preview(body),
		Title:         title,
		Tags:          promptTags,
		Source:        source,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
		Length:        len(body),
		WordCount:     textutil.WordCount(body),
		ModelID:       s.embedder.ModelID(),
		SchemaVersion: models.MetadataSchemaVersion,
	}
}

func (s *Store) upsertRecords(ctx context.Context, indexName string, keys []string, vectors [][]float64, metas []models.PromptMetadata) error {
	records := make([]vector.Record, len(keys))
	for i := range keys {
		payload, err := json.Marshal(metas[i])
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", keys[i], err)
		}
		records[i] = vector.Record{ID: keys[i], Vector: vectors[i], Metadata: payload}
	}
	if err := s.indexes.Upsert(ctx, indexName, records); err != nil {
		return &ExternalServiceError{Op: "upsert", Err: err}
	}
	return nil
}

func decodeMetadata(raw json.RawMessage) (models.PromptMetadata, bool) {
	var meta models.PromptMetadata
	if len(raw) == 0 {
		return meta, false
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return meta, false
	}
	if meta.Text == "" {
		return meta, false
	}
	return meta, true
}
