// ABOUTME: Tests for the tool handlers over an in-memory store
// ABOUTME: Covers user resolution, search modes, and error shaping
package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/promptvault/promptvault/internal/models"
	"github.com/promptvault/promptvault/internal/store"
	"github.com/promptvault/promptvault/internal/vector"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return []float64{1, 0, 0}, nil
}

func (stubEmbedder) ModelID() string { return "stub-model" }

// memIndexes is an in-memory Indexes with scripted query distances.
type memIndexes struct {
	records   map[string]map[string]vector.Record
	distances map[string]float64
}

func newMemIndexes() *memIndexes {
	return &memIndexes{
		records:   make(map[string]map[string]vector.Record),
		distances: make(map[string]float64),
	}
}

func (m *memIndexes) EnsureIndex(ctx context.Context, userID string) (string, error) {
	name := vector.IndexName(userID)
	if _, ok := m.records[name]; !ok {
		m.records[name] = make(map[string]vector.Record)
	}
	return name, nil
}

func (m *memIndexes) IndexExists(ctx context.Context, userID string) (string, bool, error) {
	name := vector.IndexName(userID)
	_, ok := m.records[name]
	return name, ok, nil
}

func (m *memIndexes) Upsert(ctx context.Context, index string, records []vector.Record) error {
	for _, rec := range records {
		m.records[index][rec.ID] = rec
	}
	return nil
}

func (m *memIndexes) Fetch(ctx context.Context, index string, ids []string) ([]vector.Record, error) {
	var out []vector.Record
	for _, id := range ids {
		if rec, ok := m.records[index][id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memIndexes) Delete(ctx context.Context, index string, ids []string) error {
	for _, id := range ids {
		delete(m.records[index], id)
	}
	return nil
}

func (m *memIndexes) Query(ctx context.Context, index string, req vector.QueryRequest) ([]vector.ScoredRecord, error) {
	var out []vector.ScoredRecord
	for id, rec := range m.records[index] {
		out = append(out, vector.ScoredRecord{Record: rec, Distance: m.distances[id]})
	}
	return out, nil
}

func (m *memIndexes) List(ctx context.Context, index string, limit int) ([]vector.Record, error) {
	var out []vector.Record
	for _, rec := range m.records[index] {
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func newTestHandlers() (*Handlers, *memIndexes) {
	indexes := newMemIndexes()
	promptStore := store.NewStore(stubEmbedder{}, indexes)
	return &Handlers{
		store:    promptStore,
		sessions: NewSessionRegistry(),
		cfg: ToolConfig{
			BatchMax:      20,
			DefaultTopK:   8,
			ListLimit:     50,
			MaxDistance:   0.8,
			NearTieDelta:  0.08,
			DefaultUserID: "local",
		},
	}, indexes
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("tool result content is %T, want text", result.Content[0])
	}
	return text.Text
}

func decodeResult(t *testing.T, result *mcp.CallToolResult, into interface{}) {
	t.Helper()
	if result.IsError {
		t.Fatalf("tool returned error: %s", resultText(t, result))
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), into); err != nil {
		t.Fatalf("decode tool result: %v", err)
	}
}

func TestSavePrompt_RoundTrip(t *testing.T) {
	handlers, _ := newTestHandlers()

	result, err := handlers.SavePrompt(context.Background(), callRequest(map[string]any{
		"text": "Explain this stack trace",
	}))
	if err != nil {
		t.Fatalf("SavePrompt() error = %v", err)
	}

	var resp struct {
		Key       string                `json:"key"`
		IndexName string                `json:"indexName"`
		Metadata  models.PromptMetadata `json:"metadata"`
	}
	decodeResult(t, result, &resp)

	if !strings.HasPrefix(resp.Key, "pr_") {
		t.Errorf("key = %q, want pr_ prefix", resp.Key)
	}
	if resp.IndexName != vector.IndexName("local") {
		t.Errorf("indexName = %q, want the default user's index", resp.IndexName)
	}
	if resp.Metadata.Text != "Explain this stack trace" {
		t.Errorf("metadata text = %q", resp.Metadata.Text)
	}
}

func TestSavePrompt_ValidationErrorShape(t *testing.T) {
	handlers, _ := newTestHandlers()

	result, err := handlers.SavePrompt(context.Background(), callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("SavePrompt() error = %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error result for missing text")
	}
	if text := resultText(t, result); !strings.Contains(text, "text is required") {
		t.Errorf("error text = %q, want the missing-text message", text)
	}
}

func TestUpdatePrompt_MissingIndexKind(t *testing.T) {
	handlers, _ := newTestHandlers()

	result, err := handlers.UpdatePrompt(context.Background(), callRequest(map[string]any{
		"key":  "pr_0123456789abcdef",
		"text": "new body",
	}))
	if err != nil {
		t.Fatalf("UpdatePrompt() error = %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error result for a missing index")
	}
	if text := resultText(t, result); !strings.Contains(text, "not_found") {
		t.Errorf("error text = %q, want the not_found kind", text)
	}
}

func TestDeletePrompt_MissingIndex(t *testing.T) {
	handlers, _ := newTestHandlers()

	result, err := handlers.DeletePrompt(context.Background(), callRequest(map[string]any{
		"key": "pr_0123456789abcdef",
	}))
	if err != nil {
		t.Fatalf("DeletePrompt() error = %v", err)
	}

	var resp struct {
		Deleted bool `json:"deleted"`
	}
	decodeResult(t, result, &resp)
	if resp.Deleted {
		t.Error("deleted = true for a user with no index, want false")
	}
}

func TestSearchPrompts_QueryModeAppliesCutoff(t *testing.T) {
	handlers, indexes := newTestHandlers()
	ctx := context.Background()

	texts := []string{"close match", "near tie", "far away"}
	distances := []float64{0.10, 0.15, 0.50}
	for i, text := range texts {
		result, err := handlers.SavePrompt(ctx, callRequest(map[string]any{"text": text}))
		if err != nil {
			t.Fatalf("save %q error = %v", text, err)
		}
		var resp struct {
			Key string `json:"key"`
		}
		decodeResult(t, result, &resp)
		indexes.distances[resp.Key] = distances[i]
	}

	result, err := handlers.SearchPrompts(ctx, callRequest(map[string]any{
		"query": "match",
	}))
	if err != nil {
		t.Fatalf("SearchPrompts() error = %v", err)
	}

	var resp struct {
		Prompts []string       `json:"prompts"`
		Matches []models.Match `json:"matches"`
	}
	decodeResult(t, result, &resp)

	// Cutoff is min(0.8, 0.10+0.08) = 0.18, so the 0.50 neighbor drops.
	if len(resp.Prompts) != 2 {
		t.Fatalf("got %d prompts, want 2 within the relative cutoff", len(resp.Prompts))
	}
	if resp.Prompts[0] != "close match" || resp.Prompts[1] != "near tie" {
		t.Errorf("prompts = %v, want closest first", resp.Prompts)
	}
	for i, m := range resp.Matches {
		if m.Distance == nil {
			t.Errorf("match %d has no distance in query mode", i)
		}
	}
}

func TestSearchPrompts_ListMode(t *testing.T) {
	handlers, _ := newTestHandlers()
	ctx := context.Background()

	for _, text := range []string{"alpha prompt", "beta prompt"} {
		if _, err := handlers.SavePrompt(ctx, callRequest(map[string]any{"text": text})); err != nil {
			t.Fatalf("save %q error = %v", text, err)
		}
	}

	result, err := handlers.SearchPrompts(ctx, callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("SearchPrompts() error = %v", err)
	}

	var resp struct {
		Prompts []string       `json:"prompts"`
		Matches []models.Match `json:"matches"`
	}
	decodeResult(t, result, &resp)

	if len(resp.Prompts) != 2 {
		t.Fatalf("got %d prompts, want 2", len(resp.Prompts))
	}
	for i, m := range resp.Matches {
		if m.Distance != nil {
			t.Errorf("match %d carries a distance in list mode", i)
		}
	}
}

func TestSearchPrompts_SourceFilter(t *testing.T) {
	handlers, _ := newTestHandlers()
	ctx := context.Background()

	saves := []map[string]any{
		{"text": "from the web", "source": "web"},
		{"text": "from chat", "source": "chatgpt"},
	}
	for _, args := range saves {
		if _, err := handlers.SavePrompt(ctx, callRequest(args)); err != nil {
			t.Fatalf("save error = %v", err)
		}
	}

	result, err := handlers.SearchPrompts(ctx, callRequest(map[string]any{
		"source": "web",
	}))
	if err != nil {
		t.Fatalf("SearchPrompts() error = %v", err)
	}

	var resp struct {
		Prompts []string `json:"prompts"`
	}
	decodeResult(t, result, &resp)

	if len(resp.Prompts) != 1 || resp.Prompts[0] != "from the web" {
		t.Errorf("prompts = %v, want only the web-sourced prompt", resp.Prompts)
	}
}

func TestUserIDResolution(t *testing.T) {
	handlers, _ := newTestHandlers()

	if got := handlers.userID(context.Background()); got != "local" {
		t.Errorf("userID() = %q, want configured default", got)
	}

	ctx := WithUserID(context.Background(), "alice")
	if got := handlers.userID(ctx); got != "alice" {
		t.Errorf("userID() = %q, want context identity", got)
	}
}

func TestSavePrompts_SplitsPastedText(t *testing.T) {
	handlers, _ := newTestHandlers()
	ctx := context.Background()

	result, err := handlers.SavePrompts(ctx, callRequest(map[string]any{
		"text":   "## 1. Coding\nDo the thing\n\n## 2. Writing\nWrite the thing",
		"source": "paste",
	}))
	if err != nil {
		t.Fatalf("SavePrompts() error = %v", err)
	}

	var resp struct {
		UploadID string   `json:"uploadId"`
		Count    int      `json:"count"`
		Keys     []string `json:"keys"`
	}
	decodeResult(t, result, &resp)

	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2 prompts split from the paste", resp.Count)
	}
	if resp.UploadID == "" {
		t.Error("uploadId is empty")
	}

	listResult, err := handlers.SearchPrompts(ctx, callRequest(map[string]any{
		"upload_id": resp.UploadID,
	}))
	if err != nil {
		t.Fatalf("SearchPrompts() error = %v", err)
	}

	var listed struct {
		Matches []models.Match `json:"matches"`
	}
	decodeResult(t, listResult, &listed)

	if len(listed.Matches) != 2 {
		t.Fatalf("listed %d records for the upload, want 2", len(listed.Matches))
	}
	titles := make(map[string]string, len(listed.Matches))
	for _, m := range listed.Matches {
		titles[m.Metadata.Title] = m.Metadata.Text
		if m.Metadata.Source != "paste" {
			t.Errorf("source = %q, want paste on every split record", m.Metadata.Source)
		}
		if m.Metadata.ChunkCount != 2 {
			t.Errorf("chunkCount = %d, want 2", m.Metadata.ChunkCount)
		}
	}
	if titles["Coding"] != "Do the thing" || titles["Writing"] != "Write the thing" {
		t.Errorf("stored records = %v, want heading-derived titles with their bodies", titles)
	}
}

func TestSavePrompts_BatchRoundTrip(t *testing.T) {
	handlers, _ := newTestHandlers()

	result, err := handlers.SavePrompts(context.Background(), callRequest(map[string]any{
		"prompts": []interface{}{
			map[string]interface{}{"text": "first prompt"},
			map[string]interface{}{"text": "first   prompt"},
			map[string]interface{}{"text": "second prompt"},
		},
	}))
	if err != nil {
		t.Fatalf("SavePrompts() error = %v", err)
	}

	var resp struct {
		UploadID string   `json:"uploadId"`
		Count    int      `json:"count"`
		Keys     []string `json:"keys"`
	}
	decodeResult(t, result, &resp)

	if resp.Count != 2 {
		t.Errorf("count = %d, want 2 after dedup", resp.Count)
	}
	if resp.UploadID == "" {
		t.Error("uploadId is empty")
	}
	if len(resp.Keys) != 2 {
		t.Errorf("keys = %v, want 2 entries", resp.Keys)
	}
}

