// ABOUTME: MCP tool handler implementations for the prompt vault server
// ABOUTME: Parses typed requests, invokes the store, and shapes responses
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/promptvault/promptvault/internal/models"
	"github.com/promptvault/promptvault/internal/store"
)

// Handlers contains the handler functions for all prompt vault tools
type Handlers struct {
	store    *store.Store
	sessions *SessionRegistry
	cfg      ToolConfig
}

// userID resolves the acting user: the session registry entry for the live
// session when one exists, then the connection context, then the configured
// default identity (stdio transport).
func (h *Handlers) userID(ctx context.Context) string {
	if session := mcpserver.ClientSessionFromContext(ctx); session != nil {
		if userID, ok := h.sessions.UserFor(session.SessionID()); ok {
			return userID
		}
	}
	if userID, ok := UserIDFromContext(ctx); ok {
		return userID
	}
	return h.cfg.DefaultUserID
}

// SavePrompt handles the save_prompt tool
func (h *Handlers) SavePrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := parseSaveRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	record, indexName, err := h.store.UpsertOne(ctx, h.userID(ctx), req.Text, store.SaveOptions{
		Title:  req.Title,
		Tags:   req.Tags,
		Source: req.Source,
	})
	if err != nil {
		return storeErrorResult("save failed", err), nil
	}

	return jsonResult(map[string]interface{}{
		"key":       record.Key,
		"indexName": indexName,
		"metadata":  record.Metadata,
	})
}

// SavePrompts handles the save_prompts tool
func (h *Handlers) SavePrompts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := parseSaveBatchRequest(request, h.cfg.BatchMax)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	items := make([]store.BatchItem, len(req.Prompts))
	for i, p := range req.Prompts {
		items[i] = store.BatchItem{
			Text:   p.Text,
			Title:  p.Title,
			Tags:   p.Tags,
			Source: p.Source,
		}
	}

	result, err := h.store.UpsertBatch(ctx, h.userID(ctx), items, req.UploadID)
	if err != nil {
		return storeErrorResult("batch save failed", err), nil
	}

	keys := make([]string, len(result.Saved))
	for i, saved := range result.Saved {
		keys[i] = saved.Key
	}

	return jsonResult(map[string]interface{}{
		"indexName": result.IndexName,
		"uploadId":  result.UploadID,
		"count":     len(result.Saved),
		"keys":      keys,
	})
}

// UpdatePrompt handles the update_prompt tool
func (h *Handlers) UpdatePrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := parseUpdateRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	record, indexName, err := h.store.Update(ctx, h.userID(ctx), req.Key, req.Text, store.SaveOptions{
		Title:  req.Title,
		Tags:   req.Tags,
		Source: req.Source,
	})
	if err != nil {
		return storeErrorResult("update failed", err), nil
	}

	return jsonResult(map[string]interface{}{
		"indexName": indexName,
		"metadata":  record.Metadata,
	})
}

// DeletePrompt handles the delete_prompt tool
func (h *Handlers) DeletePrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := parseDeleteRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	indexName, deleted, err := h.store.Delete(ctx, h.userID(ctx), req.Key)
	if err != nil {
		return storeErrorResult("delete failed", err), nil
	}

	return jsonResult(map[string]interface{}{
		"indexName": indexName,
		"deleted":   deleted,
	})
}

// SearchPrompts handles the search_prompts tool. With a query it runs a
// similarity search; without one it lists recent prompts. Both modes share
// the attribute filters and text de-duplication.
func (h *Handlers) SearchPrompts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := parseSearchRequest(request, h.cfg.DefaultTopK, h.cfg.MaxDistance)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	userID := h.userID(ctx)
	queryMode := req.Query != ""

	var matches []models.Match
	if queryMode {
		matches, _, err = h.store.Query(ctx, userID, req.Query, req.Limit)
	} else {
		limit := req.Limit
		if limit <= 0 {
			limit = h.cfg.ListLimit
		}
		matches, _, err = h.store.List(ctx, userID, limit)
	}
	if err != nil {
		return storeErrorResult("search failed", err), nil
	}

	filters := store.Filters{
		Source:   req.Source,
		UploadID: req.UploadID,
		TagsAny:  req.TagsAny,
		TagsAll:  req.TagsAll,
	}
	matches = filters.Apply(matches)

	if queryMode {
		matches = store.DeduplicateByText(matches, store.DedupeClosest)
		matches = store.ApplyDistanceCutoff(matches, req.MaxDistance, h.cfg.NearTieDelta)
	} else {
		matches = store.DeduplicateByText(matches, store.DedupeNewest)
	}

	prompts := make([]string, len(matches))
	for i, m := range matches {
		prompts[i] = m.Metadata.Text
	}

	return jsonResult(map[string]interface{}{
		"prompts": prompts,
		"matches": matches,
	})
}

// storeErrorResult maps the store error taxonomy to a structured tool error.
func storeErrorResult(prefix string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s: %v", prefix, errorKind(err), err))
}

func errorKind(err error) string {
	var (
		validationErr *store.ValidationError
		embeddingErr  *store.EmbeddingError
		notFoundErr   *store.IndexNotFoundError
		externalErr   *store.ExternalServiceError
	)
	switch {
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &embeddingErr):
		return "embedding"
	case errors.As(err, &notFoundErr):
		return "not_found"
	case errors.As(err, &externalErr):
		return "external"
	default:
		return "internal"
	}
}

func jsonResult(payload interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(payload)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
