// ABOUTME: Typed request schemas for the prompt vault tools
// ABOUTME: Arguments are validated once at the boundary into concrete structs
package mcp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/promptvault/promptvault/internal/textutil"
)

// Named errors for missing or invalid request fields.
var (
	ErrMissingText    = errors.New("text is required and must be a non-empty string")
	ErrMissingKey     = errors.New("key is required and must be a non-empty string")
	ErrMissingPrompts = errors.New("either a non-empty prompts array or a text block with at least one prompt is required")
	ErrInvalidPrompt  = errors.New("each prompt must be an object with a non-empty text field")
	ErrInvalidTags    = errors.New("tags must be an array of strings")
)

// BatchTooLargeError reports a batch save above the configured maximum.
type BatchTooLargeError struct {
	Count int
	Max   int
}

func (e *BatchTooLargeError) Error() string {
	return fmt.Sprintf("prompt count %d exceeds maximum %d", e.Count, e.Max)
}

// SaveRequest is the argument set of save_prompt.
type SaveRequest struct {
	Text   string
	Title  string
	Tags   []string
	Source string
}

// BatchPrompt is one entry of a save_prompts batch.
type BatchPrompt struct {
	Text   string
	Title  string
	Tags   []string
	Source string
}

// SaveBatchRequest is the argument set of save_prompts.
type SaveBatchRequest struct {
	Prompts  []BatchPrompt
	UploadID string
}

// UpdateRequest is the argument set of update_prompt.
type UpdateRequest struct {
	Key    string
	Text   string
	Title  string
	Tags   []string
	Source string
}

// DeleteRequest is the argument set of delete_prompt.
type DeleteRequest struct {
	Key string
}

// SearchRequest is the argument set of search_prompts. An empty Query means
// list mode.
type SearchRequest struct {
	Query       string
	Limit       int
	MaxDistance float64
	Source      string
	UploadID    string
	TagsAny     []string
	TagsAll     []string
}

func parseSaveRequest(request mcp.CallToolRequest) (*SaveRequest, error) {
	text, err := request.RequireString("text")
	if err != nil || strings.TrimSpace(text) == "" {
		return nil, ErrMissingText
	}

	tagList, err := stringArrayArg(request, "tags")
	if err != nil {
		return nil, err
	}

	return &SaveRequest{
		Text:   text,
		Title:  request.GetString("title", ""),
		Tags:   tagList,
		Source: request.GetString("source", ""),
	}, nil
}

func parseSaveBatchRequest(request mcp.CallToolRequest, batchMax int) (*SaveBatchRequest, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil, ErrMissingPrompts
	}

	var prompts []BatchPrompt
	if args["prompts"] != nil {
		rawPrompts, ok := args["prompts"].([]interface{})
		if !ok || len(rawPrompts) == 0 {
			return nil, ErrMissingPrompts
		}

		prompts = make([]BatchPrompt, 0, len(rawPrompts))
		for _, raw := range rawPrompts {
			entry, ok := raw.(map[string]interface{})
			if !ok {
				return nil, ErrInvalidPrompt
			}
			text, ok := entry["text"].(string)
			if !ok || strings.TrimSpace(text) == "" {
				return nil, ErrInvalidPrompt
			}

			prompt := BatchPrompt{Text: text}
			if title, ok := entry["title"].(string); ok {
				prompt.Title = title
			}
			if source, ok := entry["source"].(string); ok {
				prompt.Source = source
			}
			if rawTags, exists := entry["tags"]; exists {
				tagList, err := toStringArray(rawTags)
				if err != nil {
					return nil, err
				}
				prompt.Tags = tagList
			}
			prompts = append(prompts, prompt)
		}
	} else {
		// Raw paste mode: split the block on blank lines, headings, and
		// list items, carrying heading-derived titles onto the pieces.
		pieces := textutil.SplitPrompts(request.GetString("text", ""))
		if len(pieces) == 0 {
			return nil, ErrMissingPrompts
		}

		source := request.GetString("source", "")
		prompts = make([]BatchPrompt, 0, len(pieces))
		for _, piece := range pieces {
			prompts = append(prompts, BatchPrompt{
				Text:   piece.Text,
				Title:  piece.Title,
				Source: source,
			})
		}
	}

	if len(prompts) > batchMax {
		return nil, &BatchTooLargeError{Count: len(prompts), Max: batchMax}
	}

	return &SaveBatchRequest{
		Prompts:  prompts,
		UploadID: request.GetString("upload_id", ""),
	}, nil
}

func parseUpdateRequest(request mcp.CallToolRequest) (*UpdateRequest, error) {
	key, err := request.RequireString("key")
	if err != nil || strings.TrimSpace(key) == "" {
		return nil, ErrMissingKey
	}
	text, err := request.RequireString("text")
	if err != nil || strings.TrimSpace(text) == "" {
		return nil, ErrMissingText
	}

	tagList, err := stringArrayArg(request, "tags")
	if err != nil {
		return nil, err
	}

	return &UpdateRequest{
		Key:    strings.TrimSpace(key),
		Text:   text,
		Title:  request.GetString("title", ""),
		Tags:   tagList,
		Source: request.GetString("source", ""),
	}, nil
}

func parseDeleteRequest(request mcp.CallToolRequest) (*DeleteRequest, error) {
	key, err := request.RequireString("key")
	if err != nil || strings.TrimSpace(key) == "" {
		return nil, ErrMissingKey
	}
	return &DeleteRequest{Key: strings.TrimSpace(key)}, nil
}

func parseSearchRequest(request mcp.CallToolRequest, defaultLimit int, defaultMaxDistance float64) (*SearchRequest, error) {
	tagsAny, err := stringArrayArg(request, "tags_any")
	if err != nil {
		return nil, err
	}
	tagsAll, err := stringArrayArg(request, "tags_all")
	if err != nil {
		return nil, err
	}

	return &SearchRequest{
		Query:       request.GetString("query", ""),
		Limit:       request.GetInt("limit", defaultLimit),
		MaxDistance: request.GetFloat("max_distance", defaultMaxDistance),
		Source:      request.GetString("source", ""),
		UploadID:    request.GetString("upload_id", ""),
		TagsAny:     tagsAny,
		TagsAll:     tagsAll,
	}, nil
}

// stringArrayArg extracts an optional string-array argument.
func stringArrayArg(request mcp.CallToolRequest, name string) ([]string, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil, nil
	}
	raw, exists := args[name]
	if !exists || raw == nil {
		return nil, nil
	}
	return toStringArray(raw)
}

func toStringArray(raw interface{}) ([]string, error) {
	arr, ok := raw.([]interface{})
	if !ok {
		return nil, ErrInvalidTags
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, ErrInvalidTags
		}
		out = append(out, s)
	}
	return out, nil
}
