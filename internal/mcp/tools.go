// ABOUTME: MCP tool definitions and registration for the prompt vault server
// ABOUTME: Declares JSON schemas for the five prompt tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/promptvault/promptvault/internal/store"
)

// ToolConfig carries the tool-layer limits and defaults.
type ToolConfig struct {
	BatchMax      int
	DefaultTopK   int
	ListLimit     int
	MaxDistance   float64
	NearTieDelta  float64
	DefaultUserID string
}

// promptObjectSchema describes one prompt in a batch save.
var promptObjectSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"text": map[string]interface{}{
			"type":        "string",
			"description": "Prompt body",
		},
		"title": map[string]interface{}{
			"type":        "string",
			"description": "Optional short label",
		},
		"tags": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Optional tags; inferred when omitted",
		},
		"source": map[string]interface{}{
			"type":        "string",
			"description": "Optional origin label (e.g. 'chatgpt', 'web')",
		},
	},
	"required": []string{"text"},
}

// RegisterTools registers all prompt vault tools with the server
func RegisterTools(server *mcpserver.MCPServer, promptStore *store.Store, sessions *SessionRegistry, cfg ToolConfig) *Handlers {
	handlers := &Handlers{
		store:    promptStore,
		sessions: sessions,
		cfg:      cfg,
	}

	// 1. save_prompt - Save a single prompt
	server.AddTool(mcp.Tool{
		Name:        "save_prompt",
		Description: "Save a prompt to the vault. Re-saving the same text updates the existing record instead of creating a duplicate.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Prompt body to save",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Optional short label; inferred from a leading heading when omitted",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Optional tags; inferred when omitted",
				},
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Optional origin label (e.g. 'chatgpt', 'web')",
				},
			},
			Required: []string{"text"},
		},
	}, handlers.SavePrompt)

	// 2. save_prompts - Save a batch of prompts in one upload
	server.AddTool(mcp.Tool{
		Name:        "save_prompts",
		Description: "Save several prompts in one call, either as a prompts array or as a raw text block that is split on blank lines, headings, and list items. Duplicate texts within the batch collapse to one record; all saved records share an upload id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"prompts": map[string]interface{}{
					"type":        "array",
					"items":       promptObjectSchema,
					"description": "Prompts to save; provide this or text",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Raw block of pasted prompts to split and save; numbered headings ('## 1. Label') title the following prompt",
				},
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Optional origin label applied to every prompt split from text",
				},
				"upload_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional batch identifier; generated when omitted",
				},
			},
		},
	}, handlers.SavePrompts)

	// 3. update_prompt - Update an existing prompt in place
	server.AddTool(mcp.Tool{
		Name:        "update_prompt",
		Description: "Update the prompt stored at a key with new text. Title, tags, and source fall back to the stored values when omitted.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"key": map[string]interface{}{
					"type":        "string",
					"description": "Key of the prompt to update",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "New prompt body",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Optional new title",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Optional new tags",
				},
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Optional new origin label",
				},
			},
			Required: []string{"key", "text"},
		},
	}, handlers.UpdatePrompt)

	// 4. delete_prompt - Delete a prompt by key
	server.AddTool(mcp.Tool{
		Name:        "delete_prompt",
		Description: "Delete the prompt stored at a key. Deleting from an empty vault reports deleted=false.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"key": map[string]interface{}{
					"type":        "string",
					"description": "Key of the prompt to delete",
				},
			},
			Required: []string{"key"},
		},
	}, handlers.DeletePrompt)

	// 5. search_prompts - Similarity search or plain listing
	server.AddTool(mcp.Tool{
		Name:        "search_prompts",
		Description: "Search saved prompts by similarity, or list them when no query is given. Results can be filtered by source, upload id, and tags.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search text; omit to list recent prompts instead",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return",
				},
				"max_distance": map[string]interface{}{
					"type":        "number",
					"description": "Absolute cosine-distance ceiling for matches",
				},
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Only return prompts with this source",
				},
				"upload_id": map[string]interface{}{
					"type":        "string",
					"description": "Only return prompts from this batch upload",
				},
				"tags_any": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Only return prompts carrying at least one of these tags",
				},
				"tags_all": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Only return prompts carrying every one of these tags",
				},
			},
		},
	}, handlers.SearchPrompts)

	return handlers
}
