// ABOUTME: Main entry point for the prompt vault MCP server on stdio
// ABOUTME: Initializes the embedding client, vector store, and MCP tools
package main

import (
	"log"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	openai "github.com/sashabaranov/go-openai"

	"github.com/promptvault/promptvault/internal/config"
	"github.com/promptvault/promptvault/internal/llm"
	"github.com/promptvault/promptvault/internal/mcp"
	"github.com/promptvault/promptvault/internal/store"
	"github.com/promptvault/promptvault/internal/vector"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.OpenAIKey == "" {
		log.Fatal("OPENAI_API_KEY not set - embeddings cannot work without it")
	}

	embedder, err := llm.NewClientWithConfig(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		log.Fatalf("Failed to initialize embedding client: %v", err)
	}

	vectorClient := vector.NewClient(cfg.VectorURL, cfg.VectorToken, cfg.VectorTimeout)
	indexes := vector.NewManager(vectorClient, embedder)
	promptStore := store.NewStore(embedder, indexes)
	sessions := mcp.NewSessionRegistry()

	// Create MCP server
	server := mcpserver.NewMCPServer(
		"Prompt Vault",
		"0.1.0",
		mcpserver.WithHooks(mcp.SessionHooks(sessions, cfg.DefaultUserID)),
	)

	// Register MCP tools
	mcp.RegisterTools(server, promptStore, sessions, mcp.ToolConfig{
		BatchMax:      cfg.BatchMax,
		DefaultTopK:   cfg.DefaultTopK,
		ListLimit:     cfg.ListLimit,
		MaxDistance:   cfg.MaxDistance,
		NearTieDelta:  cfg.NearTieDelta,
		DefaultUserID: cfg.DefaultUserID,
	})

	// Start server with stdio transport
	log.Println("Prompt vault MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
