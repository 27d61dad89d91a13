// ABOUTME: Serve command starts the prompt vault MCP server
// ABOUTME: Supports stdio for local agents and SSE for hosted deployments
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/promptvault/promptvault/internal/config"
	"github.com/promptvault/promptvault/internal/llm"
	"github.com/promptvault/promptvault/internal/mcp"
	"github.com/promptvault/promptvault/internal/store"
	"github.com/promptvault/promptvault/internal/vector"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	var (
		transport string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the prompt vault MCP server

With the stdio transport (default) the server speaks MCP over
stdin/stdout, which is how desktop agents launch it. With the SSE
transport it listens on an HTTP address and each connection becomes
its own session, whose user identity arrives from the auth gateway.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(transport, addr)
		},
		Example: `  # Serve over stdio (typically launched by the agent)
  promptvault serve

  # Serve over SSE behind an authenticating proxy
  promptvault serve --transport sse --addr :8931`,
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "transport to serve on: stdio or sse")
	cmd.Flags().StringVar(&addr, "addr", ":8931", "listen address for the sse transport")

	return cmd
}

func runServe(transport, addr string) error {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil && !quiet {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY not set - embeddings cannot work without it")
	}

	embedder, err := llm.NewClientWithConfig(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedding client: %w", err)
	}

	vectorClient := vector.NewClient(cfg.VectorURL, cfg.VectorToken, cfg.VectorTimeout)
	indexes := vector.NewManager(vectorClient, embedder)
	promptStore := store.NewStore(embedder, indexes)
	sessions := mcp.NewSessionRegistry()

	server := mcpserver.NewMCPServer(
		"Prompt Vault",
		"0.1.0",
		mcpserver.WithHooks(mcp.SessionHooks(sessions, cfg.DefaultUserID)),
	)

	mcp.RegisterTools(server, promptStore, sessions, mcp.ToolConfig{
		BatchMax:      cfg.BatchMax,
		DefaultTopK:   cfg.DefaultTopK,
		ListLimit:     cfg.ListLimit,
		MaxDistance:   cfg.MaxDistance,
		NearTieDelta:  cfg.NearTieDelta,
		DefaultUserID: cfg.DefaultUserID,
	})

	switch transport {
	case "stdio":
		if !quiet {
			log.Println("Prompt vault MCP server starting on stdio...")
		}
		return mcpserver.ServeStdio(server)

	case "sse":
		sseServer := mcpserver.NewSSEServer(server,
			mcpserver.WithSSEContextFunc(mcp.SSEUserContextFunc),
		)

		errCh := make(chan error, 1)
		go func() {
			errCh <- sseServer.Start(addr)
		}()
		if !quiet {
			log.Printf("Prompt vault MCP server listening on %s (sse)...", addr)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			if !quiet {
				log.Printf("Received %v, shutting down...", sig)
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return sseServer.Shutdown(shutdownCtx)
		}

	default:
		return fmt.Errorf("unknown transport %q (expected stdio or sse)", transport)
	}
}
