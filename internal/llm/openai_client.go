// ABOUTME: OpenAI client for prompt embeddings with retry and backoff
// ABOUTME: Memoizes the model's output dimensionality behind a singleflight
package llm

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/singleflight"

	"github.com/promptvault/promptvault/internal/util"
)

// DefaultEmbeddingModel is the default model for embeddings
const DefaultEmbeddingModel = openai.SmallEmbedding3

// dimensionProbe is the fixed string embedded once to learn the model's
// output dimensionality.
const dimensionProbe = "dimension probe"

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel openai.EmbeddingModel
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	model := openai.EmbeddingModel(os.Getenv("PROMPTVAULT_EMBEDDING_MODEL"))
	if model == "" {
		model = DefaultEmbeddingModel
	}

	return &ClientConfig{
		APIKey:         apiKey,
		EmbeddingModel: model,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     time.Second * 2,
	}
}

// Client wraps the OpenAI embeddings API with retry logic and a cached
// dimension probe.
type Client struct {
	client         *openai.Client
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration

	dimGroup singleflight.Group
	dimMu    sync.Mutex
	dim      int
}

// NewClient creates a new embedding client with the given API key using
// default configuration
func NewClient(apiKey string) (*Client, error) {
	return NewClientWithConfig(DefaultConfig(apiKey))
}

// NewClientWithConfig creates a new embedding client with custom configuration
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client:         openai.NewClientWithConfig(clientConfig),
		embeddingModel: config.EmbeddingModel,
		timeout:        timeout,
		maxRetries:     config.MaxRetries,
		retryDelay:     config.RetryDelay,
	}, nil
}

// ModelID returns the embedding model identifier stamped on stored records.
func (c *Client) ModelID() string {
	return string(c.embeddingModel)
}

// Embed generates an embedding vector for the given text
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(c.retryDelay, attempt))
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)

		resp, err := c.client.CreateEmbeddings(reqCtx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: c.embeddingModel,
		})

		if err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			cancel()
			lastErr = fmt.Errorf("attempt %d: no embeddings returned", attempt+1)
			continue
		}

		// Convert []float32 to []float64
		embedding32 := resp.Data[0].Embedding
		embedding64 := make([]float64, len(embedding32))
		for i, v := range embedding32 {
			embedding64[i] = float64(v)
		}

		cancel()
		return embedding64, nil
	}

	return nil, fmt.Errorf("failed to generate embedding after %d attempts: %w", c.maxRetries+1, lastErr)
}

// Dimension returns the embedding model's output dimensionality, probing the
// model once per process. Concurrent first calls share a single probe via
// singleflight; the first stored value wins for the process lifetime.
func (c *Client) Dimension(ctx context.Context) (int, error) {
	c.dimMu.Lock()
	if c.dim > 0 {
		dim := c.dim
		c.dimMu.Unlock()
		return dim, nil
	}
	c.dimMu.Unlock()

	v, err, _ := c.dimGroup.Do("dimension", func() (interface{}, error) {
		vec, err := c.Embed(ctx, dimensionProbe)
		if err != nil {
			return 0, err
		}

		c.dimMu.Lock()
		if c.dim == 0 {
			c.dim = len(vec)
		}
		dim := c.dim
		c.dimMu.Unlock()
		return dim, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to probe embedding dimension: %w", err)
	}
	return v.(int), nil
}
