// ABOUTME: Centralized configuration for the prompt vault MCP server
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the prompt vault
type Config struct {
	// Vector index service settings
	VectorURL     string
	VectorToken   string
	VectorTimeout time.Duration

	// OpenAI settings
	OpenAIKey      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Tool layer settings
	BatchMax      int
	DefaultTopK   int
	ListLimit     int
	MaxDistance   float64
	NearTieDelta  float64
	DefaultUserID string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		VectorURL:      getEnv("PROMPTVAULT_VECTOR_URL", "http://localhost:8108"),
		VectorToken:    os.Getenv("PROMPTVAULT_VECTOR_TOKEN"),
		VectorTimeout:  getEnvDuration("PROMPTVAULT_VECTOR_TIMEOUT", 30*time.Second),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel: getEnv("PROMPTVAULT_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:        getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:     getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:     getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		BatchMax:       getEnvInt("PROMPTVAULT_BATCH_MAX", 20),
		DefaultTopK:    getEnvInt("PROMPTVAULT_TOP_K", 8),
		ListLimit:      getEnvInt("PROMPTVAULT_LIST_LIMIT", 50),
		MaxDistance:    getEnvFloat("PROMPTVAULT_MAX_DISTANCE", 0.8),
		NearTieDelta:   getEnvFloat("PROMPTVAULT_NEAR_TIE_DELTA", 0.08),
		DefaultUserID:  getEnv("PROMPTVAULT_DEFAULT_USER", "local"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.BatchMax < 1 {
		return fmt.Errorf("PROMPTVAULT_BATCH_MAX must be at least 1, got %d", c.BatchMax)
	}
	if c.DefaultTopK < 1 {
		return fmt.Errorf("PROMPTVAULT_TOP_K must be at least 1, got %d", c.DefaultTopK)
	}
	if c.MaxDistance < 0 || c.MaxDistance > 2 {
		return fmt.Errorf("PROMPTVAULT_MAX_DISTANCE must be 0-2 for cosine distance, got %f", c.MaxDistance)
	}
	if c.NearTieDelta < 0 {
		return fmt.Errorf("PROMPTVAULT_NEAR_TIE_DELTA must not be negative, got %f", c.NearTieDelta)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
