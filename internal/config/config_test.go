// ABOUTME: Tests for environment-driven configuration loading
// ABOUTME: Covers defaults, overrides, and validation failures
package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PROMPTVAULT_VECTOR_URL",
		"PROMPTVAULT_VECTOR_TOKEN",
		"PROMPTVAULT_VECTOR_TIMEOUT",
		"OPENAI_API_KEY",
		"PROMPTVAULT_EMBEDDING_MODEL",
		"OPENAI_TIMEOUT",
		"OPENAI_MAX_RETRIES",
		"OPENAI_RETRY_DELAY",
		"PROMPTVAULT_BATCH_MAX",
		"PROMPTVAULT_TOP_K",
		"PROMPTVAULT_LIST_LIMIT",
		"PROMPTVAULT_MAX_DISTANCE",
		"PROMPTVAULT_NEAR_TIE_DELTA",
		"PROMPTVAULT_DEFAULT_USER",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.VectorURL != "http://localhost:8108" {
		t.Errorf("VectorURL = %q, want default", cfg.VectorURL)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %q, want text-embedding-3-small", cfg.EmbeddingModel)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.BatchMax != 20 {
		t.Errorf("BatchMax = %d, want 20", cfg.BatchMax)
	}
	if cfg.DefaultTopK != 8 {
		t.Errorf("DefaultTopK = %d, want 8", cfg.DefaultTopK)
	}
	if cfg.ListLimit != 50 {
		t.Errorf("ListLimit = %d, want 50", cfg.ListLimit)
	}
	if cfg.MaxDistance != 0.8 {
		t.Errorf("MaxDistance = %v, want 0.8", cfg.MaxDistance)
	}
	if cfg.NearTieDelta != 0.08 {
		t.Errorf("NearTieDelta = %v, want 0.08", cfg.NearTieDelta)
	}
	if cfg.DefaultUserID != "local" {
		t.Errorf("DefaultUserID = %q, want local", cfg.DefaultUserID)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROMPTVAULT_VECTOR_URL", "https://vectors.example.com")
	t.Setenv("PROMPTVAULT_VECTOR_TOKEN", "secret")
	t.Setenv("PROMPTVAULT_EMBEDDING_MODEL", "text-embedding-3-large")
	t.Setenv("PROMPTVAULT_BATCH_MAX", "50")
	t.Setenv("PROMPTVAULT_MAX_DISTANCE", "0.5")
	t.Setenv("OPENAI_RETRY_DELAY", "500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.VectorURL != "https://vectors.example.com" {
		t.Errorf("VectorURL = %q", cfg.VectorURL)
	}
	if cfg.VectorToken != "secret" {
		t.Errorf("VectorToken = %q, want secret", cfg.VectorToken)
	}
	if cfg.EmbeddingModel != "text-embedding-3-large" {
		t.Errorf("EmbeddingModel = %q", cfg.EmbeddingModel)
	}
	if cfg.BatchMax != 50 {
		t.Errorf("BatchMax = %d, want 50", cfg.BatchMax)
	}
	if cfg.MaxDistance != 0.5 {
		t.Errorf("MaxDistance = %v, want 0.5", cfg.MaxDistance)
	}
	if cfg.RetryDelay != 500*time.Millisecond {
		t.Errorf("RetryDelay = %v, want 500ms", cfg.RetryDelay)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROMPTVAULT_BATCH_MAX", "not-a-number")
	t.Setenv("PROMPTVAULT_MAX_DISTANCE", "wide")
	t.Setenv("OPENAI_TIMEOUT", "soonish")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BatchMax != 20 {
		t.Errorf("BatchMax = %d, want default 20 on parse failure", cfg.BatchMax)
	}
	if cfg.MaxDistance != 0.8 {
		t.Errorf("MaxDistance = %v, want default 0.8 on parse failure", cfg.MaxDistance)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want default 30s on parse failure", cfg.Timeout)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			BatchMax:     20,
			DefaultTopK:  8,
			MaxDistance:  0.8,
			NearTieDelta: 0.08,
			MaxRetries:   3,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero batch max", func(c *Config) { c.BatchMax = 0 }, "PROMPTVAULT_BATCH_MAX"},
		{"zero topK", func(c *Config) { c.DefaultTopK = 0 }, "PROMPTVAULT_TOP_K"},
		{"negative max distance", func(c *Config) { c.MaxDistance = -0.1 }, "PROMPTVAULT_MAX_DISTANCE"},
		{"max distance above cosine range", func(c *Config) { c.MaxDistance = 2.5 }, "PROMPTVAULT_MAX_DISTANCE"},
		{"negative near tie delta", func(c *Config) { c.NearTieDelta = -0.01 }, "PROMPTVAULT_NEAR_TIE_DELTA"},
		{"excessive retries", func(c *Config) { c.MaxRetries = 11 }, "OPENAI_MAX_RETRIES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
