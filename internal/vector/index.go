// ABOUTME: Per-user index management with deterministic naming
// ABOUTME: Indexes are created lazily with the embedding model's dimension
package vector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// maxIndexNameLen is the longest index name accepted by the service.
	maxIndexNameLen = 48
	// hashSuffixLen is the hex suffix appended to truncated names.
	hashSuffixLen = 8
)

var disallowedRun = regexp.MustCompile(`[^a-z0-9-]+`)

// nonFilterableFields are the large free-text metadata fields the service
// should not build filter structures for.
var nonFilterableFields = []string{"text", "preview"}

// IndexName deterministically derives the index name for a user identity.
// The cleaned identity is lowercased with non [a-z0-9-] runs replaced by a
// hyphen; empty results fall back to a hash-derived name and overlong
// results are truncated with a hash suffix to preserve uniqueness.
func IndexName(userID string) string {
	cleaned := strings.ToLower(userID)
	cleaned = disallowedRun.ReplaceAllString(cleaned, "-")
	cleaned = strings.Trim(cleaned, "-")

	if cleaned == "" {
		return "u-" + userHash(userID)[:12]
	}
	if len(cleaned) > maxIndexNameLen {
		head := cleaned[:maxIndexNameLen-hashSuffixLen-1]
		return strings.TrimRight(head, "-") + "-" + userHash(userID)[:hashSuffixLen]
	}
	return cleaned
}

func userHash(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// DimensionSource supplies the embedding dimensionality for new indexes.
type DimensionSource interface {
	Dimension(ctx context.Context) (int, error)
}

// Manager gives the prompt store a per-user view of the vector service,
// creating indexes lazily on first use.
type Manager struct {
	client *Client
	dims   DimensionSource
}

// NewManager creates an index manager.
func NewManager(client *Client, dims DimensionSource) *Manager {
	return &Manager{client: client, dims: dims}
}

// EnsureIndex returns the user's index name, creating the index when it does
// not exist yet. Only a not-found probe triggers creation; any other probe
// failure propagates.
func (m *Manager) EnsureIndex(ctx context.Context, userID string) (string, error) {
	name := IndexName(userID)

	_, err := m.client.GetIndex(ctx, name)
	if err == nil {
		return name, nil
	}
	if !errors.Is(err, ErrIndexNotFound) {
		return "", fmt.Errorf("probe index %s: %w", name, err)
	}

	dim, err := m.dims.Dimension(ctx)
	if err != nil {
		return "", err
	}

	createErr := m.client.CreateIndex(ctx, CreateIndexRequest{
		Name:                  name,
		Dimension:             dim,
		Metric:                MetricCosine,
		NonFilterableMetadata: nonFilterableFields,
	})
	if createErr != nil {
		return "", fmt.Errorf("create index %s: %w", name, createErr)
	}
	return name, nil
}

// IndexExists probes for the user's index without creating it. Update and
// delete paths use this so an operation that logically requires prior data
// never provisions an index as a side effect.
func (m *Manager) IndexExists(ctx context.Context, userID string) (string, bool, error) {
	name := IndexName(userID)

	_, err := m.client.GetIndex(ctx, name)
	if err == nil {
		return name, true, nil
	}
	if errors.Is(err, ErrIndexNotFound) {
		return name, false, nil
	}
	return name, false, fmt.Errorf("probe index %s: %w", name, err)
}

// Upsert writes records into the user's index.
func (m *Manager) Upsert(ctx context.Context, index string, records []Record) error {
	return m.client.Upsert(ctx, index, records)
}

// Fetch retrieves records by key from the user's index.
func (m *Manager) Fetch(ctx context.Context, index string, ids []string) ([]Record, error) {
	return m.client.Fetch(ctx, index, ids)
}

// Delete removes records by key from the user's index.
func (m *Manager) Delete(ctx context.Context, index string, ids []string) error {
	return m.client.Delete(ctx, index, ids)
}

// Query runs a nearest-neighbor search against the user's index.
func (m *Manager) Query(ctx context.Context, index string, req QueryRequest) ([]ScoredRecord, error) {
	return m.client.Query(ctx, index, req)
}

// List returns up to limit records from the user's index.
func (m *Manager) List(ctx context.Context, index string, limit int) ([]Record, error) {
	return m.client.List(ctx, index, limit)
}
