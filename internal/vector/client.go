// ABOUTME: REST client for the managed vector index service
// ABOUTME: Index lifecycle plus upsert/fetch/delete/query/range over vectors
package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrIndexNotFound is returned when the service reports the named index does
// not exist.
var ErrIndexNotFound = errors.New("index not found")

// MetricCosine is the distance metric used for all prompt indexes.
const MetricCosine = "cosine"

// Record is one vector plus its metadata payload.
type Record struct {
	ID       string          `json:"id"`
	Vector   []float64       `json:"vector,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// ScoredRecord is a query result with its distance to the query vector
// (lower is more similar).
type ScoredRecord struct {
	Record
	Distance float64 `json:"distance"`
}

// IndexInfo describes an existing index.
type IndexInfo struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
}

// CreateIndexRequest configures a new index.
type CreateIndexRequest struct {
	Name                  string   `json:"name"`
	Dimension             int      `json:"dimension"`
	Metric                string   `json:"metric"`
	NonFilterableMetadata []string `json:"nonFilterableMetadata,omitempty"`
}

// QueryRequest is a nearest-neighbor search.
type QueryRequest struct {
	Vector          []float64 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	IncludeDistance bool      `json:"includeDistance"`
}

// Client talks to the vector index service over HTTP with bearer auth.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a vector service client.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateIndex creates a new index.
func (c *Client) CreateIndex(ctx context.Context, req CreateIndexRequest) error {
	return c.do(ctx, http.MethodPost, "/v1/indexes", req, nil)
}

// GetIndex fetches index configuration, or ErrIndexNotFound.
func (c *Client) GetIndex(ctx context.Context, name string) (*IndexInfo, error) {
	var info IndexInfo
	if err := c.do(ctx, http.MethodGet, "/v1/indexes/"+name, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Upsert writes records into the index, replacing any existing records with
// the same IDs.
func (c *Client) Upsert(ctx context.Context, index string, records []Record) error {
	body := struct {
		Vectors []Record `json:"vectors"`
	}{Vectors: records}
	return c.do(ctx, http.MethodPost, "/v1/indexes/"+index+"/upsert", body, nil)
}

// Fetch retrieves records by ID. Absent IDs are simply missing from the
// result, not an error.
func (c *Client) Fetch(ctx context.Context, index string, ids []string) ([]Record, error) {
	body := struct {
		IDs []string `json:"ids"`
	}{IDs: ids}
	var out struct {
		Vectors []Record `json:"vectors"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/indexes/"+index+"/fetch", body, &out); err != nil {
		return nil, err
	}
	return out.Vectors, nil
}

// Delete removes records by ID. Deleting an absent ID is a no-op on the
// service side.
func (c *Client) Delete(ctx context.Context, index string, ids []string) error {
	body := struct {
		IDs []string `json:"ids"`
	}{IDs: ids}
	return c.do(ctx, http.MethodPost, "/v1/indexes/"+index+"/delete", body, nil)
}

// Query runs a nearest-neighbor search.
func (c *Client) Query(ctx context.Context, index string, req QueryRequest) ([]ScoredRecord, error) {
	var out struct {
		Matches []ScoredRecord `json:"matches"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/indexes/"+index+"/query", req, &out); err != nil {
		return nil, err
	}
	return out.Matches, nil
}

// List returns up to limit records in service-defined order.
func (c *Client) List(ctx context.Context, index string, limit int) ([]Record, error) {
	body := struct {
		Limit           int  `json:"limit"`
		IncludeMetadata bool `json:"includeMetadata"`
	}{Limit: limit, IncludeMetadata: true}
	var out struct {
		Vectors []Record `json:"vectors"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/indexes/"+index+"/range", body, &out); err != nil {
		return nil, err
	}
	return out.Vectors, nil
}

// do issues one JSON request and decodes the response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vector service %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrIndexNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("vector service %s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
