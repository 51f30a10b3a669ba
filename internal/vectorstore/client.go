// Package vectorstore implements a REST client for a Pinecone-style vector
// index: index stats (dimension, namespaces) and top-K similarity queries.
//
// Response bodies are decoded into loosely-typed values on purpose: the store
// returns matches whose metadata may be an object, a plain string, or another
// scalar, and shape resolution belongs to the normalize package, not here.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/ahrav/go-ragcheck/internal/configuration"
)

// ErrMissingEndpoint indicates no index host is configured or resolvable.
var ErrMissingEndpoint = errors.New("vector store endpoint not configured")

// controlPlaneEndpoint is the default control-plane base URL used to resolve
// an index host when none is configured.
const controlPlaneEndpoint = "https://api.pinecone.io"

// Match is one raw similarity match. Metadata is deliberately untyped; the
// normalize package resolves its shape.
type Match struct {
	ID       string
	Score    float64
	Metadata any
}

// NamespaceStats describes one index partition.
type NamespaceStats struct {
	VectorCount int64 `json:"vector_count"`
}

// IndexStats describes the index: its vector dimensionality and the vector
// counts per namespace.
type IndexStats struct {
	Dimension  int                       `json:"dimension"`
	Namespaces map[string]NamespaceStats `json:"namespaces"`
}

// QueryRequest is a top-K nearest-neighbor query.
type QueryRequest struct {
	Vector    []float64
	TopK      int
	Namespace string
}

// Client queries the vector index. Implementations are safe for concurrent
// use; all calls are single-attempt with a bounded timeout.
type Client interface {
	// DescribeIndexStats returns the index dimension and namespace stats.
	DescribeIndexStats(ctx context.Context) (*IndexStats, error)

	// Query returns the ordered top-K matches for the vector, restricted
	// to the namespace when non-empty. Metadata is included on each match.
	Query(ctx context.Context, req QueryRequest) ([]Match, error)
}

// client implements Client over the index data-plane REST API.
type client struct {
	cfg        configuration.VectorStoreConfig
	httpClient *http.Client

	mu       sync.Mutex
	endpoint string // guarded by mu until resolved, read-only afterwards
}

// NewClient creates a vector store client. When the configured endpoint is
// empty the index host is resolved once via the control plane; resolution
// failure is deferred to the first call so startup does not hard-fail on a
// degraded store (retrieval failures never abort a turn).
func NewClient(cfg configuration.VectorStoreConfig, httpClient *http.Client) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &client{cfg: cfg, httpClient: httpClient, endpoint: cfg.Endpoint}
}

// DescribeIndexStats implements Client.DescribeIndexStats.
func (c *client) DescribeIndexStats(ctx context.Context) (*IndexStats, error) {
	body, err := c.post(ctx, "/describe_index_stats", map[string]any{})
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse index stats: %w", err)
	}

	stats := &IndexStats{Namespaces: map[string]NamespaceStats{}}
	if dim, ok := raw["dimension"].(float64); ok {
		stats.Dimension = int(dim)
	}

	namespaces, _ := raw["namespaces"].(map[string]any)
	for name, v := range namespaces {
		ns, _ := v.(map[string]any)
		var count int64
		// Serverless and pod-based indexes disagree on the key casing.
		if c, ok := ns["vectorCount"].(float64); ok {
			count = int64(c)
		} else if c, ok := ns["vector_count"].(float64); ok {
			count = int64(c)
		}
		stats.Namespaces[name] = NamespaceStats{VectorCount: count}
	}

	return stats, nil
}

// Query implements Client.Query.
func (c *client) Query(ctx context.Context, req QueryRequest) ([]Match, error) {
	payload := map[string]any{
		"vector":           req.Vector,
		"top_k":            req.TopK,
		"include_metadata": true,
	}
	if req.Namespace != "" {
		payload["namespace"] = req.Namespace
	}

	body, err := c.post(ctx, "/query", payload)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse query response: %w", err)
	}

	// Matches usually live under "matches"; some store versions report
	// them under "results".
	list, ok := raw["matches"].([]any)
	if !ok {
		list, _ = raw["results"].([]any)
	}

	matches := make([]Match, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		match := Match{Metadata: m["metadata"]}
		if id, ok := m["id"].(string); ok {
			match.ID = id
		}
		if score, ok := m["score"].(float64); ok {
			match.Score = score
		}
		matches = append(matches, match)
	}

	return matches, nil
}

// post issues one data-plane POST and returns the response body.
func (c *client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	endpoint, err := c.resolveEndpoint(ctx)
	if err != nil {
		return nil, err
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Api-Key", c.cfg.APIKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("vector store request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("vector store returned status %d: %s", httpResp.StatusCode, body)
	}

	return body, nil
}

// resolveEndpoint returns the data-plane host, resolving it through the
// control plane on first use when not configured.
func (c *client) resolveEndpoint(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.endpoint != "" {
		return c.endpoint, nil
	}
	if c.cfg.IndexName == "" {
		return "", ErrMissingEndpoint
	}

	url := fmt.Sprintf("%s/indexes/%s", controlPlaneEndpoint, c.cfg.IndexName)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Api-Key", c.cfg.APIKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("index host resolution failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("index host resolution returned status %d: %s", httpResp.StatusCode, body)
	}

	var resp struct {
		Host string `json:"host"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse index description: %w", err)
	}
	if resp.Host == "" {
		return "", ErrMissingEndpoint
	}

	c.endpoint = "https://" + resp.Host
	return c.endpoint, nil
}
