package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-ragcheck/internal/configuration"
)

func storeConfig(endpoint string) configuration.VectorStoreConfig {
	return configuration.VectorStoreConfig{
		Endpoint:  endpoint,
		APIKey:    "pc-test-key",
		IndexName: "constitution",
		Timeout:   5 * time.Second,
	}
}

func TestDescribeIndexStats(t *testing.T) {
	t.Run("parses dimension and namespaces", func(t *testing.T) {
		var gotAPIKey string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/describe_index_stats", r.URL.Path)
			gotAPIKey = r.Header.Get("Api-Key")
			_, _ = w.Write([]byte(`{
				"dimension": 1024,
				"namespaces": {
					"corpus": {"vectorCount": 250},
					"legacy": {"vector_count": 10}
				}
			}`))
		}))
		defer server.Close()

		c := NewClient(storeConfig(server.URL), server.Client())
		stats, err := c.DescribeIndexStats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "pc-test-key", gotAPIKey)
		assert.Equal(t, 1024, stats.Dimension)
		assert.Equal(t, int64(250), stats.Namespaces["corpus"].VectorCount)
		assert.Equal(t, int64(10), stats.Namespaces["legacy"].VectorCount)
	})

	t.Run("non-success status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}))
		defer server.Close()

		c := NewClient(storeConfig(server.URL), server.Client())
		_, err := c.DescribeIndexStats(context.Background())
		assert.Error(t, err)
	})
}

func TestQuery(t *testing.T) {
	t.Run("sends the query and parses matches", func(t *testing.T) {
		var gotPayload map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/query", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
			_, _ = w.Write([]byte(`{
				"matches": [
					{"id": "v1", "score": 0.91, "metadata": {"text": "first"}},
					{"id": "v2", "score": 0.85, "metadata": "bare text"}
				]
			}`))
		}))
		defer server.Close()

		c := NewClient(storeConfig(server.URL), server.Client())
		matches, err := c.Query(context.Background(), QueryRequest{
			Vector:    []float64{0.1, 0.2},
			TopK:      5,
			Namespace: "corpus",
		})

		require.NoError(t, err)
		assert.Equal(t, float64(5), gotPayload["top_k"])
		assert.Equal(t, true, gotPayload["include_metadata"])
		assert.Equal(t, "corpus", gotPayload["namespace"])

		require.Len(t, matches, 2)
		assert.Equal(t, "v1", matches[0].ID)
		assert.Equal(t, 0.91, matches[0].Score)
		md, ok := matches[0].Metadata.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "first", md["text"])
		assert.Equal(t, "bare text", matches[1].Metadata)
	})

	t.Run("empty namespace is omitted from the payload", func(t *testing.T) {
		var gotPayload map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
			_, _ = w.Write([]byte(`{"matches": []}`))
		}))
		defer server.Close()

		c := NewClient(storeConfig(server.URL), server.Client())
		_, err := c.Query(context.Background(), QueryRequest{Vector: []float64{0.1}, TopK: 3})

		require.NoError(t, err)
		_, present := gotPayload["namespace"]
		assert.False(t, present)
	})

	t.Run("matches under results are accepted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"results": [{"id": "v1", "score": 0.5}]}`))
		}))
		defer server.Close()

		c := NewClient(storeConfig(server.URL), server.Client())
		matches, err := c.Query(context.Background(), QueryRequest{Vector: []float64{0.1}, TopK: 1})

		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "v1", matches[0].ID)
	})

	t.Run("non-success status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "dimension mismatch", http.StatusBadRequest)
		}))
		defer server.Close()

		c := NewClient(storeConfig(server.URL), server.Client())
		_, err := c.Query(context.Background(), QueryRequest{Vector: []float64{0.1}, TopK: 1})
		assert.ErrorContains(t, err, "dimension mismatch")
	})

	t.Run("missing endpoint and index name fails", func(t *testing.T) {
		c := NewClient(configuration.VectorStoreConfig{Timeout: time.Second}, &http.Client{Timeout: time.Second})
		_, err := c.Query(context.Background(), QueryRequest{Vector: []float64{0.1}, TopK: 1})
		assert.ErrorIs(t, err, ErrMissingEndpoint)
	})
}
