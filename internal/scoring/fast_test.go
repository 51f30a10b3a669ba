package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-ragcheck/internal/configuration"
)

// writeCatalog writes a criteria catalog CSV and returns its path.
func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "criteria.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const testCatalog = "criteria,prompt\n" +
	"Contextual_Hallucination,Rate how much the answer invents facts absent from the context.\n" +
	"Relevance,Rate how well the answer addresses the question.\n"

func fastConfig(baseURL, catalogPath string) configuration.FastJudgeConfig {
	return configuration.FastJudgeConfig{
		BaseURL:             baseURL,
		CriteriaName:        "Contextual_Hallucination",
		CriteriaCatalogPath: catalogPath,
		Timeout:             5 * time.Second,
	}
}

func TestNewFastJudge(t *testing.T) {
	t.Run("fails when the criterion is missing from the catalog", func(t *testing.T) {
		cfg := fastConfig("http://localhost:8080", writeCatalog(t, "criteria,prompt\nOther,def\n"))
		_, err := NewFastJudge(cfg, nil, nil)
		assert.ErrorIs(t, err, ErrCriterionNotFound)
	})

	t.Run("fails when the catalog file does not exist", func(t *testing.T) {
		cfg := fastConfig("http://localhost:8080", filepath.Join(t.TempDir(), "missing.csv"))
		_, err := NewFastJudge(cfg, nil, nil)
		assert.Error(t, err)
	})
}

func TestFastJudgeEvaluate(t *testing.T) {
	catalog := writeCatalog(t, testCatalog)

	t.Run("successful constrained completion", func(t *testing.T) {
		var gotPath string
		var gotPayload map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
			_, _ = w.Write([]byte(`{"content": "{\"score\": 4}"}`))
		}))
		defer server.Close()

		judge, err := NewFastJudge(fastConfig(server.URL, catalog), server.Client(), nil)
		require.NoError(t, err)

		outcome := judge.Evaluate(context.Background(), "the question", "the answer", "the context")

		require.NotNil(t, outcome)
		require.Len(t, outcome.Criteria, 1)
		assert.Equal(t, "Contextual_Hallucination", outcome.Criteria[0].Name)
		assert.Equal(t, 4, outcome.Criteria[0].Score)

		assert.Equal(t, "/completion", gotPath)
		assert.Equal(t, float64(256), gotPayload["n_predict"])
		assert.Equal(t, float64(256), gotPayload["max_tokens"])
		assert.InDelta(t, 0.1, gotPayload["temperature"], 1e-9)
		assert.InDelta(t, 0.8, gotPayload["top_p"], 1e-9)
		assert.Equal(t, float64(40), gotPayload["top_k"])
		assert.InDelta(t, 1.1, gotPayload["repeat_penalty"], 1e-9)
		assert.Equal(t, []any{"###"}, gotPayload["stop"])
		assert.NotEmpty(t, gotPayload["grammar"])

		prompt, _ := gotPayload["prompt"].(string)
		assert.Contains(t, prompt, "the question")
		assert.Contains(t, prompt, "the answer")
		assert.Contains(t, prompt, "the context")
		assert.Contains(t, prompt, "invents facts")
	})

	t.Run("server error yields nil outcome", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		judge, err := NewFastJudge(fastConfig(server.URL, catalog), server.Client(), nil)
		require.NoError(t, err)

		assert.Nil(t, judge.Evaluate(context.Background(), "q", "a", "c"))
	})

	t.Run("missing content yields nil outcome", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"tokens_predicted": 7}`))
		}))
		defer server.Close()

		judge, err := NewFastJudge(fastConfig(server.URL, catalog), server.Client(), nil)
		require.NoError(t, err)

		assert.Nil(t, judge.Evaluate(context.Background(), "q", "a", "c"))
	})

	t.Run("unparseable content yields nil outcome", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"content": "I think the score is 3"}`))
		}))
		defer server.Close()

		judge, err := NewFastJudge(fastConfig(server.URL, catalog), server.Client(), nil)
		require.NoError(t, err)

		assert.Nil(t, judge.Evaluate(context.Background(), "q", "a", "c"))
	})

	t.Run("out-of-range score yields nil outcome", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"content": "{\"score\": 9}"}`))
		}))
		defer server.Close()

		judge, err := NewFastJudge(fastConfig(server.URL, catalog), server.Client(), nil)
		require.NoError(t, err)

		assert.Nil(t, judge.Evaluate(context.Background(), "q", "a", "c"))
	})
}
