package configuration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-ragcheck/internal/domain"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Generation.APIKey = "sk-test"
	cfg.VectorStore.APIKey = "pc-test"
	cfg.VectorStore.IndexName = "constitution"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing generation API key", func(t *testing.T) {
		cfg := validConfig()
		cfg.Generation.APIKey = ""
		assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
	})

	t.Run("missing vector store API key", func(t *testing.T) {
		cfg := validConfig()
		cfg.VectorStore.APIKey = ""
		assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)
	})

	t.Run("missing index name", func(t *testing.T) {
		cfg := validConfig()
		cfg.VectorStore.IndexName = ""
		assert.ErrorIs(t, cfg.Validate(), ErrMissingIndex)
	})

	t.Run("threshold outside the rubric range", func(t *testing.T) {
		cfg := validConfig()
		cfg.RegenerationThreshold = 0
		assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidThreshold)

		cfg.RegenerationThreshold = 6
		assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidThreshold)
	})
}

func TestFromEnv(t *testing.T) {
	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-env")
		t.Setenv("PINECONE_API_KEY", "pc-env")
		t.Setenv("PINECONE_INDEX", "retail-index")
		t.Setenv("RAG_TOP_K", "7")
		t.Setenv("REG_SCORE", "4")
		t.Setenv("BOT_PROFILE", "retail")

		cfg := FromEnv()

		assert.Equal(t, "sk-env", cfg.Generation.APIKey)
		assert.Equal(t, "sk-env", cfg.Embedding.APIKey)
		assert.Equal(t, "pc-env", cfg.VectorStore.APIKey)
		assert.Equal(t, "retail-index", cfg.VectorStore.IndexName)
		assert.Equal(t, 7, cfg.Retrieval.TopK)
		assert.Equal(t, 4, cfg.RegenerationThreshold)
		assert.Equal(t, ProfileRetail, cfg.Profile)
	})

	t.Run("defaults survive an empty environment", func(t *testing.T) {
		cfg := FromEnv()

		require.NotNil(t, cfg)
		assert.Equal(t, DefaultGenerationModel, cfg.Generation.Model)
		assert.Equal(t, DefaultEmbeddingModel, cfg.Embedding.Model)
		assert.InDelta(t, DefaultTemperature, cfg.Generation.Temperature, 1e-9)
		assert.Equal(t, int64(DefaultMaxTokens), cfg.Generation.MaxTokens)
		assert.Equal(t, DefaultTopK, cfg.Retrieval.TopK)
		assert.Equal(t, 3, cfg.RegenerationThreshold)
		assert.Equal(t, ProfileConstitution, cfg.Profile)
	})
}
