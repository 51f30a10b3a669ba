package configuration

import (
	"os"
	"strconv"
	"time"
)

// Default endpoints, models, and pipeline parameters.
const (
	DefaultGenerationEndpoint = "https://api.openai.com/v1"
	DefaultGenerationModel    = "gpt-3.5-turbo"
	DefaultEmbeddingModel     = "text-embedding-3-small"

	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500

	DefaultTopK = 5

	DefaultEvalType        = "S"
	DefaultCriteriaName    = "Contextual_Hallucination"
	DefaultCriteriaCatalog = "criteria.csv"

	DefaultTranscriptPath = "logs_fast.csv"
)

// Bounded timeouts for every external call. A timeout is treated identically
// to any other transport failure; there is no retry anywhere in the core.
const (
	DefaultGenerationTimeout  = 60 * time.Second
	DefaultEmbeddingTimeout   = 30 * time.Second
	DefaultVectorStoreTimeout = 30 * time.Second
	DefaultRubricJudgeTimeout = 30 * time.Second
	DefaultFastJudgeTimeout   = 60 * time.Second
)

// DefaultConfig returns the baseline configuration before environment
// hydration. Credentials and index names must still be provided.
func DefaultConfig() *Config {
	return &Config{
		Generation: GenerationConfig{
			Endpoint:    DefaultGenerationEndpoint,
			Model:       DefaultGenerationModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
			Timeout:     DefaultGenerationTimeout,
		},
		Embedding: EmbeddingConfig{
			Endpoint: DefaultGenerationEndpoint,
			Model:    DefaultEmbeddingModel,
			Timeout:  DefaultEmbeddingTimeout,
		},
		VectorStore: VectorStoreConfig{
			Timeout: DefaultVectorStoreTimeout,
		},
		RubricJudge: RubricJudgeConfig{
			EvalType: DefaultEvalType,
			Timeout:  DefaultRubricJudgeTimeout,
		},
		FastJudge: FastJudgeConfig{
			CriteriaName:        DefaultCriteriaName,
			CriteriaCatalogPath: DefaultCriteriaCatalog,
			Timeout:             DefaultFastJudgeTimeout,
		},
		Retrieval: RetrievalConfig{
			TopK: DefaultTopK,
		},
		RegenerationThreshold: 3,
		Profile:               ProfileConstitution,
		TranscriptPath:        DefaultTranscriptPath,
	}
}

// FromEnv builds a Config from defaults hydrated with environment variables.
// Called once at process start; the result is never mutated afterwards.
func FromEnv() *Config {
	cfg := DefaultConfig()

	setString(&cfg.Generation.APIKey, "OPENAI_API_KEY")
	setString(&cfg.Generation.Model, "OPENAI_MODEL")
	setString(&cfg.Embedding.Model, "EMBEDDING_MODEL")
	cfg.Embedding.APIKey = cfg.Generation.APIKey

	setString(&cfg.VectorStore.APIKey, "PINECONE_API_KEY")
	setString(&cfg.VectorStore.Endpoint, "PINECONE_HOST")
	setString(&cfg.VectorStore.IndexName, "PINECONE_INDEX")
	setString(&cfg.Retrieval.Namespace, "PINECONE_NAMESPACE")
	setInt(&cfg.Retrieval.TopK, "RAG_TOP_K")

	setString(&cfg.RubricJudge.BaseURL, "RAGMETRICS_URL")
	setString(&cfg.RubricJudge.APIKey, "RAGMETRICS_API_KEY")
	setString(&cfg.RubricJudge.EvalGroupID, "RAGMETRICS_EVAL_GROUP_ID")
	setString(&cfg.RubricJudge.EvalType, "RAGMETRICS_EVAL_TYPE")
	setString(&cfg.RubricJudge.ConversationID, "RAGMETRICS_CONVERSATION_ID")

	setString(&cfg.FastJudge.BaseURL, "FAST_JUDGE_URL")
	setString(&cfg.FastJudge.CriteriaName, "FAST_JUDGE_CRITERIA")
	setString(&cfg.FastJudge.CriteriaCatalogPath, "FAST_JUDGE_CRITERIA_CSV")

	setInt(&cfg.RegenerationThreshold, "REG_SCORE")
	setString(&cfg.TranscriptPath, "TRANSCRIPT_PATH")

	if profile := os.Getenv("BOT_PROFILE"); profile != "" {
		cfg.Profile = BotProfile(profile)
	}

	return cfg
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
