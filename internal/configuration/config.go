// Package configuration holds the immutable process-wide configuration for
// the answer pipeline. A Config is constructed once at startup (from defaults
// plus environment variables) and passed explicitly into each component's
// constructor; request-handling code never reads ambient global state.
package configuration

import (
	"errors"
	"fmt"
	"time"

	"github.com/ahrav/go-ragcheck/internal/domain"
)

// ErrMissingAPIKey indicates a required provider credential is absent.
var ErrMissingAPIKey = errors.New("missing API key")

// ErrMissingIndex indicates no vector index name was configured.
var ErrMissingIndex = errors.New("missing vector index name")

// BotProfile selects the prompt profile used for generation. Profiles change
// tone and constraints but never control flow.
type BotProfile string

const (
	// ProfileConstitution answers questions about the constitution corpus.
	ProfileConstitution BotProfile = "constitution"

	// ProfileRetail answers questions about the retail product corpus.
	ProfileRetail BotProfile = "retail"
)

// Config is the process-wide read-only configuration. All fields are fixed
// after startup; concurrent turns share it without locks.
type Config struct {
	// Generation is the chat-completion provider configuration.
	Generation GenerationConfig

	// Embedding is the embedding provider configuration.
	Embedding EmbeddingConfig

	// VectorStore is the vector index configuration.
	VectorStore VectorStoreConfig

	// RubricJudge is the multi-criteria evaluation service configuration.
	RubricJudge RubricJudgeConfig

	// FastJudge is the single-score constrained-decoding judge configuration.
	FastJudge FastJudgeConfig

	// Retrieval controls top-K and namespace selection.
	Retrieval RetrievalConfig

	// RegenerationThreshold is the shared criterion score at or above which
	// a corrected answer is generated. Shared across all bot profiles.
	RegenerationThreshold int

	// Profile selects the generation prompt profile.
	Profile BotProfile

	// TranscriptPath is the append-only transcript CSV location.
	// Empty disables transcript logging.
	TranscriptPath string
}

// GenerationConfig configures the text-generation provider.
type GenerationConfig struct {
	Endpoint string
	APIKey   string
	Model    string

	// Temperature and MaxTokens are the fixed sampling parameters used for
	// every generation and regeneration call.
	Temperature float64
	MaxTokens   int64

	Timeout time.Duration
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// VectorStoreConfig configures the vector index connection.
type VectorStoreConfig struct {
	Endpoint string
	APIKey   string

	// IndexName identifies the index; required.
	IndexName string

	Timeout time.Duration
}

// RubricJudgeConfig configures the multi-criteria rubric judge service.
type RubricJudgeConfig struct {
	BaseURL        string
	APIKey         string
	EvalGroupID    string
	EvalType       string
	ConversationID string
	Timeout        time.Duration
}

// FastJudgeConfig configures the constrained-decoding completion judge.
type FastJudgeConfig struct {
	BaseURL string

	// CriteriaName selects the rubric criterion definition from the
	// criteria catalog CSV.
	CriteriaName string

	// CriteriaCatalogPath is the CSV file holding criterion prompt
	// definitions.
	CriteriaCatalogPath string

	Timeout time.Duration
}

// RetrievalConfig controls vector-store retrieval.
type RetrievalConfig struct {
	// TopK is the number of nearest neighbors requested per query.
	TopK int

	// Namespace restricts queries to a named index partition. Empty means
	// auto-select the first non-empty namespace at startup.
	Namespace string
}

// Validate checks that the configuration can support a complete turn.
func (c *Config) Validate() error {
	if c.Generation.APIKey == "" {
		return fmt.Errorf("generation: %w", ErrMissingAPIKey)
	}
	if c.VectorStore.APIKey == "" {
		return fmt.Errorf("vector store: %w", ErrMissingAPIKey)
	}
	if c.VectorStore.IndexName == "" {
		return ErrMissingIndex
	}
	if err := domain.ValidateThreshold(c.RegenerationThreshold); err != nil {
		return fmt.Errorf("regeneration threshold %d: %w", c.RegenerationThreshold, err)
	}
	return nil
}
