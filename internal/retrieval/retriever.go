// Package retrieval assembles generation context from the vector store:
// embed the query, fetch the top-K nearest neighbors, normalize each match,
// and join the passage texts.
//
// Retrieval failure must never abort a turn. Every error in the
// embed-query-normalize path is caught at this boundary and converted to an
// empty context with no passages; the pipeline continues degraded.
package retrieval

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ahrav/go-ragcheck/internal/configuration"
	"github.com/ahrav/go-ragcheck/internal/domain"
	"github.com/ahrav/go-ragcheck/internal/normalize"
	"github.com/ahrav/go-ragcheck/internal/vectorstore"
)

// Embedder produces query embeddings. Satisfied by llm.Client.
type Embedder interface {
	Embed(ctx context.Context, input string, dimensions int) ([]float64, error)
}

// variableWidthModels maps embedding models that support explicit reduced
// dimensionality to their native output width.
var variableWidthModels = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
}

// Retriever retrieves supporting passages for a question. Index dimension
// and namespace are discovered once at construction and read-only afterwards,
// so concurrent turns share a Retriever without locks.
type Retriever struct {
	embedder Embedder
	store    vectorstore.Client
	cfg      configuration.RetrievalConfig
	model    string
	logger   *slog.Logger

	// indexDimension is the index vector width, 0 when unknown.
	indexDimension int

	// namespace is the configured or auto-selected index partition.
	namespace string
}

// NewRetriever creates a Retriever and performs one-time index discovery:
// the index dimension (for variable-width embedding requests) and, when no
// namespace is configured, auto-selection of the first non-empty namespace.
// Discovery failure degrades to unknown dimension and the configured
// namespace; it never fails construction.
func NewRetriever(
	ctx context.Context,
	embedder Embedder,
	store vectorstore.Client,
	cfg configuration.RetrievalConfig,
	embeddingModel string,
	logger *slog.Logger,
) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "retrieval")

	r := &Retriever{
		embedder:  embedder,
		store:     store,
		cfg:       cfg,
		model:     embeddingModel,
		logger:    logger,
		namespace: cfg.Namespace,
	}

	stats, err := store.DescribeIndexStats(ctx)
	if err != nil {
		logger.Warn("could not get index stats", "error", err)
		return r
	}

	r.indexDimension = stats.Dimension
	if r.indexDimension > 0 {
		logger.Info("index dimension discovered", "dimension", r.indexDimension)
	}

	if cfg.Namespace == "" {
		r.namespace = selectNamespace(stats.Namespaces)
		if r.namespace != "" {
			logger.Info("auto-selected namespace",
				"namespace", r.namespace,
				"vector_count", stats.Namespaces[r.namespace].VectorCount)
		}
	}

	return r
}

// Namespace returns the namespace queries are restricted to, empty for the
// default partition.
func (r *Retriever) Namespace() string { return r.namespace }

// RetrieveContext embeds the query, fetches the top-K nearest neighbors, and
// returns the joined context plus the normalized passages in store order.
//
// Any failure returns ("", nil): degraded, never fatal.
func (r *Retriever) RetrieveContext(ctx context.Context, query string) (string, []domain.RetrievedPassage) {
	embedding, err := r.embedder.Embed(ctx, query, r.embedDimensions())
	if err != nil {
		r.logger.Error("query embedding failed", "error", err)
		return "", nil
	}

	if r.indexDimension > 0 && len(embedding) != r.indexDimension {
		// The store will reject the query; log the mismatch so the
		// misconfigured embedding model is diagnosable.
		r.logger.Error("embedding dimension mismatch",
			"embedding_dimension", len(embedding),
			"index_dimension", r.indexDimension)
	}

	matches, err := r.store.Query(ctx, vectorstore.QueryRequest{
		Vector:    embedding,
		TopK:      r.cfg.TopK,
		Namespace: r.namespace,
	})
	if err != nil {
		r.logger.Error("vector store query failed", "error", err)
		return "", nil
	}

	passages := make([]domain.RetrievedPassage, 0, len(matches))
	for _, match := range matches {
		passages = append(passages, normalize.Passage(match.Score, match.Metadata))
	}

	context := domain.BuildContext(passages)
	if context == "" && len(passages) > 0 {
		r.logger.Warn("no text extracted from any retrieved match", "matches", len(passages))
	}

	return context, passages
}

// embedDimensions returns the explicit dimensions parameter for the
// embedding request: the index dimension when it is known, differs from the
// model's native width, and the model supports variable-width embeddings.
// Zero means the model's native width is used and a downstream mismatch is
// left for the store to reject.
func (r *Retriever) embedDimensions() int {
	if r.indexDimension <= 0 {
		return 0
	}
	native, ok := variableWidthModels[strings.TrimSpace(r.model)]
	if !ok {
		return 0
	}
	if native == r.indexDimension {
		return 0
	}
	return r.indexDimension
}

// selectNamespace picks the first non-empty namespace, preferring one that
// actually holds vectors. Discovery order breaks ties.
func selectNamespace(namespaces map[string]vectorstore.NamespaceStats) string {
	var fallback string
	for name, stats := range namespaces {
		if name == "" {
			continue
		}
		if stats.VectorCount > 0 {
			return name
		}
		if fallback == "" {
			fallback = name
		}
	}
	return fallback
}
