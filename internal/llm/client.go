// Package llm provides the HTTP client for text-generation and embedding
// providers. It routes normalized requests through a provider adapter behind
// a composable middleware pipeline.
//
// Every call is attempted exactly once with a bounded timeout. There is no
// retry, caching, or breaker layer: a failed call surfaces immediately so the
// owning pipeline step can absorb it or abort the turn.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ahrav/go-ragcheck/internal/configuration"
	"github.com/ahrav/go-ragcheck/internal/llm/providers"
	"github.com/ahrav/go-ragcheck/internal/llm/transport"
)

// HTTP connection constants.
const (
	defaultMaxIdleConns       = 100
	defaultIdleConnTimeout    = 90 * time.Second
	defaultTLSHandshakeLimit  = 10 * time.Second
	defaultExpectContinueWait = 1 * time.Second
)

// ErrEmptyCompletion indicates the provider returned no usable message text.
var ErrEmptyCompletion = errors.New("provider returned empty completion")

// ErrEmptyEmbedding indicates the provider returned no vector.
var ErrEmptyEmbedding = errors.New("provider returned empty embedding")

// Client provides chat-completion and embedding operations against the
// configured provider. Implementations are stateless with respect to
// per-turn data and safe for concurrent use.
type Client interface {
	// Complete produces one generated message for a system/user prompt
	// pair using the configured model and fixed sampling parameters.
	// Returns the trimmed message text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Embed produces an embedding vector for the input text. A positive
	// dimensions value requests a reduced-width vector from models that
	// support variable-width embeddings.
	Embed(ctx context.Context, input string, dimensions int) ([]float64, error)
}

// client implements Client over the transport middleware pipeline.
type client struct {
	generation configuration.GenerationConfig
	embedding  configuration.EmbeddingConfig
	handler    transport.Handler
}

// NewClient creates a provider client from process configuration.
// The optional httpClient overrides the default transport (used in tests).
func NewClient(generation configuration.GenerationConfig, embedding configuration.EmbeddingConfig, httpClient *http.Client) Client {
	router := providers.NewRouter(
		providers.NewOpenAIAdapter(providers.OpenAIConfig{
			Endpoint: generation.Endpoint,
			APIKey:   generation.APIKey,
		}),
	)

	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConns:          defaultMaxIdleConns,
				IdleConnTimeout:       defaultIdleConnTimeout,
				TLSHandshakeTimeout:   defaultTLSHandshakeLimit,
				ExpectContinueTimeout: defaultExpectContinueWait,
			},
		}
	}

	core := transport.NewHTTPHandler(httpClient, routerAdapter{router})
	handler := transport.Chain(core, NewLoggingMiddleware(nil, true))

	return &client{
		generation: generation,
		embedding:  embedding,
		handler:    handler,
	}
}

// routerAdapter adapts providers.Router to transport.Router.
type routerAdapter struct{ router providers.Router }

func (r routerAdapter) Pick(provider, model string) (transport.ProviderAdapter, error) {
	return r.router.Pick(provider, model)
}

// Complete implements Client.Complete with a single bounded attempt.
func (c *client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := &transport.Request{
		Operation:    transport.OpGeneration,
		Provider:     providers.ProviderOpenAI,
		Model:        c.generation.Model,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    c.generation.MaxTokens,
		Temperature:  c.generation.Temperature,
		Timeout:      c.generation.Timeout,
	}

	resp, err := c.handler.Handle(ctx, req)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// Embed implements Client.Embed with a single bounded attempt.
func (c *client) Embed(ctx context.Context, input string, dimensions int) ([]float64, error) {
	req := &transport.Request{
		Operation:  transport.OpEmbedding,
		Provider:   providers.ProviderOpenAI,
		Model:      c.embedding.Model,
		Input:      input,
		Dimensions: dimensions,
		Timeout:    c.embedding.Timeout,
	}

	resp, err := c.handler.Handle(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}

	if len(resp.Embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return resp.Embedding, nil
}
