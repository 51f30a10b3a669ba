// Package transport defines the normalized request/response types and the
// composable middleware pipeline for provider HTTP communication.
package transport

import (
	"net/http"
	"time"
)

// OperationType differentiates chat-completion and embedding operations.
// Affects endpoint selection, logging labels, and timeout configuration.
type OperationType string

const (
	// OpGeneration indicates a chat-completion call producing answer text.
	OpGeneration OperationType = "generation"

	// OpEmbedding indicates an embedding call producing a query vector.
	OpEmbedding OperationType = "embedding"
)

// Request is a normalized request across providers. It contains everything a
// provider adapter needs to construct the HTTP call, and everything the
// middleware needs for observability.
type Request struct {
	// Operation selects the provider endpoint and response shape.
	Operation OperationType `json:"operation"`

	// Provider identifies which service adapter to route to.
	Provider string `json:"provider"`

	// Model specifies the exact model to use.
	Model string `json:"model"`

	// SystemPrompt carries the system instruction for generation calls.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// UserPrompt is the user message for generation calls.
	UserPrompt string `json:"user_prompt,omitempty"`

	// Input is the text to embed for embedding calls.
	Input string `json:"input,omitempty"`

	// Dimensions requests a reduced embedding width when positive.
	// Only meaningful for models that support variable-width embeddings.
	Dimensions int `json:"dimensions,omitempty"`

	// Sampling parameters for generation calls.
	MaxTokens   int64   `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`

	// Timeout bounds the single attempt made for this request.
	Timeout time.Duration `json:"timeout"`

	// TraceID correlates the request across log lines.
	TraceID string `json:"trace_id,omitempty"`
}

// Response is the normalized provider output.
type Response struct {
	// Content is the generated message text (generation operations).
	Content string `json:"content"`

	// Embedding is the produced vector (embedding operations).
	Embedding []float64 `json:"embedding,omitempty"`

	// ProviderRequestIDs enables cross-system correlation.
	ProviderRequestIDs []string `json:"provider_request_ids,omitempty"`

	// Usage tracks token consumption and latency.
	Usage NormalizedUsage `json:"usage"`

	// Headers preserves raw response headers for debugging.
	Headers http.Header `json:"-"`

	// RawBody preserves the original response for audit.
	RawBody []byte `json:"raw_body,omitempty"`
}

// NormalizedUsage provides consistent usage metrics across providers.
type NormalizedUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
	LatencyMs        int64 `json:"latency_ms"`
}
