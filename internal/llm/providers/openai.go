package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ahrav/go-ragcheck/internal/llm/transport"
)

// OpenAIConfig holds endpoint and credential configuration for the adapter.
type OpenAIConfig struct {
	Endpoint string
	APIKey   string
	Headers  map[string]string
}

// OpenAIAdapter implements ProviderAdapter for OpenAI-compatible APIs.
// It handles the chat/completions and embeddings endpoints including
// request/response transformation and OpenAI-specific error handling.
type OpenAIAdapter struct {
	config OpenAIConfig
}

// NewOpenAIAdapter creates an OpenAI provider adapter with default endpoint.
func NewOpenAIAdapter(cfg OpenAIConfig) *OpenAIAdapter {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.openai.com/v1"
	}
	return &OpenAIAdapter{config: cfg}
}

// Name returns the provider name.
func (a *OpenAIAdapter) Name() string { return ProviderOpenAI }

// Build constructs an OpenAI API request from a normalized transport request.
func (a *OpenAIAdapter) Build(ctx context.Context, req *transport.Request) (*http.Request, error) {
	var endpoint string
	var body map[string]any

	switch req.Operation {
	case transport.OpGeneration:
		endpoint = fmt.Sprintf("%s/chat/completions", a.config.Endpoint)

		messages := []map[string]any{}
		if req.SystemPrompt != "" {
			messages = append(messages, map[string]any{
				"role":    "system",
				"content": req.SystemPrompt,
			})
		}
		messages = append(messages, map[string]any{
			"role":    "user",
			"content": req.UserPrompt,
		})

		body = map[string]any{
			"model":       req.Model,
			"messages":    messages,
			"max_tokens":  req.MaxTokens,
			"temperature": req.Temperature,
		}

	case transport.OpEmbedding:
		endpoint = fmt.Sprintf("%s/embeddings", a.config.Endpoint)

		body = map[string]any{
			"model": req.Model,
			"input": req.Input,
		}
		if req.Dimensions > 0 {
			body["dimensions"] = req.Dimensions
		}

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOperation, req.Operation)
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", a.config.APIKey))

	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}

	return httpReq, nil
}

// Parse extracts normalized data from an OpenAI API response. The response
// shape is selected by probing for the fields each endpoint returns.
func (a *OpenAIAdapter) Parse(httpResp *http.Response) (*transport.Response, error) {
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseOpenAIError(httpResp.StatusCode, body)
	}

	var resp struct {
		ID      string `json:"id"`
		Object  string `json:"object"`
		Model   string `json:"model"`
		Choices []struct {
			Index   int `json:"index"`
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	out := &transport.Response{
		Usage: transport.NormalizedUsage{
			PromptTokens:     int64(resp.Usage.PromptTokens),
			CompletionTokens: int64(resp.Usage.CompletionTokens),
			TotalTokens:      int64(resp.Usage.TotalTokens),
		},
		Headers: httpResp.Header,
		RawBody: body,
	}

	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
	}
	if len(resp.Data) > 0 {
		out.Embedding = resp.Data[0].Embedding
	}

	if reqID := httpResp.Header.Get("x-request-id"); reqID != "" {
		out.ProviderRequestIDs = []string{reqID}
	}

	return out, nil
}

// parseOpenAIError converts OpenAI error responses to ProviderError.
func parseOpenAIError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return &ProviderError{
			Provider:   ProviderOpenAI,
			StatusCode: statusCode,
			Message:    errResp.Error.Message,
			Code:       errResp.Error.Code,
			Type:       classifyErrorType(statusCode, errResp.Error.Type),
		}
	}

	return &ProviderError{
		Provider:   ProviderOpenAI,
		StatusCode: statusCode,
		Message:    string(body),
		Type:       classifyErrorType(statusCode, ""),
	}
}
