package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-ragcheck/internal/llm/transport"
)

// LoggingMiddleware provides structured observability for the provider
// request lifecycle with configurable redaction for prompt content.
type LoggingMiddleware struct {
	logger        *slog.Logger
	redactPrompts bool
}

// NewLoggingMiddleware creates observability middleware with structured
// logging. A nil logger falls back to slog.Default.
func NewLoggingMiddleware(logger *slog.Logger, redactPrompts bool) transport.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	lm := &LoggingMiddleware{logger: logger, redactPrompts: redactPrompts}
	return lm.Middleware
}

// Middleware wraps a handler with request/response logging and latency
// measurement.
func (m *LoggingMiddleware) Middleware(next transport.Handler) transport.Handler {
	return transport.HandlerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		requestID := req.TraceID
		if requestID == "" {
			requestID = uuid.NewString()
		}

		m.logRequest(req, requestID)

		start := time.Now()
		resp, err := next.Handle(ctx, req)
		duration := time.Since(start)

		if err != nil {
			m.logger.Error("provider request failed",
				"request_id", requestID,
				"provider", req.Provider,
				"model", req.Model,
				"operation", req.Operation,
				"duration_ms", duration.Milliseconds(),
				"error", err)
			return resp, err
		}

		fields := []any{
			"request_id", requestID,
			"provider", req.Provider,
			"model", req.Model,
			"operation", req.Operation,
			"duration_ms", duration.Milliseconds(),
			"prompt_tokens", resp.Usage.PromptTokens,
			"completion_tokens", resp.Usage.CompletionTokens,
			"total_tokens", resp.Usage.TotalTokens,
		}
		if m.redactPrompts {
			fields = append(fields, "response_length", len(resp.Content))
		} else {
			preview := resp.Content
			if len(preview) > 200 {
				preview = preview[:200] + "..."
			}
			fields = append(fields, "response_preview", preview)
		}
		m.logger.Info("provider request completed", fields...)

		return resp, nil
	})
}

// logRequest captures structured request data with prompt redaction.
func (m *LoggingMiddleware) logRequest(req *transport.Request, requestID string) {
	fields := []any{
		"request_id", requestID,
		"provider", req.Provider,
		"model", req.Model,
		"operation", req.Operation,
		"timeout_seconds", req.Timeout.Seconds(),
	}

	switch req.Operation {
	case transport.OpGeneration:
		if m.redactPrompts {
			fields = append(fields,
				"system_prompt_length", len(req.SystemPrompt),
				"user_prompt_length", len(req.UserPrompt))
		} else {
			fields = append(fields,
				"system_prompt", req.SystemPrompt,
				"user_prompt", req.UserPrompt)
		}
	case transport.OpEmbedding:
		fields = append(fields, "input_length", len(req.Input))
		if req.Dimensions > 0 {
			fields = append(fields, "dimensions", req.Dimensions)
		}
	}

	m.logger.Info("provider request started", fields...)
}
