package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ahrav/go-ragcheck/internal/configuration"
	"github.com/ahrav/go-ragcheck/internal/domain"
	"github.com/ahrav/go-ragcheck/internal/normalize"
)

// rubricEvaluationPath is the single-evaluation endpoint on the rubric
// judge service.
const rubricEvaluationPath = "/v2/single-evaluation/"

// RubricJudge scores answers through a multi-criteria evaluation service.
// One POST per evaluation, single attempt, token auth.
type RubricJudge struct {
	cfg        configuration.RubricJudgeConfig
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Judge = (*RubricJudge)(nil)

// NewRubricJudge creates a rubric judge client. A configured base URL that
// already carries the evaluation path is tolerated and stripped.
func NewRubricJudge(cfg configuration.RubricJudgeConfig, httpClient *http.Client, logger *slog.Logger) *RubricJudge {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if i := strings.Index(base, "/v2/single-evaluation"); i >= 0 {
		base = strings.TrimRight(base[:i], "/")
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RubricJudge{
		cfg:        cfg,
		endpoint:   base + rubricEvaluationPath,
		httpClient: httpClient,
		logger:     logger.With("component", "scoring", "judge", "rubric"),
	}
}

// Evaluate implements Judge. Any transport failure or non-2xx status yields
// a nil outcome. A 2xx response whose body cannot be parsed still counts as
// an evaluation; the outcome carries the raw payload with no criteria.
func (j *RubricJudge) Evaluate(ctx context.Context, question, answer, contextText string) *domain.EvaluationOutcome {
	payload := map[string]any{
		"question":        question,
		"ground_truth":    "",
		"answer":          answer,
		"eval_group_id":   j.cfg.EvalGroupID,
		"context":         contextText,
		"type":            j.cfg.EvalType,
		"conversation_id": j.cfg.ConversationID,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		j.logger.Error("failed to marshal evaluation payload", "error", err)
		return nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, j.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		j.logger.Error("failed to create evaluation request", "error", err)
		return nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Token %s", j.cfg.APIKey))

	httpResp, err := j.httpClient.Do(httpReq)
	if err != nil {
		j.logger.Error("evaluation request failed", "error", err)
		return nil
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		j.logger.Error("failed to read evaluation response", "error", err)
		return nil
	}

	// Any 2xx is a successful evaluation.
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		j.logger.Warn("evaluation service returned non-success status",
			"status", httpResp.StatusCode,
			"body_length", len(body))
		return nil
	}

	outcome := &domain.EvaluationOutcome{RawPayload: json.RawMessage(body)}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		j.logger.Warn("could not parse evaluation response", "error", err)
		return outcome
	}

	// The service reports criteria under "results" or "criteria" at its top
	// level. Wrapping the body as raw_response puts both under the
	// normalizer's nested locations.
	outcome.Criteria = normalize.Criteria(map[string]any{"raw_response": parsed})
	j.logger.Info("evaluation completed",
		"status", httpResp.StatusCode,
		"criteria", len(outcome.Criteria))
	return outcome
}
