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

// completionPath is the completion endpoint on the local inference server.
const completionPath = "/completion"

// Fixed sampling parameters for the grading completion. Low temperature
// keeps the grader deterministic; the grammar does the rest.
const (
	fastJudgeMaxTokens     = 256
	fastJudgeTemperature   = 0.1
	fastJudgeTopP          = 0.8
	fastJudgeTopK          = 40
	fastJudgeRepeatPenalty = 1.1
)

// fastJudgeStop terminates the completion.
var fastJudgeStop = []string{"###"}

// scoreOnlyGrammar is a GBNF grammar that constrains decoding to exactly
// {"score": N} with N in 1-5, so the grader output is parseable by
// construction.
const scoreOnlyGrammar = `
root ::= json-object
json-object ::= "{" ws "\"score\"" ws ":" ws number ws "}"
number ::= [1-5]
ws ::= [ \t\n]*
`

// graderPromptTemplate is the score-only grading prompt. Placeholders, in
// order: criteria definition, question, candidate answer, ground truth,
// context.
const graderPromptTemplate = `
You are an impartial grader.
Review the candidate answer and the correct answer based on the following context as indicated in the criteria:
Review all the criteria scores.

<Criteria>
%s
</Criteria>


Output ONLY a valid JSON object.
Do not output explanations, reasoning, or commentary.
Do not output any text before or after the JSON.
Do not restate the task.
Do not justify the score.

Your response MUST follow this exact JSON format:

{
  "score": X,
}

Replace X with your chosen integer score from 1 to 5.

<Question>
%s
</Question>

<Candidate Answer>
%s
</Candidate Answer>

<Ground Truth>
%s
</Ground Truth>

<Context>
%s
</Context>
`

// FastJudge scores answers with one constrained-decoding completion against
// a local inference server. It grades a single rubric criterion whose
// definition is loaded from the criteria catalog at construction.
type FastJudge struct {
	endpoint      string
	criterionName string
	criterionDef  string
	httpClient    *http.Client
	logger        *slog.Logger
}

var _ Judge = (*FastJudge)(nil)

// NewFastJudge creates a fast judge. The criterion definition is resolved
// from the catalog CSV once; a missing definition fails construction since
// the judge would grade against an empty rubric.
func NewFastJudge(cfg configuration.FastJudgeConfig, httpClient *http.Client, logger *slog.Logger) (*FastJudge, error) {
	name := cfg.CriteriaName
	if name == "" {
		name = domain.CriterionContextualHallucination
	}

	def, err := LoadCriterionPrompt(cfg.CriteriaCatalogPath, name)
	if err != nil {
		return nil, fmt.Errorf("criterion %q: %w", name, err)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FastJudge{
		endpoint:      strings.TrimRight(cfg.BaseURL, "/") + completionPath,
		criterionName: name,
		criterionDef:  def,
		httpClient:    httpClient,
		logger:        logger.With("component", "scoring", "judge", "fast"),
	}, nil
}

// Evaluate implements Judge. Any transport failure, non-2xx status, or
// unparseable completion yields a nil outcome.
func (j *FastJudge) Evaluate(ctx context.Context, question, answer, contextText string) *domain.EvaluationOutcome {
	prompt := fmt.Sprintf(graderPromptTemplate,
		j.criterionDef, question, answer, "", contextText)

	payload := map[string]any{
		"prompt":         prompt,
		"n_predict":      fastJudgeMaxTokens,
		"temperature":    fastJudgeTemperature,
		"top_p":          fastJudgeTopP,
		"top_k":          fastJudgeTopK,
		"repeat_penalty": fastJudgeRepeatPenalty,
		"max_tokens":     fastJudgeMaxTokens,
		"grammar":        scoreOnlyGrammar,
		"stop":           fastJudgeStop,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		j.logger.Error("failed to marshal completion payload", "error", err)
		return nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, j.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		j.logger.Error("failed to create completion request", "error", err)
		return nil
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := j.httpClient.Do(httpReq)
	if err != nil {
		j.logger.Error("completion request failed", "error", err)
		return nil
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		j.logger.Error("failed to read completion response", "error", err)
		return nil
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		j.logger.Warn("completion server returned non-success status",
			"status", httpResp.StatusCode,
			"body_length", len(body))
		return nil
	}

	// The completion rides inside the response as a JSON string under
	// "content"; the grammar guarantees it is a {"score": N} object.
	var resp struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		j.logger.Error("failed to parse completion response", "error", err)
		return nil
	}
	if resp.Content == "" {
		j.logger.Error("completion response has no content")
		return nil
	}

	var scoreObj struct {
		Score any `json:"score"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &scoreObj); err != nil {
		j.logger.Error("failed to parse score from completion content",
			"content", resp.Content, "error", err)
		return nil
	}

	score, ok := normalize.CoerceScore(scoreObj.Score)
	if !ok || !domain.ValidCriterionScore(score) {
		j.logger.Error("completion produced invalid score", "score", scoreObj.Score)
		return nil
	}

	j.logger.Info("evaluation completed", "criterion", j.criterionName, "score", score)
	return &domain.EvaluationOutcome{
		Criteria:   []domain.CriterionScore{{Name: j.criterionName, Score: score}},
		RawPayload: json.RawMessage(body),
	}
}
