// Package activity exposes the pipeline steps as Temporal activities.
// Each activity is a thin wrapper over a pipeline component with dependency
// injection; the failure contract mirrors the synchronous orchestrator:
// retrieval, evaluation, and regeneration failures are absorbed into empty
// outputs, generation failures surface as non-retryable errors.
package activity

import (
	"context"
	"time"

	"github.com/ahrav/go-ragcheck/internal/domain"
	"github.com/ahrav/go-ragcheck/internal/pipeline"
	"github.com/ahrav/go-ragcheck/internal/scoring"
	"github.com/ahrav/go-ragcheck/internal/transcript"
	pkgactivity "github.com/ahrav/go-ragcheck/pkg/activity"
	"github.com/ahrav/go-ragcheck/pkg/events"
)

// RetrieveContextInput is the input for the RetrieveContext activity.
type RetrieveContextInput struct {
	Question string `json:"question"`
}

// RetrieveContextOutput carries the retrieved context. Empty context with no
// passages is the degraded success shape; retrieval never fails the turn.
type RetrieveContextOutput struct {
	Context  string                    `json:"context"`
	Passages []domain.RetrievedPassage `json:"passages,omitempty"`
}

// GenerateAnswerInput is the input for the GenerateAnswer and
// RegenerateAnswer activities. PreviousAnswer is set only for regeneration.
type GenerateAnswerInput struct {
	Question       string `json:"question"`
	Context        string `json:"context"`
	PreviousAnswer string `json:"previous_answer,omitempty"`
}

// GenerateAnswerOutput carries the generated answer.
type GenerateAnswerOutput struct {
	Answer domain.Answer `json:"answer"`
}

// EvaluateAnswerInput is the input for the EvaluateAnswer activity.
type EvaluateAnswerInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Context  string `json:"context"`
}

// EvaluateAnswerOutput carries the evaluation outcome. A nil Evaluation
// means the judge failed or was not configured; ElapsedMs is recorded
// either way.
type EvaluateAnswerOutput struct {
	Evaluation *domain.EvaluationOutcome `json:"evaluation,omitempty"`
	ElapsedMs  int64                     `json:"elapsed_ms"`
}

// RecordTurnInput is the input for the RecordTurn activity.
type RecordTurnInput struct {
	Turn domain.Turn `json:"turn"`
}

// Activities provides the pipeline activity functions with dependency
// injection. Used for both production (real clients) and testing (mocks).
type Activities struct {
	pkgactivity.BaseActivities

	retriever  pipeline.ContextRetriever
	generator  pipeline.AnswerGenerator
	judge      scoring.Judge
	transcript *transcript.Writer
}

// NewActivities creates an Activities instance. The judge and transcript
// writer may be nil; the corresponding activities then degrade to no-ops.
func NewActivities(
	retriever pipeline.ContextRetriever,
	generator pipeline.AnswerGenerator,
	judge scoring.Judge,
	transcriptWriter *transcript.Writer,
	sink events.EventSink,
) *Activities {
	return &Activities{
		BaseActivities: pkgactivity.NewBaseActivities(sink),
		retriever:      retriever,
		generator:      generator,
		judge:          judge,
		transcript:     transcriptWriter,
	}
}

// RetrieveContext fetches retrieval context for the question. It never
// returns an error: retrieval failures were already absorbed into an empty
// context by the retriever.
func (a *Activities) RetrieveContext(ctx context.Context, input RetrieveContextInput) (*RetrieveContextOutput, error) {
	contextText, passages := a.retriever.RetrieveContext(ctx, input.Question)
	pkgactivity.SafeLog(ctx, "Context retrieved",
		"context_length", len(contextText),
		"passages", len(passages))
	return &RetrieveContextOutput{Context: contextText, Passages: passages}, nil
}

// GenerateAnswer produces the primary answer. A provider failure is
// non-retryable and fails the turn.
func (a *Activities) GenerateAnswer(ctx context.Context, input GenerateAnswerInput) (*GenerateAnswerOutput, error) {
	answer, err := a.generator.GenerateAnswer(ctx, input.Question, input.Context)
	if err != nil {
		return nil, nonRetryable("GenerateAnswer", err, "answer generation failed")
	}
	return &GenerateAnswerOutput{Answer: answer}, nil
}

// RegenerateAnswer produces a corrected answer. The workflow absorbs a
// failure here and keeps the original answer, so the error is informational.
func (a *Activities) RegenerateAnswer(ctx context.Context, input GenerateAnswerInput) (*GenerateAnswerOutput, error) {
	answer, err := a.generator.RegenerateAnswer(ctx, input.Question, input.PreviousAnswer, input.Context)
	if err != nil {
		return nil, nonRetryable("RegenerateAnswer", err, "answer regeneration failed")
	}

	a.emitRegenerated(ctx, answer)
	return &GenerateAnswerOutput{Answer: answer}, nil
}

// EvaluateAnswer scores the answer. It never returns an error: a judge
// failure yields a nil evaluation and the turn continues without one.
func (a *Activities) EvaluateAnswer(ctx context.Context, input EvaluateAnswerInput) (*EvaluateAnswerOutput, error) {
	if a.judge == nil {
		return &EvaluateAnswerOutput{}, nil
	}

	start := time.Now()
	outcome := a.judge.Evaluate(ctx, input.Question, input.Answer, input.Context)
	elapsed := time.Since(start).Milliseconds()

	if outcome == nil {
		pkgactivity.SafeLog(ctx, "Evaluation failed, continuing without it", "elapsed_ms", elapsed)
		return &EvaluateAnswerOutput{ElapsedMs: elapsed}, nil
	}

	outcome.ElapsedMs = elapsed
	a.emitScored(ctx, outcome)
	return &EvaluateAnswerOutput{Evaluation: outcome, ElapsedMs: elapsed}, nil
}

// RecordTurn appends the completed turn to the transcript and emits the
// completion event. Transcript failures are logged and absorbed.
func (a *Activities) RecordTurn(ctx context.Context, input RecordTurnInput) error {
	turn := input.Turn

	if a.transcript != nil {
		entry := transcript.Entry{
			Timestamp: turn.Timings.CompletedAt,
			BotName:   turn.BotProfile,
			Question:  turn.Question,
			Answer:    turn.FinalAnswer().Text,
			Context:   turn.Context,
		}
		if turn.Evaluation.HasCriteria() {
			first := turn.Evaluation.Criteria[0]
			entry.Criteria = first.Name
			score := first.Score
			entry.Score = &score
		}
		if err := a.transcript.Append(entry); err != nil {
			pkgactivity.SafeLogError(ctx, "Failed to append transcript row", "error", err)
		}
	}

	envelope, err := events.NewEnvelope(events.TypeTurnCompleted, "pipeline-activity", turn)
	if err == nil {
		wfCtx := a.GetWorkflowContext(ctx)
		envelope.WorkflowID = wfCtx.WorkflowID
		envelope.RunID = wfCtx.RunID
		envelope.IdempotencyKey = turn.ID
		a.EmitEventSafe(ctx, envelope, "turn completed event")
	}

	return nil
}

func (a *Activities) emitScored(ctx context.Context, outcome *domain.EvaluationOutcome) {
	envelope, err := events.NewEnvelope(events.TypeAnswerScored, "scoring-activity", outcome)
	if err != nil {
		return
	}
	wfCtx := a.GetWorkflowContext(ctx)
	envelope.WorkflowID = wfCtx.WorkflowID
	envelope.RunID = wfCtx.RunID
	envelope.IdempotencyKey = wfCtx.WorkflowID + ":" + wfCtx.ActivityID
	a.EmitEventSafe(ctx, envelope, "answer scored event")
}

func (a *Activities) emitRegenerated(ctx context.Context, answer domain.Answer) {
	envelope, err := events.NewEnvelope(events.TypeAnswerRegenerated, "generation-activity", answer)
	if err != nil {
		return
	}
	wfCtx := a.GetWorkflowContext(ctx)
	envelope.WorkflowID = wfCtx.WorkflowID
	envelope.RunID = wfCtx.RunID
	envelope.IdempotencyKey = answer.ID
	a.EmitEventSafe(ctx, envelope, "answer regenerated event")
}
