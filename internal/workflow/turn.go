// Package workflow orchestrates one question/answer turn as a Temporal
// workflow with deterministic control flow:
// RetrieveContext → GenerateAnswer → EvaluateAnswer → Decide →
// [RegenerateAnswer] → RecordTurn.
//
// Every activity runs with MaximumAttempts 1. The pipeline makes each
// external call exactly once; degraded steps are absorbed here, not retried.
package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ahrav/go-ragcheck/internal/activity"
	"github.com/ahrav/go-ragcheck/internal/domain"
)

// TaskQueue is the Temporal task queue for turn workflows.
const TaskQueue = "answer-pipeline"

// TurnRequest starts one turn.
type TurnRequest struct {
	// Question is the raw user question; normalized before processing.
	Question string `json:"question"`

	// BotProfile names the prompt profile answering the question.
	BotProfile string `json:"bot_profile"`

	// Threshold is the regeneration threshold; zero selects the default.
	Threshold int `json:"threshold"`
}

// TurnWorkflow executes one complete turn and returns the populated Turn.
// Only an empty question or a primary generation failure fails the workflow.
func TurnWorkflow(ctx workflow.Context, req TurnRequest) (*domain.Turn, error) {
	const currentVersion = 1
	_ = workflow.GetVersion(ctx, "turn.v", workflow.DefaultVersion, currentVersion)

	question, err := domain.NormalizeQuestion(req.Question)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError("invalid turn request", "Validation", err)
	}

	threshold := req.Threshold
	if threshold == 0 {
		threshold = domain.DefaultRegenerationThreshold
	}

	// Single attempt everywhere: a failed call is a failed call.
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	logger := workflow.GetLogger(ctx)

	turn := &domain.Turn{
		ID:         workflow.GetInfo(ctx).WorkflowExecution.ID,
		BotProfile: req.BotProfile,
		Question:   question,
		Timings:    domain.TurnTimings{StartedAt: workflow.Now(ctx)},
	}

	var activities *activity.Activities

	// RETRIEVE. An activity-level failure degrades to empty context.
	var retrieved activity.RetrieveContextOutput
	if err := workflow.ExecuteActivity(ctx, activities.RetrieveContext,
		activity.RetrieveContextInput{Question: question}).Get(ctx, &retrieved); err != nil {
		logger.Warn("Context retrieval failed, continuing with empty context", "error", err)
	}
	turn.Context = retrieved.Context
	turn.Passages = retrieved.Passages

	// GENERATE. The one fatal step.
	var generated activity.GenerateAnswerOutput
	if err := workflow.ExecuteActivity(ctx, activities.GenerateAnswer,
		activity.GenerateAnswerInput{Question: question, Context: turn.Context}).Get(ctx, &generated); err != nil {
		logger.Error("Answer generation failed, aborting turn", "error", err)
		return nil, err
	}
	turn.Answer = generated.Answer

	// EVALUATE. Failure yields no evaluation and the turn continues.
	var evaluated activity.EvaluateAnswerOutput
	if err := workflow.ExecuteActivity(ctx, activities.EvaluateAnswer,
		activity.EvaluateAnswerInput{
			Question: question,
			Answer:   turn.Answer.Text,
			Context:  turn.Context,
		}).Get(ctx, &evaluated); err != nil {
		logger.Warn("Evaluation failed, continuing without it", "error", err)
	}
	turn.Evaluation = evaluated.Evaluation
	turn.Timings.EvaluationMs = evaluated.ElapsedMs

	// DECIDE and optionally REGENERATE. A regeneration failure keeps the
	// original answer.
	decision := domain.Decide(turn.Evaluation, threshold)
	turn.Decision = &decision

	if decision.ShouldRegenerate {
		logger.Info("Regeneration triggered",
			"threshold", threshold,
			"triggering_criteria", len(decision.TriggeringCriteria))

		var regenerated activity.GenerateAnswerOutput
		if err := workflow.ExecuteActivity(ctx, activities.RegenerateAnswer,
			activity.GenerateAnswerInput{
				Question:       question,
				Context:        turn.Context,
				PreviousAnswer: turn.Answer.Text,
			}).Get(ctx, &regenerated); err != nil {
			logger.Error("Regeneration failed, keeping original answer", "error", err)
		} else {
			turn.RegeneratedAnswer = &regenerated.Answer
		}
	}

	turn.Timings.CompletedAt = workflow.Now(ctx)
	turn.Timings.TotalMs = turn.Timings.CompletedAt.Sub(turn.Timings.StartedAt).Milliseconds()

	// RECORD. Best effort; the turn result does not depend on it.
	if err := workflow.ExecuteActivity(ctx, activities.RecordTurn,
		activity.RecordTurnInput{Turn: *turn}).Get(ctx, nil); err != nil {
		logger.Warn("Turn recording failed", "error", err)
	}

	return turn, nil
}
