// Package pipeline orchestrates one question/answer turn:
// retrieve context, generate an answer, evaluate it, decide on regeneration,
// and optionally produce a corrected answer.
//
// Failure handling is deliberately asymmetric. Retrieval, evaluation, and
// regeneration failures degrade the turn and it still completes; a primary
// generation failure aborts the turn and no Turn is returned. Nothing in the
// pipeline retries: every external call is made exactly once.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-ragcheck/internal/domain"
	"github.com/ahrav/go-ragcheck/internal/scoring"
)

// ContextRetriever supplies retrieval context for a question. Satisfied by
// retrieval.Retriever.
type ContextRetriever interface {
	RetrieveContext(ctx context.Context, query string) (string, []domain.RetrievedPassage)
}

// AnswerGenerator produces first-pass and corrected answers. Satisfied by
// generation.Generator.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question, contextText string) (domain.Answer, error)
	RegenerateAnswer(ctx context.Context, question, previousAnswer, contextText string) (domain.Answer, error)
}

// Orchestrator runs complete turns. It holds no per-turn state; concurrent
// turns share one Orchestrator.
type Orchestrator struct {
	retriever ContextRetriever
	generator AnswerGenerator
	judge     scoring.Judge
	threshold int
	profile   string
	logger    *slog.Logger
}

// NewOrchestrator creates a turn orchestrator. A nil judge skips the
// EVALUATE step entirely; the turn then completes without an evaluation and
// regeneration is never triggered.
func NewOrchestrator(
	retriever ContextRetriever,
	generator AnswerGenerator,
	judge scoring.Judge,
	threshold int,
	profile string,
	logger *slog.Logger,
) *Orchestrator {
	if threshold == 0 {
		threshold = domain.DefaultRegenerationThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		retriever: retriever,
		generator: generator,
		judge:     judge,
		threshold: threshold,
		profile:   profile,
		logger:    logger.With("component", "pipeline"),
	}
}

// ProcessQuestion runs one full turn for the question and returns the
// populated Turn. The only failures that surface as errors are an empty
// question and a primary generation failure; the latter aborts the turn
// with no Turn at all.
func (o *Orchestrator) ProcessQuestion(ctx context.Context, rawQuestion string) (*domain.Turn, error) {
	question, err := domain.NormalizeQuestion(rawQuestion)
	if err != nil {
		return nil, err
	}

	turn := &domain.Turn{
		ID:         uuid.NewString(),
		BotProfile: o.profile,
		Question:   question,
		Timings:    domain.TurnTimings{StartedAt: time.Now()},
	}
	logger := o.logger.With("turn_id", turn.ID)
	logger.Info("processing question", "question_length", len(question))

	// RETRIEVE. Failures were already absorbed by the retriever; an empty
	// context is a valid degraded state.
	turn.Context, turn.Passages = o.retriever.RetrieveContext(ctx, question)
	logger.Info("retrieved context",
		"context_length", len(turn.Context),
		"passages", len(turn.Passages))

	// GENERATE. The one fatal step.
	answer, err := o.generator.GenerateAnswer(ctx, question, turn.Context)
	if err != nil {
		logger.Error("answer generation failed", "error", err)
		return nil, err
	}
	turn.Answer = answer

	// EVALUATE. Timed separately; a nil outcome means evaluation failed
	// or was skipped and the turn continues without it.
	if o.judge != nil {
		evalStart := time.Now()
		turn.Evaluation = o.judge.Evaluate(ctx, question, answer.Text, turn.Context)
		turn.Timings.EvaluationMs = time.Since(evalStart).Milliseconds()

		if turn.Evaluation == nil {
			logger.Warn("evaluation failed, continuing without it",
				"evaluation_ms", turn.Timings.EvaluationMs)
		} else {
			turn.Evaluation.ElapsedMs = turn.Timings.EvaluationMs
			logger.Info("evaluation completed",
				"criteria", len(turn.Evaluation.Criteria),
				"evaluation_ms", turn.Timings.EvaluationMs)
		}
	}

	// DECIDE and, when triggered, REGENERATE. A regeneration failure keeps
	// the original answer.
	decision := domain.Decide(turn.Evaluation, o.threshold)
	turn.Decision = &decision

	if decision.ShouldRegenerate {
		logger.Info("regeneration triggered",
			"threshold", o.threshold,
			"triggering_criteria", criterionNames(decision.TriggeringCriteria))

		turn.RegeneratedAnswer = o.regenerate(ctx, question, answer.Text, turn.Context)
	}

	turn.Timings.CompletedAt = time.Now()
	turn.Timings.TotalMs = turn.Timings.CompletedAt.Sub(turn.Timings.StartedAt).Milliseconds()
	logger.Info("turn completed",
		"total_ms", turn.Timings.TotalMs,
		"regenerated", turn.RegeneratedAnswer != nil)

	return turn, nil
}

// RegenerateAnswerIfNeeded applies the regeneration policy to an evaluation
// and produces a corrected answer when it triggers. Nil means the policy did
// not trigger, or the corrective call failed and the original answer stands.
func (o *Orchestrator) RegenerateAnswerIfNeeded(
	ctx context.Context,
	question, answer, contextText string,
	evaluation *domain.EvaluationOutcome,
) *domain.Answer {
	decision := domain.Decide(evaluation, o.threshold)
	if !decision.ShouldRegenerate {
		return nil
	}
	return o.regenerate(ctx, question, answer, contextText)
}

// regenerate makes the single corrective generation attempt. Failure is
// absorbed here: the caller keeps the original answer.
func (o *Orchestrator) regenerate(ctx context.Context, question, answer, contextText string) *domain.Answer {
	regenerated, err := o.generator.RegenerateAnswer(ctx, question, answer, contextText)
	if err != nil {
		o.logger.Error("regeneration failed, keeping original answer", "error", err)
		return nil
	}
	return &regenerated
}

func criterionNames(criteria []domain.CriterionScore) []string {
	names := make([]string, 0, len(criteria))
	for _, c := range criteria {
		names = append(names, c.Name)
	}
	return names
}
