package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-ragcheck/internal/domain"
)

type fakeRetriever struct {
	context  string
	passages []domain.RetrievedPassage
}

func (f *fakeRetriever) RetrieveContext(_ context.Context, _ string) (string, []domain.RetrievedPassage) {
	return f.context, f.passages
}

type fakeGenerator struct {
	answer         string
	generateErr    error
	regenerated    string
	regenerateErr  error
	regenerateCall int
	gotPrevious    string
}

func (f *fakeGenerator) GenerateAnswer(_ context.Context, _, _ string) (domain.Answer, error) {
	if f.generateErr != nil {
		return domain.Answer{}, f.generateErr
	}
	answer, err := domain.NewAnswer(f.answer)
	if err != nil {
		return domain.Answer{}, err
	}
	return *answer, nil
}

func (f *fakeGenerator) RegenerateAnswer(_ context.Context, _, previousAnswer, _ string) (domain.Answer, error) {
	f.regenerateCall++
	f.gotPrevious = previousAnswer
	if f.regenerateErr != nil {
		return domain.Answer{}, f.regenerateErr
	}
	answer, err := domain.NewAnswer(f.regenerated)
	if err != nil {
		return domain.Answer{}, err
	}
	return *answer, nil
}

type fakeJudge struct {
	outcome *domain.EvaluationOutcome
	delay   time.Duration
}

func (f *fakeJudge) Evaluate(_ context.Context, _, _, _ string) *domain.EvaluationOutcome {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.outcome
}

func evaluationWith(scores ...int) *domain.EvaluationOutcome {
	outcome := &domain.EvaluationOutcome{}
	for _, score := range scores {
		outcome.Criteria = append(outcome.Criteria, domain.CriterionScore{
			Name:  domain.CriterionContextualHallucination,
			Score: score,
		})
	}
	return outcome
}

func TestProcessQuestion(t *testing.T) {
	ctx := context.Background()

	t.Run("completes a turn without regeneration", func(t *testing.T) {
		retriever := &fakeRetriever{context: "the context", passages: []domain.RetrievedPassage{{Text: "the context"}}}
		generator := &fakeGenerator{answer: "a fine answer"}
		judge := &fakeJudge{outcome: evaluationWith(1)}

		o := NewOrchestrator(retriever, generator, judge, 3, "constitution", nil)
		turn, err := o.ProcessQuestion(ctx, "  what is article five?  ")

		require.NoError(t, err)
		assert.Equal(t, "what is article five?", turn.Question)
		assert.Equal(t, "the context", turn.Context)
		assert.Equal(t, "a fine answer", turn.Answer.Text)
		require.NotNil(t, turn.Decision)
		assert.False(t, turn.Decision.ShouldRegenerate)
		assert.Nil(t, turn.RegeneratedAnswer)
		assert.Equal(t, "a fine answer", turn.FinalAnswer().Text)
		assert.Equal(t, 0, generator.regenerateCall)
		assert.Equal(t, "constitution", turn.BotProfile)
		assert.NotEmpty(t, turn.ID)
	})

	t.Run("regenerates when a criterion meets the threshold", func(t *testing.T) {
		retriever := &fakeRetriever{context: "ctx"}
		generator := &fakeGenerator{answer: "a hallucinated answer", regenerated: "a corrected answer"}
		judge := &fakeJudge{outcome: evaluationWith(2, 4)}

		o := NewOrchestrator(retriever, generator, judge, 3, "constitution", nil)
		turn, err := o.ProcessQuestion(ctx, "q")

		require.NoError(t, err)
		assert.True(t, turn.Decision.ShouldRegenerate)
		require.Len(t, turn.Decision.TriggeringCriteria, 1)
		assert.Equal(t, 4, turn.Decision.TriggeringCriteria[0].Score)
		require.NotNil(t, turn.RegeneratedAnswer)
		assert.Equal(t, "a corrected answer", turn.RegeneratedAnswer.Text)
		assert.Equal(t, "a corrected answer", turn.FinalAnswer().Text)
		assert.Equal(t, "a hallucinated answer", turn.Answer.Text)
		assert.Equal(t, "a hallucinated answer", generator.gotPrevious)
	})

	t.Run("generation failure aborts the turn", func(t *testing.T) {
		retriever := &fakeRetriever{}
		generator := &fakeGenerator{generateErr: errors.New("provider down")}

		o := NewOrchestrator(retriever, generator, nil, 3, "constitution", nil)
		turn, err := o.ProcessQuestion(ctx, "q")

		require.Error(t, err)
		assert.Nil(t, turn)
	})

	t.Run("evaluation failure completes the turn without regeneration", func(t *testing.T) {
		retriever := &fakeRetriever{context: "ctx"}
		generator := &fakeGenerator{answer: "the answer"}
		judge := &fakeJudge{outcome: nil}

		o := NewOrchestrator(retriever, generator, judge, 3, "constitution", nil)
		turn, err := o.ProcessQuestion(ctx, "q")

		require.NoError(t, err)
		assert.Nil(t, turn.Evaluation)
		assert.False(t, turn.Decision.ShouldRegenerate)
		assert.Equal(t, 0, generator.regenerateCall)
	})

	t.Run("nil judge skips evaluation entirely", func(t *testing.T) {
		retriever := &fakeRetriever{}
		generator := &fakeGenerator{answer: "the answer"}

		o := NewOrchestrator(retriever, generator, nil, 3, "constitution", nil)
		turn, err := o.ProcessQuestion(ctx, "q")

		require.NoError(t, err)
		assert.Nil(t, turn.Evaluation)
		assert.Zero(t, turn.Timings.EvaluationMs)
	})

	t.Run("regeneration failure keeps the original answer", func(t *testing.T) {
		retriever := &fakeRetriever{context: "ctx"}
		generator := &fakeGenerator{answer: "the original", regenerateErr: errors.New("timeout")}
		judge := &fakeJudge{outcome: evaluationWith(5)}

		o := NewOrchestrator(retriever, generator, judge, 3, "constitution", nil)
		turn, err := o.ProcessQuestion(ctx, "q")

		require.NoError(t, err)
		assert.True(t, turn.Decision.ShouldRegenerate)
		assert.Nil(t, turn.RegeneratedAnswer)
		assert.Equal(t, "the original", turn.FinalAnswer().Text)
	})

	t.Run("empty question is rejected before any work", func(t *testing.T) {
		o := NewOrchestrator(&fakeRetriever{}, &fakeGenerator{answer: "x"}, nil, 3, "constitution", nil)

		_, err := o.ProcessQuestion(ctx, "   ")
		assert.ErrorIs(t, err, domain.ErrEmptyQuestion)
	})

	t.Run("evaluation time is recorded separately from the total", func(t *testing.T) {
		retriever := &fakeRetriever{}
		generator := &fakeGenerator{answer: "the answer"}
		judge := &fakeJudge{outcome: evaluationWith(1), delay: 20 * time.Millisecond}

		o := NewOrchestrator(retriever, generator, judge, 3, "constitution", nil)
		turn, err := o.ProcessQuestion(ctx, "q")

		require.NoError(t, err)
		assert.GreaterOrEqual(t, turn.Timings.EvaluationMs, int64(20))
		assert.GreaterOrEqual(t, turn.Timings.TotalMs, turn.Timings.EvaluationMs)
		assert.Equal(t, turn.Timings.EvaluationMs, turn.Evaluation.ElapsedMs)
		assert.False(t, turn.Timings.CompletedAt.Before(turn.Timings.StartedAt))
	})

	t.Run("RegenerateAnswerIfNeeded returns nil below the threshold", func(t *testing.T) {
		generator := &fakeGenerator{regenerated: "corrected"}
		o := NewOrchestrator(&fakeRetriever{}, generator, nil, 3, "constitution", nil)

		answer := o.RegenerateAnswerIfNeeded(ctx, "q", "original", "ctx", evaluationWith(2))

		assert.Nil(t, answer)
		assert.Equal(t, 0, generator.regenerateCall)
	})

	t.Run("RegenerateAnswerIfNeeded produces a corrected answer", func(t *testing.T) {
		generator := &fakeGenerator{regenerated: "corrected"}
		o := NewOrchestrator(&fakeRetriever{}, generator, nil, 3, "constitution", nil)

		answer := o.RegenerateAnswerIfNeeded(ctx, "q", "original", "ctx", evaluationWith(4))

		require.NotNil(t, answer)
		assert.Equal(t, "corrected", answer.Text)
		assert.Equal(t, "original", generator.gotPrevious)
	})

	t.Run("zero threshold falls back to the default", func(t *testing.T) {
		retriever := &fakeRetriever{}
		generator := &fakeGenerator{answer: "the answer", regenerated: "corrected"}
		judge := &fakeJudge{outcome: evaluationWith(domain.DefaultRegenerationThreshold)}

		o := NewOrchestrator(retriever, generator, judge, 0, "constitution", nil)
		turn, err := o.ProcessQuestion(ctx, "q")

		require.NoError(t, err)
		assert.True(t, turn.Decision.ShouldRegenerate)
	})
}
