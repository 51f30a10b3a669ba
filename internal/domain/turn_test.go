package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQuestion(t *testing.T) {
	t.Run("trims surrounding whitespace", func(t *testing.T) {
		q, err := NormalizeQuestion("  what is article five?  \n")

		require.NoError(t, err)
		assert.Equal(t, "what is article five?", q)
	})

	t.Run("rejects empty question", func(t *testing.T) {
		_, err := NormalizeQuestion("")
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	})

	t.Run("rejects whitespace-only question", func(t *testing.T) {
		_, err := NormalizeQuestion("   \t\n")
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	})
}

func TestMakeAnswer(t *testing.T) {
	t.Run("trims answer text", func(t *testing.T) {
		answer, err := MakeAnswer(uuid.NewString(), "  the answer  ", time.Now())

		require.NoError(t, err)
		assert.Equal(t, "the answer", answer.Text)
	})

	t.Run("rejects empty text", func(t *testing.T) {
		_, err := MakeAnswer(uuid.NewString(), "   ", time.Now())
		assert.ErrorIs(t, err, ErrEmptyAnswer)
	})
}

func TestTurnFinalAnswer(t *testing.T) {
	original, err := NewAnswer("original answer")
	require.NoError(t, err)

	t.Run("returns original when no regeneration happened", func(t *testing.T) {
		turn := &Turn{Answer: *original}
		assert.Equal(t, "original answer", turn.FinalAnswer().Text)
	})

	t.Run("returns regenerated answer when present", func(t *testing.T) {
		corrected, err := NewAnswer("corrected answer")
		require.NoError(t, err)

		turn := &Turn{Answer: *original, RegeneratedAnswer: corrected}
		assert.Equal(t, "corrected answer", turn.FinalAnswer().Text)
	})
}

func TestBuildContext(t *testing.T) {
	t.Run("joins passage texts with blank lines", func(t *testing.T) {
		passages := []RetrievedPassage{
			{Text: "first passage"},
			{Text: "second passage"},
		}

		assert.Equal(t, "first passage\n\nsecond passage", BuildContext(passages))
	})

	t.Run("skips passages without text", func(t *testing.T) {
		passages := []RetrievedPassage{
			{Text: "first"},
			{Text: ""},
			{Text: "third"},
		}

		assert.Equal(t, "first\n\nthird", BuildContext(passages))
	})

	t.Run("empty input yields empty context", func(t *testing.T) {
		assert.Empty(t, BuildContext(nil))
		assert.Empty(t, BuildContext([]RetrievedPassage{{Text: ""}}))
	})
}

func TestEvaluationOutcomeHasCriteria(t *testing.T) {
	var nilOutcome *EvaluationOutcome
	assert.False(t, nilOutcome.HasCriteria())
	assert.False(t, (&EvaluationOutcome{}).HasCriteria())
	assert.True(t, (&EvaluationOutcome{Criteria: []CriterionScore{{Name: "x", Score: 1}}}).HasCriteria())
}

func TestValidCriterionScore(t *testing.T) {
	assert.False(t, ValidCriterionScore(0))
	assert.True(t, ValidCriterionScore(1))
	assert.True(t, ValidCriterionScore(5))
	assert.False(t, ValidCriterionScore(6))
	assert.False(t, ValidCriterionScore(-3))
}

func TestCriterionScoreValidate(t *testing.T) {
	assert.NoError(t, CriterionScore{Name: "Hallucination", Score: 3}.Validate())
	assert.ErrorIs(t, CriterionScore{Name: "Hallucination", Score: 0}.Validate(), ErrInvalidCriterion)
	assert.ErrorIs(t, CriterionScore{Name: "Hallucination", Score: 7}.Validate(), ErrInvalidCriterion)
}

func TestValidateThreshold(t *testing.T) {
	assert.NoError(t, ValidateThreshold(1))
	assert.NoError(t, ValidateThreshold(5))
	assert.ErrorIs(t, ValidateThreshold(0), ErrInvalidThreshold)
	assert.ErrorIs(t, ValidateThreshold(6), ErrInvalidThreshold)
}

func TestRetrievedPassageClone(t *testing.T) {
	original := RetrievedPassage{
		Text:     "passage",
		Score:    0.9,
		Metadata: map[string]string{"page": "4"},
	}

	clone := original.Clone()
	clone.Metadata["page"] = "9"

	assert.Equal(t, "4", original.Metadata["page"])
}
