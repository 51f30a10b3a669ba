package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Answer is a generated answer. Immutable once produced: a regeneration
// produces a new Answer and the original is retained for audit and display.
type Answer struct {
	// ID uniquely identifies this answer within the turn.
	ID string `json:"id" validate:"required,uuid"`

	// Text is the trimmed generated text.
	Text string `json:"text" validate:"required,min=1"`

	// GeneratedAt records when the answer was produced.
	GeneratedAt time.Time `json:"generated_at" validate:"required"`
}

// NewAnswer creates an Answer with a fresh UUID and the current time.
// Uses time.Now which makes it non-deterministic for Temporal workflows;
// use MakeAnswer inside workflow code.
func NewAnswer(text string) (*Answer, error) {
	return MakeAnswer(uuid.NewString(), text, time.Now())
}

// MakeAnswer creates an Answer from explicit ID and timestamp for
// deterministic construction in workflow executions.
func MakeAnswer(id, text string, generatedAt time.Time) (*Answer, error) {
	a := &Answer{
		ID:          id,
		Text:        strings.TrimSpace(text),
		GeneratedAt: generatedAt,
	}
	if a.Text == "" {
		return nil, ErrEmptyAnswer
	}
	return a, a.Validate()
}

// Validate checks the answer meets its structural requirements.
func (a *Answer) Validate() error { return validate.Struct(a) }

// TurnTimings captures the wall-clock accounting of one turn.
type TurnTimings struct {
	// StartedAt is when the orchestrator began the turn.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the turn finished (populated at DONE).
	CompletedAt time.Time `json:"completed_at"`

	// TotalMs is the elapsed time for the complete turn.
	TotalMs int64 `json:"total_ms"`

	// EvaluationMs is the elapsed time of the EVALUATE step alone.
	// Zero when no evaluation was performed.
	EvaluationMs int64 `json:"evaluation_ms"`
}

// Turn is the aggregate root for one question/answer exchange. It is created
// at the start of ProcessQuestion, fully populated by the end of one
// orchestrator invocation, then handed to the caller; the core retains no
// turn history across calls.
type Turn struct {
	// ID uniquely identifies the turn.
	ID string `json:"id" validate:"required,uuid"`

	// BotProfile names the prompt profile that answered the question.
	BotProfile string `json:"bot_profile,omitempty"`

	// Question is the user's question, trimmed, minimum length 1.
	Question string `json:"question" validate:"required,min=1"`

	// Context is the newline-joined retrieved passage text supplied to the
	// generator. Empty context is a valid degraded state.
	Context string `json:"context"`

	// Passages are the normalized retrieval matches, in store order.
	Passages []RetrievedPassage `json:"passages,omitempty"`

	// Answer is the primary generated answer. Always present on a
	// completed turn; a primary generation failure aborts the turn and no
	// Turn is returned at all.
	Answer Answer `json:"answer"`

	// Evaluation is the judge outcome, absent when evaluation failed or
	// was skipped. Its absence never prevents the turn from completing.
	Evaluation *EvaluationOutcome `json:"evaluation,omitempty"`

	// Decision records whether regeneration was triggered and by which
	// criteria. Derived from Evaluation, never stored independently.
	Decision *RegenerationDecision `json:"decision,omitempty"`

	// RegeneratedAnswer is the corrected answer, present only when the
	// decision triggered regeneration and the corrective call succeeded.
	RegeneratedAnswer *Answer `json:"regenerated_answer,omitempty"`

	// Timings is the wall-clock accounting for the turn.
	Timings TurnTimings `json:"timings"`
}

// Validate checks the turn aggregate.
func (t *Turn) Validate() error { return validate.Struct(t) }

// FinalAnswer returns the answer the caller should display: the regenerated
// answer when one exists, otherwise the original.
func (t *Turn) FinalAnswer() Answer {
	if t.RegeneratedAnswer != nil {
		return *t.RegeneratedAnswer
	}
	return t.Answer
}

// NormalizeQuestion trims a raw question and reports whether it is usable.
// Callers own rejection of empty questions; the pipeline assumes a non-empty
// question on entry.
func NormalizeQuestion(raw string) (string, error) {
	q := strings.TrimSpace(raw)
	if q == "" {
		return "", ErrEmptyQuestion
	}
	return q, nil
}
