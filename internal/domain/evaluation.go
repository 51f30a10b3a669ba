// Package domain provides the core types and pure business logic for the
// self-correcting answer pipeline: retrieved passages, answers, criterion
// scores, evaluation outcomes, and the regeneration decision.
//
// The types support one complete question-to-answer exchange (a Turn):
// retrieval context, the generated answer, an optional judge evaluation, the
// regeneration decision derived from it, and an optional corrected answer.
// All decision logic in this package is pure and deterministic - no I/O.
package domain

import (
	"encoding/json"
)

// Rubric score bounds. Judges grade each criterion on an integer scale where
// a higher score indicates a higher judged risk (e.g. more hallucination).
const (
	// MinCriterionScore is the lowest valid rubric score.
	MinCriterionScore = 1

	// MaxCriterionScore is the highest valid rubric score.
	MaxCriterionScore = 5
)

// CriterionContextualHallucination is the canonical criterion name
// synthesized for single-score (fast) judge responses. Using a fixed label
// lets downstream logic treat both judge variants identically.
const CriterionContextualHallucination = "Contextual_Hallucination"

// CriterionScore is a single named rubric dimension with its integer score.
//
// Scores outside [1,5] from a malformed upstream payload must be rejected
// (treated as "no score"), never silently clamped; normalization drops the
// offending criterion and keeps the rest.
type CriterionScore struct {
	// Name identifies the rubric dimension (e.g. "Hallucination").
	Name string `json:"name" validate:"required,min=1"`

	// Score is the judged value, between 1 (best) and 5 (worst risk).
	Score int `json:"score" validate:"min=1,max=5"`
}

// Validate checks the criterion against the rubric bounds.
func (c CriterionScore) Validate() error {
	if !ValidCriterionScore(c.Score) {
		return ErrInvalidCriterion
	}
	return validate.Struct(c)
}

// ValidCriterionScore reports whether an integer score is inside the rubric
// range. Used by normalization to reject, not clamp, malformed scores.
func ValidCriterionScore(score int) bool {
	return score >= MinCriterionScore && score <= MaxCriterionScore
}

// EvaluationOutcome is the result of judging one (question, answer, context)
// triple. The pipeline reasons only over Criteria; RawPayload is retained for
// debugging and audit.
//
// Evaluation is advisory and never blocks answer delivery: a Turn is complete
// with or without an outcome.
type EvaluationOutcome struct {
	// Criteria holds zero or more named scores in the order the judge
	// reported them (exactly one for the fast judge).
	Criteria []CriterionScore `json:"criteria"`

	// RawPayload preserves the judge response body for debugging.
	RawPayload json.RawMessage `json:"raw_payload,omitempty"`

	// ElapsedMs is the wall-clock time of the evaluation round trip.
	// Recorded separately from total turn time since the external judge
	// is the step most likely to dominate latency.
	ElapsedMs int64 `json:"elapsed_ms"`
}

// HasCriteria reports whether the outcome carries at least one scored criterion.
func (e *EvaluationOutcome) HasCriteria() bool {
	return e != nil && len(e.Criteria) > 0
}
