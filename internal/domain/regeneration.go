package domain

// DefaultRegenerationThreshold is the process-wide default threshold: any
// criterion scoring at or above it triggers a corrective regeneration.
const DefaultRegenerationThreshold = 3

// ValidateThreshold checks a regeneration threshold against the rubric
// range. The threshold compares against criterion scores, so it shares
// their bounds.
func ValidateThreshold(threshold int) error {
	if threshold < MinCriterionScore || threshold > MaxCriterionScore {
		return ErrInvalidThreshold
	}
	return nil
}

// RegenerationDecision is the outcome of the DECIDE step: whether to produce
// a corrected answer and which criteria triggered it.
type RegenerationDecision struct {
	// ShouldRegenerate is true iff at least one criterion scored at or
	// above the configured threshold.
	ShouldRegenerate bool `json:"should_regenerate"`

	// TriggeringCriteria is the full sequence of criteria that met the
	// threshold, preserving the order they appeared in the evaluation.
	// Empty when ShouldRegenerate is false.
	TriggeringCriteria []CriterionScore `json:"triggering_criteria"`
}

// Decide is the regeneration policy: a pure function over an optional
// evaluation outcome and a threshold.
//
// With no evaluation outcome, or an outcome with zero criteria, the decision
// is always "do not regenerate". The policy is monotonic in the threshold:
// raising it can only flip ShouldRegenerate from true to false.
func Decide(evaluation *EvaluationOutcome, threshold int) RegenerationDecision {
	decision := RegenerationDecision{TriggeringCriteria: []CriterionScore{}}

	if !evaluation.HasCriteria() {
		return decision
	}

	for _, criterion := range evaluation.Criteria {
		if criterion.Score >= threshold {
			decision.TriggeringCriteria = append(decision.TriggeringCriteria, criterion)
		}
	}

	decision.ShouldRegenerate = len(decision.TriggeringCriteria) > 0
	return decision
}
