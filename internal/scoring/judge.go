// Package scoring evaluates generated answers against quality criteria.
//
// Two judges are provided: a rubric judge backed by a multi-criteria
// evaluation service, and a fast judge backed by a local completion server
// with constrained decoding. Both share one contract: evaluation failure is
// absorbed at this boundary, reported as a nil outcome, and never aborts the
// owning turn.
package scoring

import (
	"context"

	"github.com/ahrav/go-ragcheck/internal/domain"
)

// Judge scores an answer against the question and its retrieval context.
type Judge interface {
	// Evaluate returns the evaluation outcome, or nil when evaluation
	// failed for any reason. Implementations never return an error for
	// judge-side failures; the turn continues without an evaluation.
	Evaluate(ctx context.Context, question, answer, contextText string) *domain.EvaluationOutcome
}
