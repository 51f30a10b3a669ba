package normalize

import (
	"strconv"

	"github.com/ahrav/go-ragcheck/internal/domain"
)

// criterionNameKeys is the fixed priority order of keys that may hold a
// criterion's name inside a judge payload entry.
var criterionNameKeys = []string{"criteria", "name", "criterion_name"}

// Criteria extracts the criterion list from a judge payload.
//
// The list may appear at the top-level "criteria" key or nested under
// "raw_response" as "results" or "criteria"; these locations are tried in
// that fixed priority order and the first list found wins. A payload shaped
// as a bare single score ({"score": X} with neither "criteria" nor
// "raw_response") synthesizes one criterion under the canonical
// Contextual_Hallucination label so both judge variants normalize to the
// same shape.
//
// Each entry's score is coerced via CoerceScore; an entry whose score cannot
// be coerced, or falls outside the rubric range, is excluded from the list
// (not the whole evaluation) and logged.
func Criteria(payload map[string]any) []domain.CriterionScore {
	if payload == nil {
		return nil
	}

	if list, ok := criteriaList(payload); ok {
		return criteriaFromList(list)
	}

	// Single-score fast-judge shape.
	_, hasCriteria := payload["criteria"]
	_, hasRaw := payload["raw_response"]
	if raw, ok := payload["score"]; ok && !hasCriteria && !hasRaw {
		if score, ok := CoerceScore(raw); ok && domain.ValidCriterionScore(score) {
			return []domain.CriterionScore{{Name: domain.CriterionContextualHallucination, Score: score}}
		}
		logger().Warn("rejected single-score payload", "score", raw)
	}

	return nil
}

// criteriaList locates the criterion list using the documented priority
// order: criteria, raw_response.results, raw_response.criteria.
func criteriaList(payload map[string]any) ([]any, bool) {
	if list, ok := payload["criteria"].([]any); ok {
		return list, true
	}
	raw, ok := payload["raw_response"].(map[string]any)
	if !ok {
		return nil, false
	}
	if list, ok := raw["results"].([]any); ok {
		return list, true
	}
	if list, ok := raw["criteria"].([]any); ok {
		return list, true
	}
	return nil, false
}

// criteriaFromList converts raw list entries into validated criterion scores,
// excluding malformed entries individually.
func criteriaFromList(list []any) []domain.CriterionScore {
	criteria := make([]domain.CriterionScore, 0, len(list))
	for _, entry := range list {
		item, ok := entry.(map[string]any)
		if !ok {
			logger().Debug("skipping non-object criterion entry")
			continue
		}

		name := criterionName(item)
		score, ok := CoerceScore(item["score"])
		if !ok {
			logger().Debug("excluding criterion with uncoercible score",
				"criterion", name, "score", item["score"])
			continue
		}
		if !domain.ValidCriterionScore(score) {
			logger().Warn("excluding criterion with out-of-range score",
				"criterion", name, "score", score)
			continue
		}

		criteria = append(criteria, domain.CriterionScore{Name: name, Score: score})
	}
	if len(criteria) == 0 {
		return nil
	}
	return criteria
}

// criterionName reads a criterion's name using the fixed key priority order.
func criterionName(item map[string]any) string {
	for _, key := range criterionNameKeys {
		if name, ok := item[key].(string); ok && name != "" {
			return name
		}
	}
	return ""
}

// CoerceScore converts a loosely-typed score value into an integer.
// Numeric types convert directly (truncating floats); strings convert via
// float-then-truncate. Any other type, or a conversion failure, reports
// false so the caller can exclude that single criterion.
func CoerceScore(v any) (int, bool) {
	switch score := v.(type) {
	case int:
		return score, true
	case int64:
		return int(score), true
	case float64:
		return int(score), true
	case string:
		f, err := strconv.ParseFloat(score, 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}
