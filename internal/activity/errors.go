package activity

import (
	"go.temporal.io/sdk/temporal"
)

// nonRetryable wraps an error as a Temporal non-retryable application error.
// Every activity in this pipeline is single-attempt, so all activity errors
// are created through this helper; the tag categorizes the failure for
// monitoring.
func nonRetryable(tag string, cause error, msg string) error {
	return temporal.NewNonRetryableApplicationError(msg, tag, cause)
}
