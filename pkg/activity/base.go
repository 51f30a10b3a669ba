// Package activity provides common infrastructure for Temporal activity
// implementations: workflow context extraction, safe logging, and event
// emission that work both inside activity executions and in plain test
// contexts.
package activity

import (
	"context"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"

	"github.com/ahrav/go-ragcheck/pkg/events"
)

// WorkflowContext is metadata extracted from the Temporal activity context,
// with generated fallbacks for non-activity (test) contexts.
type WorkflowContext struct {
	WorkflowID string
	RunID      string
	ActivityID string
}

// BaseActivities provides event emission and context extraction shared by
// all activity types. Embed it in domain activity structs.
type BaseActivities struct {
	eventSink events.EventSink
}

// NewBaseActivities creates a BaseActivities with the provided event sink.
// A nil sink disables event emission.
func NewBaseActivities(sink events.EventSink) BaseActivities {
	return BaseActivities{eventSink: sink}
}

// GetWorkflowContext extracts workflow execution details from the activity
// context. Outside an activity execution, where activity.GetInfo panics,
// it returns generated test identifiers instead.
func (b *BaseActivities) GetWorkflowContext(ctx context.Context) WorkflowContext {
	var wfCtx WorkflowContext

	func() {
		defer func() {
			if r := recover(); r != nil {
				wfCtx.WorkflowID = "test-workflow-" + uuid.NewString()[:8]
				wfCtx.RunID = "test-run-" + uuid.NewString()[:8]
				wfCtx.ActivityID = "test-activity"
			}
		}()

		info := activity.GetInfo(ctx)
		wfCtx.WorkflowID = info.WorkflowExecution.ID
		wfCtx.RunID = info.WorkflowExecution.RunID
		wfCtx.ActivityID = info.ActivityID
	}()

	return wfCtx
}

// EmitEventSafe emits an event with best-effort delivery: one attempt, no
// retry, and a failure never propagates to the caller. Events matter for
// observability, not correctness.
func (b *BaseActivities) EmitEventSafe(ctx context.Context, envelope events.Envelope, description string) {
	if b.eventSink == nil {
		return
	}

	if err := b.eventSink.Append(ctx, envelope); err != nil {
		SafeLogError(ctx, "Failed to emit "+description,
			"event_type", envelope.Type,
			"error", err)
		return
	}

	SafeLog(ctx, "Event emitted: "+description,
		"event_type", envelope.Type,
		"idempotency_key", envelope.IdempotencyKey)
}

// SafeLog logs through the activity logger when inside an activity
// execution and silently ignores the call otherwise.
func SafeLog(ctx context.Context, msg string, keyvals ...any) {
	defer func() {
		if recover() != nil {
			// Not an activity context, ignore.
		}
	}()
	activity.GetLogger(ctx).Info(msg, keyvals...)
}

// SafeLogError is SafeLog at ERROR level.
func SafeLogError(ctx context.Context, msg string, keyvals ...any) {
	defer func() {
		if recover() != nil {
			// Not an activity context, ignore.
		}
	}()
	activity.GetLogger(ctx).Error(msg, keyvals...)
}

// RecordHeartbeat records an activity heartbeat, safely ignoring
// non-activity contexts.
func RecordHeartbeat(ctx context.Context, details ...any) {
	defer func() {
		if recover() != nil {
			// Not an activity context, ignore.
		}
	}()
	activity.RecordHeartbeat(ctx, details...)
}
