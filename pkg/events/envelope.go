// Package events provides the generic event infrastructure for domain event
// emission. It defines the Envelope type wrapping domain events with
// consistent metadata and the EventSink interface for event storage or
// transmission.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the answer pipeline.
const (
	// TypeTurnCompleted is emitted once per completed turn.
	TypeTurnCompleted = "pipeline.turn_completed"

	// TypeAnswerScored is emitted when a judge produces an evaluation.
	TypeAnswerScored = "scoring.answer_scored"

	// TypeAnswerRegenerated is emitted when a corrected answer is produced.
	TypeAnswerRegenerated = "generation.answer_regenerated"
)

// Envelope wraps a domain event with metadata for routing, deduplication,
// and workflow correlation. The payload schema varies by Type and Version.
type Envelope struct {
	// ID uniquely identifies this event instance.
	ID string `json:"id"`

	// Type identifies the event for routing, one of the Type constants.
	Type string `json:"type"`

	// Source identifies the component that emitted this event.
	Source string `json:"source"`

	// Version enables schema evolution, semantic versioning from "1.0.0".
	Version string `json:"version"`

	// Timestamp records when the event was emitted.
	Timestamp time.Time `json:"timestamp"`

	// IdempotencyKey lets sinks drop duplicate emissions.
	IdempotencyKey string `json:"idempotency_key"`

	// WorkflowID and RunID correlate the event with the workflow execution
	// that produced it. Empty outside workflow executions.
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`

	// Payload is the domain-specific event data.
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope builds an envelope for a payload, marshaling it to JSON.
// The idempotency key is left to the caller since it must be deterministic
// across workflow replays.
func NewEnvelope(eventType, source string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Version:   "1.0.0",
		Timestamp: time.Now(),
		Payload:   data,
	}, nil
}

// EventSink emits events to downstream consumers. Implementations handle
// idempotency and return quickly; callers never fail their primary operation
// on a sink error.
type EventSink interface {
	// Append adds an event to the sink with best-effort delivery.
	Append(ctx context.Context, envelope Envelope) error
}

// NoOpEventSink discards all events. Used in tests and when event emission
// is disabled.
type NoOpEventSink struct{}

// Append implements EventSink with no-op behavior.
func (n *NoOpEventSink) Append(_ context.Context, _ Envelope) error { return nil }

// NewNoOpEventSink creates a sink that discards every event.
func NewNoOpEventSink() EventSink { return &NoOpEventSink{} }
