package constellation

import (
	"context"

	"github.com/constellation-engine/core/engine"
	"github.com/constellation-engine/core/kafka"
	"github.com/constellation-engine/core/kafka/producer"
	"github.com/constellation-engine/core/logger"
)

// Lifecycle event types published to the execution-events topic. Purely
// observational: nothing in the engine or suspend packages consumes these,
// so a facade run without a Publisher wired behaves identically.
const (
	EventExecutionSuspended = "execution.suspended"
	EventExecutionResumed   = "execution.resumed"
	EventExecutionCompleted = "execution.completed"
	EventExecutionFailed    = "execution.failed"
)

// ExecutionEvent is the payload carried by every lifecycle event.
type ExecutionEvent struct {
	ExecutionID     string                 `json:"executionId"`
	StructuralHash  string                 `json:"structuralHash"`
	Status          engine.ExecutionStatus `json:"status"`
	ResumptionCount int                    `json:"resumptionCount"`
}

// EventPublisher emits execution lifecycle transitions to Kafka. It wraps
// producer.Publisher rather than requiring one directly so a facade Engine
// constructed without Kafka configured can pass a nil *EventPublisher and
// every emit call below becomes a no-op.
type EventPublisher struct {
	publisher producer.Publisher
	topic     string
	source    string
	log       *logger.Logger
}

// NewEventPublisher wraps publisher for topic. source identifies this
// engine instance in emitted events (kafka.Event.Source), following the
// same convention as kafka.NewEvent's own "source" parameter elsewhere in
// the tree.
func NewEventPublisher(publisher producer.Publisher, topic, source string, log *logger.Logger) *EventPublisher {
	if log == nil {
		log = logger.NewDefault("constellation.events")
	}
	return &EventPublisher{publisher: publisher, topic: topic, source: source, log: log.WithComponent("events")}
}

func (p *EventPublisher) emit(ctx context.Context, eventType string, payload ExecutionEvent) {
	if p == nil || p.publisher == nil {
		return
	}
	event := kafka.NewEvent(eventType, p.source, payload, payload.ExecutionID)
	if err := p.publisher.Publish(ctx, p.topic, event); err != nil {
		p.log.Warn("failed to publish execution event", map[string]interface{}{
			"type":        eventType,
			"executionId": payload.ExecutionID,
			"error":       err.Error(),
		})
	}
}

// Suspended emits EventExecutionSuspended.
func (p *EventPublisher) Suspended(ctx context.Context, sig *engine.DataSignature) {
	p.emit(ctx, EventExecutionSuspended, signatureEvent(sig))
}

// Resumed emits EventExecutionResumed.
func (p *EventPublisher) Resumed(ctx context.Context, sig *engine.DataSignature) {
	p.emit(ctx, EventExecutionResumed, signatureEvent(sig))
}

// Terminal emits EventExecutionCompleted or EventExecutionFailed depending
// on sig.Status, covering every non-suspended terminal outcome.
func (p *EventPublisher) Terminal(ctx context.Context, sig *engine.DataSignature) {
	eventType := EventExecutionCompleted
	if sig.Status == engine.ExecFailed {
		eventType = EventExecutionFailed
	}
	p.emit(ctx, eventType, signatureEvent(sig))
}

func signatureEvent(sig *engine.DataSignature) ExecutionEvent {
	return ExecutionEvent{
		ExecutionID:     sig.ExecutionID,
		StructuralHash:  sig.StructuralHash,
		Status:          sig.Status,
		ResumptionCount: sig.ResumptionCount,
	}
}
