package events

import (
	"context"
	"time"
)

const (
	TypeIngestionCompleted = "ingestion.completed"
	TypeIngestionFailed    = "ingestion.failed"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the subject suffix, e.g. "ingestion.completed".
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher sends events to whatever bus is configured.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// IngestionCompleted reports a finished run. stats is usually an
// ingestion.Report flattened by the caller.
func IngestionCompleted(jobID string, tickers []string, stats map[string]interface{}, at time.Time) Event {
	data := map[string]interface{}{
		"job_id":  jobID,
		"tickers": tickers,
	}
	for k, v := range stats {
		data[k] = v
	}
	return BaseEvent{Type: TypeIngestionCompleted, Data: data, OccurredAt: at}
}

func IngestionFailed(jobID string, tickers []string, err error, at time.Time) Event {
	return BaseEvent{
		Type: TypeIngestionFailed,
		Data: map[string]interface{}{
			"job_id":  jobID,
			"tickers": tickers,
			"error":   err.Error(),
		},
		OccurredAt: at,
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(ctx context.Context, event Event) error { return nil }
