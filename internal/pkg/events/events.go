package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const LeadConverted = "LEAD_CONVERTED"

// Event is a domain event emitted after a committed state change.
type Event struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload"`
}

func New(name string, at time.Time, payload map[string]any) Event {
	return Event{
		ID:      uuid.NewString(),
		Name:    name,
		At:      at,
		Payload: payload,
	}
}

// Sink receives domain events. Implementations must not block the caller
// beyond what a log write costs.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// SlogSink writes events to the structured log.
type SlogSink struct{}

func (SlogSink) Emit(ctx context.Context, e Event) {
	slog.InfoContext(ctx, "domain event",
		"event_id", e.ID,
		"event", e.Name,
		"at", e.At,
		"payload", e.Payload,
	)
}
