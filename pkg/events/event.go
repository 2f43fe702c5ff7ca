package events

import (
	"encoding/json"
	"time"
)

// Event defines the contract for all dashboard events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "QUERY_INVALIDATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Live view events.
const (
	TypeQueryUpdated     = "QUERY_UPDATED"
	TypeQueryInvalidated = "QUERY_INVALIDATED"
	TypeQueryRemoved     = "QUERY_REMOVED"
	TypeSessionStarted   = "SESSION_STARTED"
	TypeSessionCleared   = "SESSION_CLEARED"
)

// AdminMutationType is the audit event type for a successful write, e.g.
// ADMIN_MUTATION_DELETE.
func AdminMutationType(operation string) string {
	return "ADMIN_MUTATION_" + operation
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
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

type envelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurredAt"`
}

// Marshal encodes any Event as {"type", "data", "occurredAt"}.
func Marshal(e Event) ([]byte, error) {
	return json.Marshal(envelope{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()})
}

// Unmarshal is the inverse of Marshal.
func Unmarshal(data []byte) (BaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return BaseEvent{}, err
	}
	return BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}, nil
}
