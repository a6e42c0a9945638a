package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope for every message the storefront publishes.
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	SessionID     string          `json:"session_id,omitempty"`
	Source        string          `json:"source"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent builds an event for the shopper session with a fresh id, occurring
// now.
func NewEvent(eventType, sessionID, source string, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	return &Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		SessionID:  sessionID,
		Source:     source,
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}, nil
}

// PartitionKey keeps one session's events on one partition. Anonymous events
// spread by id.
func (e *Event) PartitionKey() []byte {
	if e.SessionID != "" {
		return []byte(e.SessionID)
	}
	return []byte(e.ID)
}

// At overrides the occurrence time.
func (e *Event) At(t time.Time) *Event {
	if !t.IsZero() {
		e.OccurredAt = t.UTC()
	}
	return e
}

// WithCorrelationID ties the event to the request that raised it.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parses a message value produced by Marshal.
func DecodeEvent(raw []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &e, nil
}

// DecodeData decodes the payload into target.
func (e *Event) DecodeData(target any) error {
	return json.Unmarshal(e.Data, target)
}
