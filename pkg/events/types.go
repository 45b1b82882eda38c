package events

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of event flowing through the system.
type EventType string

const (
	FlowStarted       EventType = "flow.started"
	FlowCompleted     EventType = "flow.completed"
	FlowCancelled     EventType = "flow.cancelled"
	StateTransition   EventType = "state.transition"
	GiftCreated       EventType = "gift.created"
	PersonCreated     EventType = "person.created"
	PersistenceFailed EventType = "persistence.failed"
)

// Envelope is the standard event wrapper published to the event bus.
type Envelope struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Source    string            `json:"source"`
	SessionID string            `json:"session_id"`
	Timestamp time.Time         `json:"timestamp"`
	Data      json.RawMessage   `json:"data"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// FlowStartedData is the payload for flow.started events.
type FlowStartedData struct {
	Flow string `json:"flow"`
	Mode string `json:"mode"`
}

// FlowCompletedData is the payload for flow.completed events.
type FlowCompletedData struct {
	Flow   string `json:"flow"`
	Effect string `json:"effect"`
}

// FlowCancelledData is the payload for flow.cancelled events.
type FlowCancelledData struct {
	Flow    string `json:"flow"`
	Step    string `json:"step,omitempty"`
	Trigger string `json:"trigger"`
}

// StateTransitionData is the payload for state.transition events.
type StateTransitionData struct {
	Flow     string `json:"flow,omitempty"`
	FromMode string `json:"from_mode"`
	ToMode   string `json:"to_mode"`
	FromStep string `json:"from_step,omitempty"`
	ToStep   string `json:"to_step,omitempty"`
}

// GiftCreatedData is the payload for gift.created events.
type GiftCreatedData struct {
	GiftID      string `json:"gift_id"`
	RecipientID string `json:"recipient_id"`
	EventType   string `json:"event_type"`
	EventDate   string `json:"event_date"`
	AmountTier  string `json:"amount_tier"`
}

// PersonCreatedData is the payload for person.created events.
type PersonCreatedData struct {
	PersonID     string `json:"person_id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
}

// PersistenceFailedData is the payload for persistence.failed events.
type PersistenceFailedData struct {
	Flow   string `json:"flow"`
	Effect string `json:"effect"`
	Cause  string `json:"cause"`
}
