// Package sse implements Server-Sent Events for pushing dataset and selection
// changes to the connected visualization views.
package sse

import (
	"time"
)

// Views are read-only consumers here: every interaction goes through the
// selection endpoints, and the resulting state change fans back out to all
// connected views over this stream. That is what keeps the four charts linked.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventDatasetLoaded signals that a dataset load finished and views
	// should refetch their payloads.
	EventDatasetLoaded EventType = "dataset.loaded"
	// EventSelectionChanged carries the new selection state after a
	// genre/brush/node transition.
	EventSelectionChanged EventType = "selection.changed"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Type      EventType `json:"type"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(eventType EventType, data any) Event {
	return Event{
		Timestamp: time.Now(),
		Data:      data,
		Type:      eventType,
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return NewEvent(EventHeartbeat, nil)
}
