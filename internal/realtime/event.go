package realtime

import "time"

// EventType tags the frames exchanged over a live connection.
type EventType string

const (
	// Server -> client pushes.
	EventMessage      EventType = "message"
	EventReadReceipt  EventType = "read_receipt"
	EventNotification EventType = "notification"
	EventPong         EventType = "pong"

	// Bidirectional chat signals.
	EventTyping   EventType = "typing"
	EventPresence EventType = "presence"

	// Client -> server control frames.
	EventSubscribe   EventType = "subscribe"
	EventUnsubscribe EventType = "unsubscribe"
	EventPing        EventType = "ping"
)

// Event is the wire format of the bus. Payload carries the event-specific
// body (a serialized message, a read-receipt summary, a notification).
type Event struct {
	Type      EventType      `json:"type"`
	ChatID    string         `json:"chat_id,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewEvent(eventType EventType) *Event {
	return &Event{Type: eventType, Timestamp: time.Now().UTC()}
}
