package events

import "time"

// Event is what flows through the notification stream: a payment
// outcome, a pledge lifecycle change, a due charge.
type Event interface {
	// EventType returns the routing code, e.g. "DONATION_COMPLETED" or
	// "PLEDGE_CHARGE_DUE". It becomes the NATS subject suffix.
	EventType() string

	// Payload returns the event body handed to subscribers.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation publishers fill in directly.
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
