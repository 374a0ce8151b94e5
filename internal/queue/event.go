// Package queue defines message payloads exchanged over the message
// broker.
package queue

// NotificationQueueName is the durable queue carrying lifecycle
// notifications from the engine to the notification consumer.
const NotificationQueueName = "notification.events"

// NotificationEvent is published for every lifecycle event the engine
// emits (invitation sent/answered, contract sent, contract fully
// signed, booking status changed).  It carries enough information for
// downstream consumers to persist notifications or send mail without
// querying the primary database.
type NotificationEvent struct {
	EventID    string   `json:"event_id"`
	Type       string   `json:"type"`
	Recipients []uint64 `json:"recipients"`
	BookingID  uint64   `json:"booking_id,omitempty"`
	ContractID uint64   `json:"contract_id,omitempty"`
	Message    string   `json:"message,omitempty"`
	OccurredAt string   `json:"occurred_at"`
}
