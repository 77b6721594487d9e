package outbox

import "time"

// Row statuses.
const (
	StatusPending   = "pending"
	StatusPublished = "published"
)

// Message is an outbox row persisted inside the same transaction as the
// state change that produced it. The worker relay reads pending rows in
// creation order and publishes them to the bus.
type Message struct {
	OutboxID  string
	EventType string
	Payload   []byte
	Status    string
	CreatedAt time.Time
}
