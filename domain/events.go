package domain

import "time"

// Activity event types.
const (
	UserRegistered = "user-registered"
	TaskCreated    = "task-created"
	TaskUpdated    = "task-updated"
	TaskDeleted    = "task-deleted"
)

// Event describes a completed write.
type Event struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	UserID string    `json:"userId"`
	TaskID string    `json:"taskId,omitempty"`
	Time   time.Time `json:"time"`
}

// Publisher receives events after the store write succeeded. Implementations
// must not block the caller.
type Publisher interface {
	Publish(ev Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
