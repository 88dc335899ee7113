package realtime

import (
	"encoding/json"

	"mentorhub-api/internal/models"
)

// EventType names a task lifecycle event on the wire.
type EventType string

const (
	EventTaskCreated EventType = "taskCreated"
	EventTaskUpdated EventType = "taskUpdated"
	EventTaskMoved   EventType = "taskMoved"
	EventTaskDeleted EventType = "taskDeleted"
)

// Event is the wire envelope pushed to connected clients. Created, updated
// and moved events carry the full task; deleted events carry only the id.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// DeletedPayload is the payload of a taskDeleted event.
type DeletedPayload struct {
	ID string `json:"id"`
}

// NewTaskEvent builds an event carrying the full task.
func NewTaskEvent(eventType EventType, task *models.Task) (Event, error) {
	payload, err := json.Marshal(task)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Payload: payload}, nil
}

// NewDeletedEvent builds a taskDeleted event carrying just the id.
func NewDeletedEvent(id string) (Event, error) {
	payload, err := json.Marshal(DeletedPayload{ID: id})
	if err != nil {
		return Event{}, err
	}
	return Event{Type: EventTaskDeleted, Payload: payload}, nil
}

// Publish marshals the event and broadcasts it to all connected clients.
// It never blocks the caller on subscriber availability.
func (h *Hub) Publish(evt Event) {
	message, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.Broadcast(message)
}
