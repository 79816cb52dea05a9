package manager

import "time"

// Event represents a manager lifecycle event.
// Minimal and stable: name, instance/model ids and optional key/values.
type Event struct {
	Name       string
	InstanceID string
	ModelID    string
	At         time.Time
	Fields     map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

func (m *Manager) publish(name, instanceID, modelID string, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	m.publisher.Publish(Event{
		Name:       name,
		InstanceID: instanceID,
		ModelID:    modelID,
		At:         time.Now(),
		Fields:     fields,
	})
}
