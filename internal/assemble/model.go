package assemble

import (
	"time"

	"github.com/google/uuid"

	"assembld/internal/runner"
)

// Model is the terminal, servable artifact. The caller owns it once Build
// returns; the builder never hands out a partial one.
type Model struct {
	id        string
	modality  Modality
	modelID   string
	adapters  []string
	runner    *runner.Runner
	createdAt time.Time
}

func newModel(modality Modality, modelID string, adapters []string, r *runner.Runner) *Model {
	return &Model{
		id:        uuid.NewString(),
		modality:  modality,
		modelID:   modelID,
		adapters:  append([]string(nil), adapters...),
		runner:    r,
		createdAt: time.Now(),
	}
}

// ID is the unique instance id assigned at build time.
func (m *Model) ID() string { return m.id }

// Modality reports whether this is a text or vision model.
func (m *Model) Modality() Modality { return m.modality }

// ModelID is the base model identifier the descriptor named.
func (m *Model) ModelID() string { return m.modelID }

// Adapters returns the adapter ids the model was built with, in order.
func (m *Model) Adapters() []string {
	return append([]string(nil), m.adapters...)
}

// Runner exposes the serving runtime.
func (m *Model) Runner() *runner.Runner { return m.runner }

// CreatedAt is the build completion time.
func (m *Model) CreatedAt() time.Time { return m.createdAt }

// Close releases the model's pipeline.
func (m *Model) Close() error {
	if m.runner == nil {
		return nil
	}
	return m.runner.Close()
}
