package manager

import (
	"time"

	"assembld/internal/assemble"
)

// State represents lifecycle state of the manager/instances.
type State string

const (
	StateReady    State = "ready"
	StateLoading  State = "loading"
	StateDraining State = "draining"
	StateError    State = "error"
)

// Instance is a built model held by the manager, keyed by its instance id.
type Instance struct {
	ID        string
	ModelID   string
	Adapters  []string
	State     State
	Scheduler string
	LastUsed  time.Time
	EstVRAMMB int

	model *assemble.Model
}
