// Package manager owns the set of built model instances: it resolves build
// requests against the registry, enforces the VRAM budget with LRU eviction,
// and drains instances on unload.
package manager

import (
	"sync"
	"time"

	"assembld/internal/loader"
	"assembld/internal/pipeline"
	"assembld/pkg/types"
)

type Manager struct {
	mu           sync.RWMutex
	state        State
	lastErr      string
	models       []types.Model
	adapters     []types.Adapter
	budgetMB     int
	marginMB     int
	defaultModel string
	maxNumSeqs   int
	pagedAttn    *pipeline.PagedAttnConfig
	forceCPU     bool
	backend      loader.Backend
	publisher    EventPublisher
	startTime    time.Time

	instances map[string]*Instance
	usedEstMB int

	// buildCh is a capacity-1 semaphore: one build in flight at a time.
	buildCh chan struct{}

	buildsTotal    uint64
	evictionsTotal uint64
}

// Ready reports whether the manager can accept build requests.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state != StateError
}

// ListModels returns the base-model registry.
func (m *Manager) ListModels() []types.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Model, len(m.models))
	copy(out, m.models)
	return out
}

// ListAdapters returns the adapter registry.
func (m *Manager) ListAdapters() []types.Adapter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Adapter, len(m.adapters))
	copy(out, m.adapters)
	return out
}
