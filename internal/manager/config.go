package manager

import (
	"time"

	"assembld/internal/loader"
	"assembld/internal/pipeline"
	"assembld/pkg/types"
)

// Default applied when the corresponding ManagerConfig field is unset.
const defaultMaxNumSeqs = 16

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Models       []types.Model
	Adapters     []types.Adapter
	BudgetMB     int
	MarginMB     int
	DefaultModel string
	MaxNumSeqs   int
	// PagedAttention, when non-nil, is the cache sizing applied to builds
	// that request paged attention.
	PagedAttention *pipeline.PagedAttnConfig
	ForceCPU       bool
	// Backend overrides the compile-time loader backend (tests).
	Backend   loader.Backend
	Publisher EventPublisher
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		state:        StateReady,
		models:       cfg.Models,
		adapters:     cfg.Adapters,
		budgetMB:     cfg.BudgetMB,
		marginMB:     cfg.MarginMB,
		defaultModel: cfg.DefaultModel,
		pagedAttn:    cfg.PagedAttention,
		forceCPU:     cfg.ForceCPU,
		backend:      cfg.Backend,
		instances:    make(map[string]*Instance),
		buildCh:      make(chan struct{}, 1),
		startTime:    time.Now(),
	}
	if cfg.MaxNumSeqs > 0 {
		m.maxNumSeqs = cfg.MaxNumSeqs
	} else {
		m.maxNumSeqs = defaultMaxNumSeqs
	}
	if cfg.Publisher != nil {
		m.publisher = cfg.Publisher
	} else {
		m.publisher = noopPublisher{}
	}
	return m
}
