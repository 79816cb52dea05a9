package manager

import (
	"context"
	"time"

	"assembld/internal/assemble"
	"assembld/internal/pipeline"
	"assembld/internal/sched"
	"assembld/pkg/types"
)

// Build resolves the request against the registry, frees budget if needed and
// assembles a new instance. One build runs at a time; a second concurrent
// request gets a too-busy error rather than queueing.
func (m *Manager) Build(ctx context.Context, req types.BuildRequest) (types.BuildResponse, error) {
	modelID := req.Model
	if modelID == "" {
		modelID = m.defaultModel
	}
	mdl, ok := m.getModelByID(modelID)
	if !ok {
		return types.BuildResponse{}, ErrModelNotFound(modelID)
	}
	adapterPaths := make([]string, 0, len(req.Adapters))
	for _, id := range req.Adapters {
		ad, ok := m.getAdapterByID(id)
		if !ok {
			return types.BuildResponse{}, ErrAdapterNotFound(id)
		}
		adapterPaths = append(adapterPaths, ad.Path)
	}

	select {
	case m.buildCh <- struct{}{}:
	default:
		return types.BuildResponse{}, tooBusyError{modelID: modelID}
	}
	defer func() { <-m.buildCh }()

	requiredMB := estimateVRAMMB(mdl.Path)
	m.evictUntilFits(requiredMB)

	m.publish("build_start", "", modelID, map[string]any{"adapters": req.Adapters})

	maxNumSeqs := req.MaxNumSeqs
	if maxNumSeqs == 0 {
		maxNumSeqs = m.maxNumSeqs
	}
	var pagedCfg *pipeline.PagedAttnConfig
	if req.PagedAttention {
		if m.pagedAttn != nil {
			c := *m.pagedAttn
			pagedCfg = &c
		} else {
			pagedCfg = &pipeline.PagedAttnConfig{}
		}
	}

	b := m.newBuilder(mdl, adapterPaths, pagedCfg, maxNumSeqs, req)
	if m.backend != nil {
		b = b.WithBackend(m.backend)
	}
	model, err := b.Build(ctx)
	if err != nil {
		m.mu.Lock()
		m.lastErr = err.Error()
		m.mu.Unlock()
		m.publish("build_error", "", modelID, map[string]any{"error": err.Error()})
		return types.BuildResponse{}, err
	}

	schedName := schedulerName(model.Runner().Policy())
	inst := &Instance{
		ID:        model.ID(),
		ModelID:   modelID,
		Adapters:  append([]string(nil), req.Adapters...),
		State:     StateReady,
		Scheduler: schedName,
		LastUsed:  time.Now(),
		EstVRAMMB: requiredMB,
		model:     model,
	}

	m.mu.Lock()
	m.instances[inst.ID] = inst
	m.usedEstMB += inst.EstVRAMMB
	m.buildsTotal++
	m.lastErr = ""
	m.mu.Unlock()

	m.publish("build_ready", inst.ID, modelID, map[string]any{"scheduler": schedName})
	return types.BuildResponse{
		InstanceID: inst.ID,
		Model:      modelID,
		Adapters:   inst.Adapters,
		Scheduler:  schedName,
		State:      string(StateReady),
	}, nil
}

func (m *Manager) newBuilder(mdl types.Model, adapterPaths []string, pagedCfg *pipeline.PagedAttnConfig, maxNumSeqs int, req types.BuildRequest) *assemble.Builder {
	forceCPU := req.ForceCPU || m.forceCPU
	if mdl.Modality == "vision" {
		return assemble.FromVisionDescriptor(assemble.VisionDescriptor{
			ModelID:      mdl.Path,
			ForceCPU:     forceCPU,
			PagedAttnCfg: pagedCfg,
			PrefixCacheN: req.PrefixCacheN,
			MaxNumSeqs:   maxNumSeqs,
			WithLogging:  true,
		}, adapterPaths...)
	}
	return assemble.FromTextDescriptor(assemble.TextDescriptor{
		ModelID:      mdl.Path,
		ForceCPU:     forceCPU,
		PagedAttnCfg: pagedCfg,
		PrefixCacheN: req.PrefixCacheN,
		MaxNumSeqs:   maxNumSeqs,
		WithLogging:  true,
	}, adapterPaths...)
}

func schedulerName(p sched.Policy) string {
	switch p.(type) {
	case sched.PagedAttentionMeta:
		return "paged_attention"
	default:
		return "default"
	}
}
