package manager

import (
	"sort"
	"time"

	"assembld/pkg/types"
)

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp := types.StatusResponse{
		BudgetMB:         m.budgetMB,
		UsedMB:           m.usedEstMB,
		MarginMB:         m.marginMB,
		State:            string(m.state),
		LastError:        m.lastErr,
		UptimeSeconds:    int64(time.Since(m.startTime).Seconds()),
		EvictionsTotal:   m.evictionsTotal,
		BuildsTotal:      m.buildsTotal,
		BuildsInProgress: len(m.buildCh),
	}
	resp.Instances = make([]types.InstanceStatus, 0, len(m.instances))
	for _, inst := range m.instances {
		resp.Instances = append(resp.Instances, types.InstanceStatus{
			InstanceID: inst.ID,
			ModelID:    inst.ModelID,
			Adapters:   append([]string(nil), inst.Adapters...),
			State:      string(inst.State),
			Scheduler:  inst.Scheduler,
			LastUsed:   inst.LastUsed.Unix(),
			EstVRAMMB:  inst.EstVRAMMB,
		})
	}
	sort.Slice(resp.Instances, func(i, j int) bool {
		return resp.Instances[i].InstanceID < resp.Instances[j].InstanceID
	})
	return resp
}
