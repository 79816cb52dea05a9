package manager

// Evict LRU ready instances until required MB fits budget + margin.
// A zero budget disables eviction entirely.
func (m *Manager) evictUntilFits(requiredMB int) {
	if m.budgetMB <= 0 {
		return
	}
	for {
		m.mu.Lock()
		if (m.usedEstMB + requiredMB + m.marginMB) <= m.budgetMB {
			m.mu.Unlock()
			return
		}
		var lru *Instance
		for _, inst := range m.instances {
			if inst.State != StateReady {
				continue
			}
			if lru == nil || inst.LastUsed.Before(lru.LastUsed) {
				lru = inst
			}
		}
		if lru == nil {
			// nothing to evict
			m.mu.Unlock()
			return
		}
		delete(m.instances, lru.ID)
		m.usedEstMB -= lru.EstVRAMMB
		if m.usedEstMB < 0 {
			m.usedEstMB = 0
		}
		m.evictionsTotal++
		m.mu.Unlock()

		if lru.model != nil {
			_ = lru.model.Close()
		}
		m.publish("evicted", lru.ID, lru.ModelID, map[string]any{"freed_mb": lru.EstVRAMMB})
	}
}
