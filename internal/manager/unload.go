package manager

// Unload marks an instance as draining, closes its pipeline and removes it
// from the instance table.
func (m *Manager) Unload(instanceID string) error {
	if instanceID == "" {
		return ErrInstanceNotFound("(unspecified)")
	}
	m.mu.Lock()
	inst := m.instances[instanceID]
	if inst == nil {
		m.mu.Unlock()
		return ErrInstanceNotFound(instanceID)
	}
	inst.State = StateDraining
	m.mu.Unlock()
	m.publish("unload_start", instanceID, inst.ModelID, nil)

	if inst.model != nil {
		_ = inst.model.Close()
	}

	m.mu.Lock()
	if inst2 := m.instances[instanceID]; inst2 != nil {
		m.usedEstMB -= inst2.EstVRAMMB
		if m.usedEstMB < 0 {
			m.usedEstMB = 0
		}
		delete(m.instances, instanceID)
	}
	m.mu.Unlock()

	m.publish("unload_done", instanceID, inst.ModelID, nil)
	return nil
}

// Close unloads every instance. Used on shutdown.
func (m *Manager) Close() error {
	m.mu.Lock()
	insts := make([]*Instance, 0, len(m.instances))
	for _, inst := range m.instances {
		insts = append(insts, inst)
	}
	m.mu.Unlock()
	for _, inst := range insts {
		_ = m.Unload(inst.ID)
	}
	return nil
}
