package manager

import (
	"os"

	"assembld/pkg/types"
)

// Helper: find model in registry by id.
func (m *Manager) getModelByID(id string) (types.Model, bool) {
	for _, mdl := range m.models {
		if mdl.ID == id {
			return mdl, true
		}
	}
	return types.Model{}, false
}

// Helper: find adapter in registry by id.
func (m *Manager) getAdapterByID(id string) (types.Adapter, bool) {
	for _, ad := range m.adapters {
		if ad.ID == id {
			return ad, true
		}
	}
	return types.Adapter{}, false
}

// Helper: estimate VRAM based on file size (MB). Returns a conservative
// minimum of 1MB when the file cannot be stat'd, so budget checks still bite.
func estimateVRAMMB(path string) int {
	fi, err := os.Stat(path)
	if err != nil {
		return 1
	}
	mb := int(fi.Size() / (1024 * 1024))
	if mb <= 0 {
		mb = 1
	}
	return mb
}
