package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"assembld/internal/common/fsutil"
	"assembld/pkg/types"
)

// visionHints mark base models that carry an image tower. Checkpoint metadata
// would be authoritative, but filename conventions are what local model dirs
// actually give us.
var visionHints = []string{"vision", "llava", "-vl-", "-vl.", "minicpm-v", "moondream"}

// LoadDir scans a directory for *.gguf files and builds a model registry from
// filenames. ID is the full filename; Path is absolute.
func LoadDir(dir string) ([]types.Model, error) {
	abs, entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		models = append(models, types.Model{
			ID:       name,
			Name:     name,
			Path:     filepath.Join(abs, name),
			Quant:    quantFromName(name),
			Modality: modalityFromName(name),
		})
	}
	return models, nil
}

// LoadAdaptersDir scans a directory for LoRA adapter subdirectories. A
// directory qualifies when it holds a PEFT-style adapter_config.json or
// adapter_model.safetensors. An empty dir setting means no adapters.
func LoadAdaptersDir(dir string) ([]types.Adapter, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	abs, entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}
	var adapters []types.Adapter
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p := filepath.Join(abs, e.Name())
		if !isAdapterDir(p) {
			continue
		}
		adapters = append(adapters, types.Adapter{ID: e.Name(), Name: e.Name(), Path: p})
	}
	return adapters, nil
}

func readDir(dir string) (string, []os.DirEntry, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return "", nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return "", nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return "", nil, fmt.Errorf("read dir: %w", err)
	}
	return abs, entries, nil
}

func isAdapterDir(p string) bool {
	return fsutil.PathExists(filepath.Join(p, "adapter_config.json")) ||
		fsutil.PathExists(filepath.Join(p, "adapter_model.safetensors"))
}

// quantFromName extracts a quant tag like Q4_K_M from the filename, if any.
func quantFromName(name string) string {
	upper := strings.ToUpper(strings.TrimSuffix(name, filepath.Ext(name)))
	for _, part := range strings.FieldsFunc(upper, func(r rune) bool { return r == '.' || r == '-' }) {
		if strings.HasPrefix(part, "Q") && strings.Contains(part, "_") {
			return part
		}
	}
	return ""
}

func modalityFromName(name string) string {
	lower := strings.ToLower(name)
	for _, hint := range visionHints {
		if strings.Contains(lower, hint) {
			return "vision"
		}
	}
	return "text"
}
